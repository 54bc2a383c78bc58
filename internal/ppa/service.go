package ppa

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppactl/ppactl/internal/cistatus"
)

const (
	mountGuardMissingMessageConstant       = "mount guard not configured"
	repositoryListsMissingMessageConstant  = "repository list manager not configured"
	packageManagerMissingMessageConstant   = "package manager not configured"
	statusResolverMissingMessageConstant   = "build status resolver not configured"
	serviceLoggerMissingMessageConstant    = "logger not configured"
	maintenanceIncompleteMessageConstant   = "package maintenance completed with errors"
	notInstalledTemplateConstant           = "repository %q is not installed"
	buildGateFailedTemplateConstant        = "cannot install from pull request %d: build of branch %q %s"
	buildGateFailedVerbConstant            = "failed"
	buildGateBuildingVerbConstant          = "is still running"
	indexRefreshWarningMessageConstant     = "package index refresh failed, continuing"
	upgradeWarningMessageConstant          = "package upgrade failed, continuing"
	installGatePassedMessageConstant       = "build gate passed"
	logFieldPullRequestConstant            = "pull_request"
	logFieldBranchConstant                 = "branch"
	logFieldBuildStatusConstant            = "build_status"
	logFieldFailureConstant                = "failure"
	pullRequestNumberUnsetConstant         = -1
)

// ErrMountGuardNotConfigured indicates the service was built without a mount guard.
var ErrMountGuardNotConfigured = errors.New(mountGuardMissingMessageConstant)

// ErrRepositoryListsNotConfigured indicates the service was built without a list manager.
var ErrRepositoryListsNotConfigured = errors.New(repositoryListsMissingMessageConstant)

// ErrPackageManagerNotConfigured indicates the service was built without a package manager.
var ErrPackageManagerNotConfigured = errors.New(packageManagerMissingMessageConstant)

// ErrStatusResolverNotConfigured indicates the service was built without a status resolver.
var ErrStatusResolverNotConfigured = errors.New(statusResolverMissingMessageConstant)

// ErrLoggerNotConfigured indicates the service was built without a logger.
var ErrLoggerNotConfigured = errors.New(serviceLoggerMissingMessageConstant)

// ErrPackageMaintenanceIncomplete reports that index refresh or upgrade
// failed. The enclosing command finishes, but the process exit code must
// reflect the partial success.
var ErrPackageMaintenanceIncomplete = errors.New(maintenanceIncompleteMessageConstant)

// NotInstalledError reports a removal request for a repository without a backing list file.
type NotInstalledError struct {
	RepositoryName string
}

// Error describes the missing repository.
func (notInstalledError NotInstalledError) Error() string {
	return fmt.Sprintf(notInstalledTemplateConstant, notInstalledError.RepositoryName)
}

// BuildGateError reports an install blocked by the CI status of the requested pull request.
type BuildGateError struct {
	PullRequestNumber int
	Branch            string
	Status            cistatus.BuildStatus
}

// Error describes why the install was blocked.
func (gateError BuildGateError) Error() string {
	statusVerb := buildGateFailedVerbConstant
	if gateError.Status == cistatus.BuildStatusBuilding {
		statusVerb = buildGateBuildingVerbConstant
	}
	return fmt.Sprintf(buildGateFailedTemplateConstant, gateError.PullRequestNumber, gateError.Branch, statusVerb)
}

// MountGuard scopes read-write access to the root filesystem.
type MountGuard interface {
	WithWritableRoot(executionContext context.Context, guardedOperation func(context.Context) error) error
}

// RepositoryListManager maintains the repository list files.
type RepositoryListManager interface {
	Exists(repositoryName string) (bool, error)
	Add(executionContext context.Context, repositoryName string) error
	Remove(repositoryName string) error
	ListAll() ([]string, error)
}

// PackageMaintainer delegates maintenance to the OS package manager.
type PackageMaintainer interface {
	RefreshIndex(executionContext context.Context) error
	UpgradeAll(executionContext context.Context) error
}

// BuildStatusResolver resolves pull requests to branches and branches to build results.
type BuildStatusResolver interface {
	ResolveBranch(executionContext context.Context, project string, pullRequestNumber int) (string, error)
	ResolveBuildStatus(executionContext context.Context, project string, branch string) (cistatus.BuildStatus, error)
}

// Dependencies enumerates external collaborators required by the service.
type Dependencies struct {
	MountGuard      MountGuard
	RepositoryLists RepositoryListManager
	PackageManager  PackageMaintainer
	StatusResolver  BuildStatusResolver
	Logger          *zap.Logger
}

// ServiceOptions configures service behavior.
type ServiceOptions struct {
	Project string
}

// InstallOptions configures an install operation. A negative pull request
// number means no build gating is requested.
type InstallOptions struct {
	RepositoryName    string
	PullRequestNumber int
}

// Service coordinates repository management operations.
type Service struct {
	mountGuard      MountGuard
	repositoryLists RepositoryListManager
	packageManager  PackageMaintainer
	statusResolver  BuildStatusResolver
	logger          *zap.Logger
	project         string
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies, options ServiceOptions) (*Service, error) {
	if dependencies.MountGuard == nil {
		return nil, ErrMountGuardNotConfigured
	}
	if dependencies.RepositoryLists == nil {
		return nil, ErrRepositoryListsNotConfigured
	}
	if dependencies.PackageManager == nil {
		return nil, ErrPackageManagerNotConfigured
	}
	if dependencies.StatusResolver == nil {
		return nil, ErrStatusResolverNotConfigured
	}
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	return &Service{
		mountGuard:      dependencies.MountGuard,
		repositoryLists: dependencies.RepositoryLists,
		packageManager:  dependencies.PackageManager,
		statusResolver:  dependencies.StatusResolver,
		logger:          dependencies.Logger,
		project:         options.Project,
	}, nil
}

// Install enables the repository and upgrades the system. When a pull request
// number is supplied the install proceeds only if the latest CI build of the
// pull request's head branch succeeded.
func (service *Service) Install(executionContext context.Context, options InstallOptions) error {
	if options.PullRequestNumber > pullRequestNumberUnsetConstant {
		if gateError := service.checkBuildGate(executionContext, options.PullRequestNumber); gateError != nil {
			return gateError
		}
	}

	return service.mountGuard.WithWritableRoot(executionContext, func(guardedContext context.Context) error {
		if addError := service.repositoryLists.Add(guardedContext, options.RepositoryName); addError != nil {
			return addError
		}
		return service.runPackageMaintenance(guardedContext)
	})
}

// Remove disables the repository and upgrades the system. Removing a
// repository that is not installed is an error.
func (service *Service) Remove(executionContext context.Context, repositoryName string) error {
	installed, existsError := service.repositoryLists.Exists(repositoryName)
	if existsError != nil {
		return existsError
	}
	if !installed {
		return NotInstalledError{RepositoryName: repositoryName}
	}

	return service.mountGuard.WithWritableRoot(executionContext, func(guardedContext context.Context) error {
		if removeError := service.repositoryLists.Remove(repositoryName); removeError != nil {
			return removeError
		}
		return service.runPackageMaintenance(guardedContext)
	})
}

// InstalledRepositories returns the names of all enabled repositories.
func (service *Service) InstalledRepositories() ([]string, error) {
	return service.repositoryLists.ListAll()
}

// Update refreshes package indexes and upgrades all installed packages.
func (service *Service) Update(executionContext context.Context) error {
	return service.mountGuard.WithWritableRoot(executionContext, func(guardedContext context.Context) error {
		return service.runPackageMaintenance(guardedContext)
	})
}

func (service *Service) checkBuildGate(executionContext context.Context, pullRequestNumber int) error {
	branchName, branchError := service.statusResolver.ResolveBranch(executionContext, service.project, pullRequestNumber)
	if branchError != nil {
		return branchError
	}

	buildStatus, statusError := service.statusResolver.ResolveBuildStatus(executionContext, service.project, branchName)
	if statusError != nil {
		return statusError
	}

	if buildStatus != cistatus.BuildStatusSuccess {
		return BuildGateError{PullRequestNumber: pullRequestNumber, Branch: branchName, Status: buildStatus}
	}

	service.logger.Debug(
		installGatePassedMessageConstant,
		zap.Int(logFieldPullRequestConstant, pullRequestNumber),
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldBuildStatusConstant, buildStatus.String()),
	)

	return nil
}

// runPackageMaintenance attempts index refresh and upgrade. Failures do not
// abort the command: both steps always run, each failure is logged, and the
// aggregate result is reported through ErrPackageMaintenanceIncomplete.
func (service *Service) runPackageMaintenance(executionContext context.Context) error {
	maintenanceIncomplete := false

	if refreshError := service.packageManager.RefreshIndex(executionContext); refreshError != nil {
		maintenanceIncomplete = true
		service.logger.Warn(indexRefreshWarningMessageConstant, zap.String(logFieldFailureConstant, refreshError.Error()))
	}

	if upgradeError := service.packageManager.UpgradeAll(executionContext); upgradeError != nil {
		maintenanceIncomplete = true
		service.logger.Warn(upgradeWarningMessageConstant, zap.String(logFieldFailureConstant, upgradeError.Error()))
	}

	if maintenanceIncomplete {
		return ErrPackageMaintenanceIncomplete
	}

	return nil
}
