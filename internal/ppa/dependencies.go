package ppa

import (
	"net/http"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ppactl/ppactl/internal/cistatus"
	"github.com/ppactl/ppactl/internal/execshell"
	"github.com/ppactl/ppactl/internal/mountguard"
	"github.com/ppactl/ppactl/internal/pkgmgr"
	"github.com/ppactl/ppactl/internal/repolist"
	"github.com/ppactl/ppactl/internal/ui"
)

// NewDefaultService wires the repository service against the real operating
// system: os/exec subprocesses, the OS filesystem, the default HTTP client,
// and the effective user id of the running process.
func NewDefaultService(configuration Configuration, logger *zap.Logger, humanReadableLogging bool) (RepositoryService, error) {
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}
	if humanReadableLogging {
		shellExecutor.UseEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}

	fileSystem := afero.NewOsFs()

	guard, guardError := mountguard.NewGuard(
		mountguard.Dependencies{Executor: shellExecutor, FileSystem: fileSystem, Logger: logger},
		mountguard.Options{
			SentinelPath: configuration.SentinelPath,
			Privilege:    mountguard.Privilege{EffectiveUserID: os.Geteuid()},
		},
	)
	if guardError != nil {
		return nil, guardError
	}

	distributionChecker, checkerError := repolist.NewArchiveDistributionChecker(http.DefaultClient, configuration.ArchiveURL)
	if checkerError != nil {
		return nil, checkerError
	}

	repositoryLists, listManagerError := repolist.NewManager(
		repolist.Dependencies{FileSystem: fileSystem, DistributionChecker: distributionChecker},
		repolist.Options{
			Directory:  configuration.Directory,
			ArchiveURL: configuration.ArchiveURL,
			Component:  configuration.Component,
		},
	)
	if listManagerError != nil {
		return nil, listManagerError
	}

	packageManager, packageManagerError := pkgmgr.NewManager(shellExecutor)
	if packageManagerError != nil {
		return nil, packageManagerError
	}

	statusResolver, resolverError := cistatus.NewResolver(http.DefaultClient, cistatus.Options{
		ForgeAPIURL: configuration.ForgeAPIURL,
		CIURL:       configuration.CIURL,
	})
	if resolverError != nil {
		return nil, resolverError
	}

	return NewService(
		Dependencies{
			MountGuard:      guard,
			RepositoryLists: repositoryLists,
			PackageManager:  packageManager,
			StatusResolver:  statusResolver,
			Logger:          logger,
		},
		ServiceOptions{Project: configuration.Project},
	)
}
