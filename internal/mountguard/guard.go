package mountguard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ppactl/ppactl/internal/execshell"
)

const (
	rootEffectiveUserIDConstant              = 0
	mountOptionFlagConstant                  = "-o"
	remountReadWriteOptionConstant           = "remount,rw"
	remountReadOnlyOptionConstant            = "remount,ro"
	rootMountPointConstant                   = "/"
	executorMissingMessageConstant           = "mount command executor not configured"
	fileSystemMissingMessageConstant         = "filesystem not configured"
	loggerMissingMessageConstant             = "logger not configured"
	sentinelPathMissingMessageConstant       = "sentinel path must be provided"
	rootPrivilegeMissingMessageConstant      = "root privilege required to remount the root filesystem"
	remountReadWriteFailureTemplateConstant  = "failed to remount root filesystem read-write: %w"
	sentinelKeepsWritableMessageConstant     = "sentinel present, leaving root filesystem writable"
	diskFlushFailureWarningMessageConstant   = "failed to flush pending disk writes"
	remountReadOnlyFailureWarningConstant    = "failed to remount root filesystem read-only; reboot the device to restore read-only mode"
	logFieldSentinelPathConstant             = "sentinel_path"
	logFieldFailureConstant                  = "failure"
)

// ErrExecutorNotConfigured indicates the guard was built without a command executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the guard was built without a filesystem.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrLoggerNotConfigured indicates the guard was built without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrSentinelPathRequired indicates the guard was built without a sentinel path.
var ErrSentinelPathRequired = errors.New(sentinelPathMissingMessageConstant)

// ErrRootPrivilegeRequired indicates the caller lacks the privilege to remount filesystems.
var ErrRootPrivilegeRequired = errors.New(rootPrivilegeMissingMessageConstant)

// Privilege carries the effective identity the process runs under.
type Privilege struct {
	EffectiveUserID int
}

// HasRootAccess reports whether the privilege permits remounting filesystems.
func (privilege Privilege) HasRootAccess() bool {
	return privilege.EffectiveUserID == rootEffectiveUserIDConstant
}

// MountCommandExecutor is the subset of execshell.ShellExecutor required by the guard.
type MountCommandExecutor interface {
	ExecuteMount(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteSync(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Dependencies enumerates external collaborators required by the guard.
type Dependencies struct {
	Executor   MountCommandExecutor
	FileSystem afero.Fs
	Logger     *zap.Logger
}

// Options configures guard behavior.
type Options struct {
	SentinelPath string
	Privilege    Privilege
}

// Guard scopes read-write access to the root filesystem.
type Guard struct {
	executor     MountCommandExecutor
	fileSystem   afero.Fs
	logger       *zap.Logger
	sentinelPath string
	privilege    Privilege
}

// NewGuard constructs a Guard from the provided dependencies and options.
func NewGuard(dependencies Dependencies, options Options) (*Guard, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if len(strings.TrimSpace(options.SentinelPath)) == 0 {
		return nil, ErrSentinelPathRequired
	}

	return &Guard{
		executor:     dependencies.Executor,
		fileSystem:   dependencies.FileSystem,
		logger:       dependencies.Logger,
		sentinelPath: strings.TrimSpace(options.SentinelPath),
		privilege:    options.Privilege,
	}, nil
}

// Acquire remounts the root filesystem read-write. It fails when the caller
// lacks root privilege or the remount command does not succeed.
func (guard *Guard) Acquire(executionContext context.Context) error {
	if !guard.privilege.HasRootAccess() {
		return ErrRootPrivilegeRequired
	}

	_, remountError := guard.executor.ExecuteMount(executionContext, execshell.CommandDetails{
		Arguments: []string{mountOptionFlagConstant, remountReadWriteOptionConstant, rootMountPointConstant},
	})
	if remountError != nil {
		return fmt.Errorf(remountReadWriteFailureTemplateConstant, remountError)
	}

	return nil
}

// Release flushes pending disk writes and remounts the root filesystem
// read-only unless the sentinel file marks the device as permanently
// writable. Failures are downgraded to warnings.
func (guard *Guard) Release(executionContext context.Context) {
	sentinelExists, _ := afero.Exists(guard.fileSystem, guard.sentinelPath)
	if sentinelExists {
		guard.logger.Debug(sentinelKeepsWritableMessageConstant, zap.String(logFieldSentinelPathConstant, guard.sentinelPath))
		return
	}

	if _, syncError := guard.executor.ExecuteSync(executionContext, execshell.CommandDetails{}); syncError != nil {
		guard.logger.Warn(diskFlushFailureWarningMessageConstant, zap.String(logFieldFailureConstant, syncError.Error()))
	}

	_, remountError := guard.executor.ExecuteMount(executionContext, execshell.CommandDetails{
		Arguments: []string{mountOptionFlagConstant, remountReadOnlyOptionConstant, rootMountPointConstant},
	})
	if remountError != nil {
		guard.logger.Warn(remountReadOnlyFailureWarningConstant, zap.String(logFieldFailureConstant, remountError.Error()))
	}
}

// WithWritableRoot acquires the guard, runs the guarded operation, and
// releases the guard on every exit path.
func (guard *Guard) WithWritableRoot(executionContext context.Context, guardedOperation func(context.Context) error) error {
	if acquireError := guard.Acquire(executionContext); acquireError != nil {
		return acquireError
	}
	defer guard.Release(executionContext)

	return guardedOperation(executionContext)
}
