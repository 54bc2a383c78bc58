package mountguard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppactl/ppactl/internal/execshell"
	"github.com/ppactl/ppactl/internal/mountguard"
)

const (
	testSentinelPathConstant = "/var/lib/ppactl/keep-writable"
)

type recordingMountExecutor struct {
	mountErrors      []error
	syncError        error
	recordedCommands []execshell.ShellCommand
}

func (executor *recordingMountExecutor) ExecuteMount(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, execshell.ShellCommand{Name: execshell.CommandMount, Details: details})
	if len(executor.mountErrors) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	nextError := executor.mountErrors[0]
	executor.mountErrors = executor.mountErrors[1:]
	return execshell.ExecutionResult{}, nextError
}

func (executor *recordingMountExecutor) ExecuteSync(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, execshell.ShellCommand{Name: execshell.CommandSync, Details: details})
	return execshell.ExecutionResult{}, executor.syncError
}

func rootPrivilege() mountguard.Privilege {
	return mountguard.Privilege{EffectiveUserID: 0}
}

func newTestGuard(testInstance *testing.T, executor *recordingMountExecutor, fileSystem afero.Fs, logger *zap.Logger, privilege mountguard.Privilege) *mountguard.Guard {
	testInstance.Helper()

	guard, creationError := mountguard.NewGuard(
		mountguard.Dependencies{Executor: executor, FileSystem: fileSystem, Logger: logger},
		mountguard.Options{SentinelPath: testSentinelPathConstant, Privilege: privilege},
	)
	require.NoError(testInstance, creationError)
	return guard
}

func TestNewGuardValidatesDependencies(testInstance *testing.T) {
	executor := &recordingMountExecutor{}
	fileSystem := afero.NewMemMapFs()
	logger := zap.NewNop()

	testCases := []struct {
		name          string
		dependencies  mountguard.Dependencies
		options       mountguard.Options
		expectedError error
	}{
		{
			name:          "missing_executor",
			dependencies:  mountguard.Dependencies{FileSystem: fileSystem, Logger: logger},
			options:       mountguard.Options{SentinelPath: testSentinelPathConstant},
			expectedError: mountguard.ErrExecutorNotConfigured,
		},
		{
			name:          "missing_filesystem",
			dependencies:  mountguard.Dependencies{Executor: executor, Logger: logger},
			options:       mountguard.Options{SentinelPath: testSentinelPathConstant},
			expectedError: mountguard.ErrFileSystemNotConfigured,
		},
		{
			name:          "missing_logger",
			dependencies:  mountguard.Dependencies{Executor: executor, FileSystem: fileSystem},
			options:       mountguard.Options{SentinelPath: testSentinelPathConstant},
			expectedError: mountguard.ErrLoggerNotConfigured,
		},
		{
			name:          "missing_sentinel_path",
			dependencies:  mountguard.Dependencies{Executor: executor, FileSystem: fileSystem, Logger: logger},
			options:       mountguard.Options{SentinelPath: "  "},
			expectedError: mountguard.ErrSentinelPathRequired,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			guard, creationError := mountguard.NewGuard(testCase.dependencies, testCase.options)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, guard)
		})
	}
}

func TestAcquireRequiresRootPrivilege(testInstance *testing.T) {
	executor := &recordingMountExecutor{}
	guard := newTestGuard(testInstance, executor, afero.NewMemMapFs(), zap.NewNop(), mountguard.Privilege{EffectiveUserID: 1000})

	acquireError := guard.Acquire(context.Background())
	require.ErrorIs(testInstance, acquireError, mountguard.ErrRootPrivilegeRequired)
	require.Empty(testInstance, executor.recordedCommands)
}

func TestAcquireRemountsReadWrite(testInstance *testing.T) {
	executor := &recordingMountExecutor{}
	guard := newTestGuard(testInstance, executor, afero.NewMemMapFs(), zap.NewNop(), rootPrivilege())

	require.NoError(testInstance, guard.Acquire(context.Background()))
	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, []string{"-o", "remount,rw", "/"}, executor.recordedCommands[0].Details.Arguments)
}

func TestAcquireSurfacesRemountFailure(testInstance *testing.T) {
	executor := &recordingMountExecutor{mountErrors: []error{errors.New("device busy")}}
	guard := newTestGuard(testInstance, executor, afero.NewMemMapFs(), zap.NewNop(), rootPrivilege())

	acquireError := guard.Acquire(context.Background())
	require.ErrorContains(testInstance, acquireError, "failed to remount root filesystem read-write")
}

func TestReleaseFlushesAndRemountsReadOnly(testInstance *testing.T) {
	executor := &recordingMountExecutor{}
	guard := newTestGuard(testInstance, executor, afero.NewMemMapFs(), zap.NewNop(), rootPrivilege())

	guard.Release(context.Background())

	require.Len(testInstance, executor.recordedCommands, 2)
	require.Equal(testInstance, execshell.CommandSync, executor.recordedCommands[0].Name)
	require.Equal(testInstance, []string{"-o", "remount,ro", "/"}, executor.recordedCommands[1].Details.Arguments)
}

func TestReleaseSkipsRemountWhenSentinelExists(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, testSentinelPathConstant, []byte{}, 0o644))

	executor := &recordingMountExecutor{}
	guard := newTestGuard(testInstance, executor, fileSystem, zap.NewNop(), rootPrivilege())

	guard.Release(context.Background())
	require.Empty(testInstance, executor.recordedCommands)
}

func TestReleaseDowngradesRemountFailureToWarning(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zap.WarnLevel)
	executor := &recordingMountExecutor{mountErrors: []error{errors.New("remount refused")}}
	guard := newTestGuard(testInstance, executor, afero.NewMemMapFs(), zap.New(observerCore), rootPrivilege())

	guard.Release(context.Background())

	warnings := observedLogs.All()
	require.Len(testInstance, warnings, 1)
	require.Contains(testInstance, warnings[0].Message, "reboot")
}

func TestWithWritableRootReleasesOnFailure(testInstance *testing.T) {
	executor := &recordingMountExecutor{}
	guard := newTestGuard(testInstance, executor, afero.NewMemMapFs(), zap.NewNop(), rootPrivilege())

	operationError := errors.New("guarded operation failed")
	executionError := guard.WithWritableRoot(context.Background(), func(context.Context) error {
		return operationError
	})

	require.ErrorIs(testInstance, executionError, operationError)
	// remount,rw + sync + remount,ro despite the failing operation
	require.Len(testInstance, executor.recordedCommands, 3)
	require.Equal(testInstance, []string{"-o", "remount,ro", "/"}, executor.recordedCommands[2].Details.Arguments)
}
