package ppa_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppactl/ppactl/internal/ppa"
)

func TestExitCodeForError(testInstance *testing.T) {
	testCases := []struct {
		name             string
		executionError   error
		expectedExitCode int
	}{
		{name: "nil_error", executionError: nil, expectedExitCode: ppa.ExitCodeSuccess},
		{name: "fatal_error", executionError: ppa.NewFatalError(errors.New("remount failed")), expectedExitCode: ppa.ExitCodeFailure},
		{name: "usage_error", executionError: ppa.NewUsageError(errors.New("accepts 1 arg")), expectedExitCode: ppa.ExitCodeUsage},
		{name: "uncoded_error", executionError: errors.New("unexpected"), expectedExitCode: ppa.ExitCodeFailure},
		{name: "wrapped_usage_error", executionError: fmt.Errorf("wrapped: %w", ppa.NewUsageError(errors.New("bad flag"))), expectedExitCode: ppa.ExitCodeUsage},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, ppa.ExitCodeForError(testCase.executionError))
		})
	}
}

func TestCodedErrorPreservesCause(testInstance *testing.T) {
	cause := errors.New("repository \"myrepo\" is not installed")
	fatalError := ppa.NewFatalError(cause)

	require.EqualError(testInstance, fatalError, cause.Error())
	require.ErrorIs(testInstance, fatalError, cause)
}

func TestErrorConstructorsIgnoreNilCauses(testInstance *testing.T) {
	require.NoError(testInstance, ppa.NewFatalError(nil))
	require.NoError(testInstance, ppa.NewUsageError(nil))
}
