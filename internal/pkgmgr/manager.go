// Package pkgmgr adapts the OS package manager for index refresh and
// full-system upgrade operations.
package pkgmgr

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppactl/ppactl/internal/execshell"
)

const (
	aptUpdateSubcommandConstant          = "update"
	aptDistUpgradeSubcommandConstant     = "dist-upgrade"
	aptAssumeYesFlagConstant             = "--yes"
	aptFrontendEnvironmentNameConstant   = "DEBIAN_FRONTEND"
	aptFrontendNoninteractiveConstant    = "noninteractive"
	executorMissingMessageConstant       = "apt command executor not configured"
	refreshIndexFailureTemplateConstant  = "package index refresh failed: %w"
	upgradeAllFailureTemplateConstant    = "package upgrade failed: %w"
)

// ErrExecutorNotConfigured indicates the manager was built without a command executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// AptCommandExecutor is the subset of execshell.ShellExecutor required by the manager.
type AptCommandExecutor interface {
	ExecuteAptGet(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Manager delegates package maintenance to apt-get.
type Manager struct {
	executor AptCommandExecutor
}

// NewManager constructs a Manager using the provided executor.
func NewManager(executor AptCommandExecutor) (*Manager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Manager{executor: executor}, nil
}

// RefreshIndex downloads fresh package indexes from all enabled repositories.
func (manager *Manager) RefreshIndex(executionContext context.Context) error {
	if refreshError := manager.executeAptGet(executionContext, aptUpdateSubcommandConstant); refreshError != nil {
		return fmt.Errorf(refreshIndexFailureTemplateConstant, refreshError)
	}
	return nil
}

// UpgradeAll upgrades every installed package to the latest available version.
func (manager *Manager) UpgradeAll(executionContext context.Context) error {
	if upgradeError := manager.executeAptGet(executionContext, aptDistUpgradeSubcommandConstant, aptAssumeYesFlagConstant); upgradeError != nil {
		return fmt.Errorf(upgradeAllFailureTemplateConstant, upgradeError)
	}
	return nil
}

func (manager *Manager) executeAptGet(executionContext context.Context, subcommand string, flags ...string) error {
	_, executionError := manager.executor.ExecuteAptGet(executionContext, execshell.CommandDetails{
		Arguments: append([]string{subcommand}, flags...),
		EnvironmentVariables: map[string]string{
			aptFrontendEnvironmentNameConstant: aptFrontendNoninteractiveConstant,
		},
	})
	return executionError
}
