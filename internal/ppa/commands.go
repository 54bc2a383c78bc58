package ppa

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	installCommandUseConstant          = "install <repository> [pull-request]"
	installCommandShortConstant        = "Enable a package repository and upgrade the system"
	installCommandLongConstant         = "install enables the named repository, optionally gating the change on the CI build status of a pull request's head branch, then refreshes package indexes and upgrades all packages."
	removeCommandUseConstant           = "remove <repository>"
	removeCommandAliasConstant         = "uninstall"
	removeCommandShortConstant         = "Disable an installed package repository and upgrade the system"
	removeCommandLongConstant          = "remove disables the named repository by deleting its list file, then refreshes package indexes and upgrades all packages."
	listCommandUseConstant             = "list"
	listCommandShortConstant           = "List enabled package repositories"
	listCommandLongConstant            = "list prints the names of all currently enabled package repositories."
	updateCommandUseConstant           = "update"
	updateCommandShortConstant         = "Refresh package indexes and upgrade all packages"
	updateCommandLongConstant          = "update refreshes package indexes from every enabled repository and upgrades all installed packages."
	invalidPullRequestTemplateConstant = "invalid pull request number %q"
	repositoryNameListTemplateConstant = "%s\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RepositoryService is the operation surface consumed by the command builders.
type RepositoryService interface {
	Install(executionContext context.Context, options InstallOptions) error
	Remove(executionContext context.Context, repositoryName string) error
	InstalledRepositories() ([]string, error)
	Update(executionContext context.Context) error
}

// ServiceResolver builds the repository service consumed by a command.
type ServiceResolver func(configuration Configuration, logger *zap.Logger, humanReadableLogging bool) (RepositoryService, error)

// CommandBuilder assembles the repository management commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() Configuration
	HumanReadableLoggingProvider func() bool
	ServiceResolver              ServiceResolver
}

// BuildInstallCommand constructs the install command.
func (builder *CommandBuilder) BuildInstallCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   installCommandUseConstant,
		Short: installCommandShortConstant,
		Long:  installCommandLongConstant,
		Args:  usageValidatedArguments(cobra.RangeArgs(1, 2)),
		RunE:  builder.runInstall,
	}, nil
}

// BuildRemoveCommand constructs the remove command.
func (builder *CommandBuilder) BuildRemoveCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:     removeCommandUseConstant,
		Aliases: []string{removeCommandAliasConstant},
		Short:   removeCommandShortConstant,
		Long:    removeCommandLongConstant,
		Args:    usageValidatedArguments(cobra.ExactArgs(1)),
		RunE:    builder.runRemove,
	}, nil
}

// BuildListCommand constructs the list command.
func (builder *CommandBuilder) BuildListCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortConstant,
		Long:  listCommandLongConstant,
		Args:  usageValidatedArguments(cobra.NoArgs),
		RunE:  builder.runList,
	}, nil
}

// BuildUpdateCommand constructs the update command.
func (builder *CommandBuilder) BuildUpdateCommand() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   updateCommandUseConstant,
		Short: updateCommandShortConstant,
		Long:  updateCommandLongConstant,
		Args:  usageValidatedArguments(cobra.NoArgs),
		RunE:  builder.runUpdate,
	}, nil
}

func (builder *CommandBuilder) runInstall(command *cobra.Command, arguments []string) error {
	pullRequestNumber := pullRequestNumberUnsetConstant
	if len(arguments) == 2 {
		parsedNumber, parseError := strconv.Atoi(arguments[1])
		if parseError != nil || parsedNumber < 0 {
			return NewUsageError(fmt.Errorf(invalidPullRequestTemplateConstant, arguments[1]))
		}
		pullRequestNumber = parsedNumber
	}

	service, resolveError := builder.resolveService()
	if resolveError != nil {
		return NewFatalError(resolveError)
	}

	installError := service.Install(command.Context(), InstallOptions{
		RepositoryName:    arguments[0],
		PullRequestNumber: pullRequestNumber,
	})
	return NewFatalError(installError)
}

func (builder *CommandBuilder) runRemove(command *cobra.Command, arguments []string) error {
	service, resolveError := builder.resolveService()
	if resolveError != nil {
		return NewFatalError(resolveError)
	}

	return NewFatalError(service.Remove(command.Context(), arguments[0]))
}

func (builder *CommandBuilder) runList(command *cobra.Command, _ []string) error {
	service, resolveError := builder.resolveService()
	if resolveError != nil {
		return NewFatalError(resolveError)
	}

	repositoryNames, listError := service.InstalledRepositories()
	if listError != nil {
		return NewFatalError(listError)
	}

	sort.Strings(repositoryNames)
	for _, repositoryName := range repositoryNames {
		fmt.Fprintf(command.OutOrStdout(), repositoryNameListTemplateConstant, repositoryName)
	}

	return nil
}

func (builder *CommandBuilder) runUpdate(command *cobra.Command, _ []string) error {
	service, resolveError := builder.resolveService()
	if resolveError != nil {
		return NewFatalError(resolveError)
	}

	return NewFatalError(service.Update(command.Context()))
}

func (builder *CommandBuilder) resolveService() (RepositoryService, error) {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	serviceResolver := builder.ServiceResolver
	if serviceResolver == nil {
		serviceResolver = NewDefaultService
	}

	return serviceResolver(configuration, logger, humanReadableLogging)
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// usageValidatedArguments wraps a cobra validator so that violations carry
// the usage exit code.
func usageValidatedArguments(validator cobra.PositionalArgs) cobra.PositionalArgs {
	return func(command *cobra.Command, arguments []string) error {
		if validationError := validator(command, arguments); validationError != nil {
			return NewUsageError(validationError)
		}
		return nil
	}
}
