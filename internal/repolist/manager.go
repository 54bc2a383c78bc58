package repolist

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	listFilePrefixConstant                    = "ppa-"
	listFileSuffixConstant                    = ".list"
	listFileModeConstant                      = 0o644
	listDirectoryModeConstant                 = 0o755
	listEntryTemplateConstant                 = "deb %s %s %s\n"
	fileSystemMissingMessageConstant          = "filesystem not configured"
	distributionCheckerMissingMessageConstant = "distribution checker not configured"
	directoryMissingMessageConstant           = "repository list directory must be provided"
	archiveURLMissingMessageConstant          = "archive URL must be provided"
	repositoryNameRequiredMessageConstant     = "repository name must be provided"
	repositoryNameInvalidTemplateConstant     = "repository name %q is not a valid distribution name"
	repositoryNotPublishedTemplateConstant    = "repository %q not found at the distribution point"
	publishedCheckFailureTemplateConstant     = "failed to verify repository %q is published: %w"
	listFileWriteFailureTemplateConstant      = "failed to write repository list file: %w"
	listFileRemoveFailureTemplateConstant     = "failed to remove repository list file: %w"
	listDirectoryReadFailureTemplateConstant  = "failed to enumerate repository list files: %w"
	defaultComponentConstant                  = "main"
)

// ErrFileSystemNotConfigured indicates the manager was built without a filesystem.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrDistributionCheckerNotConfigured indicates the manager was built without a remote checker.
var ErrDistributionCheckerNotConfigured = errors.New(distributionCheckerMissingMessageConstant)

// ErrDirectoryRequired indicates the manager was built without a list directory.
var ErrDirectoryRequired = errors.New(directoryMissingMessageConstant)

// ErrArchiveURLRequired indicates the manager was built without an archive URL.
var ErrArchiveURLRequired = errors.New(archiveURLMissingMessageConstant)

// ErrRepositoryNameRequired indicates a repository operation received an empty name.
var ErrRepositoryNameRequired = errors.New(repositoryNameRequiredMessageConstant)

// NotPublishedError reports a repository absent from the remote distribution point.
type NotPublishedError struct {
	RepositoryName string
}

// Error describes the missing repository.
func (notPublishedError NotPublishedError) Error() string {
	return fmt.Sprintf(repositoryNotPublishedTemplateConstant, notPublishedError.RepositoryName)
}

// DistributionChecker verifies a distribution exists at the remote archive.
type DistributionChecker interface {
	DistributionPublished(executionContext context.Context, distributionName string) (bool, error)
}

// Dependencies enumerates external collaborators required by the manager.
type Dependencies struct {
	FileSystem          afero.Fs
	DistributionChecker DistributionChecker
}

// Options configures the repository list layout.
type Options struct {
	Directory  string
	ArchiveURL string
	Component  string
}

// Manager creates, removes, and enumerates repository list files.
type Manager struct {
	fileSystem          afero.Fs
	distributionChecker DistributionChecker
	directory           string
	archiveURL          string
	component           string
}

// NewManager constructs a Manager from the provided dependencies and options.
func NewManager(dependencies Dependencies, options Options) (*Manager, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.DistributionChecker == nil {
		return nil, ErrDistributionCheckerNotConfigured
	}

	trimmedDirectory := strings.TrimSpace(options.Directory)
	if len(trimmedDirectory) == 0 {
		return nil, ErrDirectoryRequired
	}

	trimmedArchiveURL := strings.TrimSpace(options.ArchiveURL)
	if len(trimmedArchiveURL) == 0 {
		return nil, ErrArchiveURLRequired
	}

	component := strings.TrimSpace(options.Component)
	if len(component) == 0 {
		component = defaultComponentConstant
	}

	return &Manager{
		fileSystem:          dependencies.FileSystem,
		distributionChecker: dependencies.DistributionChecker,
		directory:           trimmedDirectory,
		archiveURL:          trimmedArchiveURL,
		component:           component,
	}, nil
}

// Exists reports whether the backing list file for the repository is present.
func (manager *Manager) Exists(repositoryName string) (bool, error) {
	normalizedName, nameError := normalizeRepositoryName(repositoryName)
	if nameError != nil {
		return false, nameError
	}
	return afero.Exists(manager.fileSystem, manager.listFilePath(normalizedName))
}

// Add enables the repository by writing its list file. Adding an already
// enabled repository is a no-op. The repository must be published at the
// remote distribution point.
func (manager *Manager) Add(executionContext context.Context, repositoryName string) error {
	normalizedName, nameError := normalizeRepositoryName(repositoryName)
	if nameError != nil {
		return nameError
	}

	alreadyEnabled, existsError := afero.Exists(manager.fileSystem, manager.listFilePath(normalizedName))
	if existsError != nil {
		return existsError
	}
	if alreadyEnabled {
		return nil
	}

	published, checkError := manager.distributionChecker.DistributionPublished(executionContext, normalizedName)
	if checkError != nil {
		return fmt.Errorf(publishedCheckFailureTemplateConstant, normalizedName, checkError)
	}
	if !published {
		return NotPublishedError{RepositoryName: normalizedName}
	}

	if directoryError := manager.fileSystem.MkdirAll(manager.directory, listDirectoryModeConstant); directoryError != nil {
		return fmt.Errorf(listFileWriteFailureTemplateConstant, directoryError)
	}

	listEntry := fmt.Sprintf(listEntryTemplateConstant, manager.archiveURL, normalizedName, manager.component)
	if writeError := afero.WriteFile(manager.fileSystem, manager.listFilePath(normalizedName), []byte(listEntry), listFileModeConstant); writeError != nil {
		return fmt.Errorf(listFileWriteFailureTemplateConstant, writeError)
	}

	return nil
}

// Remove disables the repository by deleting its list file. Removing an
// absent repository is a no-op.
func (manager *Manager) Remove(repositoryName string) error {
	normalizedName, nameError := normalizeRepositoryName(repositoryName)
	if nameError != nil {
		return nameError
	}

	enabled, existsError := afero.Exists(manager.fileSystem, manager.listFilePath(normalizedName))
	if existsError != nil {
		return existsError
	}
	if !enabled {
		return nil
	}

	if removeError := manager.fileSystem.Remove(manager.listFilePath(normalizedName)); removeError != nil {
		return fmt.Errorf(listFileRemoveFailureTemplateConstant, removeError)
	}

	return nil
}

// ListAll returns the names of all enabled repositories.
func (manager *Manager) ListAll() ([]string, error) {
	directoryEntries, readError := afero.ReadDir(manager.fileSystem, manager.directory)
	if readError != nil {
		directoryExists, existsError := afero.DirExists(manager.fileSystem, manager.directory)
		if existsError == nil && !directoryExists {
			return []string{}, nil
		}
		return nil, fmt.Errorf(listDirectoryReadFailureTemplateConstant, readError)
	}

	repositoryNames := []string{}
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}
		fileName := directoryEntry.Name()
		if !strings.HasPrefix(fileName, listFilePrefixConstant) || !strings.HasSuffix(fileName, listFileSuffixConstant) {
			continue
		}
		repositoryName := strings.TrimSuffix(strings.TrimPrefix(fileName, listFilePrefixConstant), listFileSuffixConstant)
		if len(repositoryName) == 0 {
			continue
		}
		repositoryNames = append(repositoryNames, repositoryName)
	}

	return repositoryNames, nil
}

func (manager *Manager) listFilePath(repositoryName string) string {
	return filepath.Join(manager.directory, listFilePrefixConstant+repositoryName+listFileSuffixConstant)
}

func normalizeRepositoryName(repositoryName string) (string, error) {
	trimmedName := strings.TrimSpace(repositoryName)
	if len(trimmedName) == 0 {
		return "", ErrRepositoryNameRequired
	}
	if strings.ContainsAny(trimmedName, "/\\ ") {
		return "", fmt.Errorf(repositoryNameInvalidTemplateConstant, repositoryName)
	}
	return trimmedName, nil
}
