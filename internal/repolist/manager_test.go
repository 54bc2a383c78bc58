package repolist_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/ppactl/ppactl/internal/repolist"
)

const (
	testListDirectoryConstant = "/etc/apt/sources.list.d"
	testArchiveURLConstant    = "http://repo.example.com/"
	testRepositoryConstant    = "stable"
)

type stubDistributionChecker struct {
	published      bool
	checkError     error
	requestedNames []string
}

func (checker *stubDistributionChecker) DistributionPublished(_ context.Context, distributionName string) (bool, error) {
	checker.requestedNames = append(checker.requestedNames, distributionName)
	return checker.published, checker.checkError
}

func newTestManager(testInstance *testing.T, fileSystem afero.Fs, checker repolist.DistributionChecker) *repolist.Manager {
	testInstance.Helper()

	manager, creationError := repolist.NewManager(
		repolist.Dependencies{FileSystem: fileSystem, DistributionChecker: checker},
		repolist.Options{Directory: testListDirectoryConstant, ArchiveURL: testArchiveURLConstant},
	)
	require.NoError(testInstance, creationError)
	return manager
}

func TestNewManagerValidatesInputs(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	checker := &stubDistributionChecker{published: true}

	testCases := []struct {
		name          string
		dependencies  repolist.Dependencies
		options       repolist.Options
		expectedError error
	}{
		{
			name:          "missing_filesystem",
			dependencies:  repolist.Dependencies{DistributionChecker: checker},
			options:       repolist.Options{Directory: testListDirectoryConstant, ArchiveURL: testArchiveURLConstant},
			expectedError: repolist.ErrFileSystemNotConfigured,
		},
		{
			name:          "missing_checker",
			dependencies:  repolist.Dependencies{FileSystem: fileSystem},
			options:       repolist.Options{Directory: testListDirectoryConstant, ArchiveURL: testArchiveURLConstant},
			expectedError: repolist.ErrDistributionCheckerNotConfigured,
		},
		{
			name:          "missing_directory",
			dependencies:  repolist.Dependencies{FileSystem: fileSystem, DistributionChecker: checker},
			options:       repolist.Options{ArchiveURL: testArchiveURLConstant},
			expectedError: repolist.ErrDirectoryRequired,
		},
		{
			name:          "missing_archive_url",
			dependencies:  repolist.Dependencies{FileSystem: fileSystem, DistributionChecker: checker},
			options:       repolist.Options{Directory: testListDirectoryConstant},
			expectedError: repolist.ErrArchiveURLRequired,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager, creationError := repolist.NewManager(testCase.dependencies, testCase.options)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
			require.Nil(testInstance, manager)
		})
	}
}

func TestAddThenExistsThenRemove(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	manager := newTestManager(testInstance, fileSystem, &stubDistributionChecker{published: true})

	enabled, existsError := manager.Exists(testRepositoryConstant)
	require.NoError(testInstance, existsError)
	require.False(testInstance, enabled)

	require.NoError(testInstance, manager.Add(context.Background(), testRepositoryConstant))

	enabled, existsError = manager.Exists(testRepositoryConstant)
	require.NoError(testInstance, existsError)
	require.True(testInstance, enabled)

	listContent, readError := afero.ReadFile(fileSystem, testListDirectoryConstant+"/ppa-stable.list")
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "deb http://repo.example.com/ stable main\n", string(listContent))

	require.NoError(testInstance, manager.Remove(testRepositoryConstant))

	enabled, existsError = manager.Exists(testRepositoryConstant)
	require.NoError(testInstance, existsError)
	require.False(testInstance, enabled)
}

func TestAddIsIdempotent(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	checker := &stubDistributionChecker{published: true}
	manager := newTestManager(testInstance, fileSystem, checker)

	require.NoError(testInstance, manager.Add(context.Background(), testRepositoryConstant))
	require.NoError(testInstance, manager.Add(context.Background(), testRepositoryConstant))

	// the remote check runs only for the first add
	require.Len(testInstance, checker.requestedNames, 1)
}

func TestAddRejectsUnpublishedRepository(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	manager := newTestManager(testInstance, fileSystem, &stubDistributionChecker{published: false})

	addError := manager.Add(context.Background(), "unknownrepo")
	notPublishedError := repolist.NotPublishedError{}
	require.ErrorAs(testInstance, addError, &notPublishedError)
	require.Equal(testInstance, "unknownrepo", notPublishedError.RepositoryName)

	enabled, existsError := manager.Exists("unknownrepo")
	require.NoError(testInstance, existsError)
	require.False(testInstance, enabled)
}

func TestAddWrapsCheckerFailures(testInstance *testing.T) {
	manager := newTestManager(testInstance, afero.NewMemMapFs(), &stubDistributionChecker{checkError: errors.New("connection refused")})

	addError := manager.Add(context.Background(), testRepositoryConstant)
	require.ErrorContains(testInstance, addError, "failed to verify repository")
	require.ErrorContains(testInstance, addError, "connection refused")
}

func TestRemoveMissingRepositoryIsNoOp(testInstance *testing.T) {
	manager := newTestManager(testInstance, afero.NewMemMapFs(), &stubDistributionChecker{published: true})
	require.NoError(testInstance, manager.Remove("absent"))
}

func TestListAllReturnsEnabledRepositories(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	manager := newTestManager(testInstance, fileSystem, &stubDistributionChecker{published: true})

	for _, repositoryName := range []string{"alpha", "bravo", "charlie"} {
		require.NoError(testInstance, manager.Add(context.Background(), repositoryName))
	}
	require.NoError(testInstance, manager.Remove("bravo"))

	// unrelated files are ignored
	require.NoError(testInstance, afero.WriteFile(fileSystem, testListDirectoryConstant+"/vendor.list", []byte("deb http://vendor.example.com/ stable main\n"), 0o644))

	repositoryNames, listError := manager.ListAll()
	require.NoError(testInstance, listError)
	require.ElementsMatch(testInstance, []string{"alpha", "charlie"}, repositoryNames)
}

func TestListAllWithoutDirectoryReturnsEmptySet(testInstance *testing.T) {
	manager := newTestManager(testInstance, afero.NewMemMapFs(), &stubDistributionChecker{published: true})

	repositoryNames, listError := manager.ListAll()
	require.NoError(testInstance, listError)
	require.Empty(testInstance, repositoryNames)
}

func TestOperationsValidateRepositoryNames(testInstance *testing.T) {
	manager := newTestManager(testInstance, afero.NewMemMapFs(), &stubDistributionChecker{published: true})

	_, existsError := manager.Exists("  ")
	require.ErrorIs(testInstance, existsError, repolist.ErrRepositoryNameRequired)

	addError := manager.Add(context.Background(), "../escape")
	require.ErrorContains(testInstance, addError, "not a valid distribution name")

	removeError := manager.Remove("bad name")
	require.ErrorContains(testInstance, removeError, "not a valid distribution name")
}
