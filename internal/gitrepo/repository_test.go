package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avessner/atelier/internal/execshell"
	"github.com/avessner/atelier/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/projects/lantern"
	testRemoteNameConstant     = "origin"
	testRemoteURLConstant      = "git@github.com:avessner/lantern.git"
	testBranchNameConstant     = "main"
	testCommitMessageConstant  = "Publish lantern updates"
)

type stubGitExecutor struct {
	executionResult execshell.ExecutionResult
	executionError  error
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return executor.executionResult, executor.executionError
}

func TestNewRepositoryManagerValidation(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.Nil(testInstance, manager)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
}

func TestRepositoryManagerCheckCleanWorktree(testInstance *testing.T) {
	testCases := []struct {
		name           string
		standardOutput string
		expectedClean  bool
	}{
		{name: "clean_worktree", standardOutput: "\n", expectedClean: true},
		{name: "dirty_worktree", standardOutput: " M content/body.md\n", expectedClean: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testCase.standardOutput}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			clean, checkError := manager.CheckCleanWorktree(context.Background(), testRepositoryPathConstant)
			require.NoError(testInstance, checkError)
			require.Equal(testInstance, testCase.expectedClean, clean)
			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, []string{"status", "--porcelain"}, executor.recordedDetails[0].Arguments)
			require.Equal(testInstance, testRepositoryPathConstant, executor.recordedDetails[0].WorkingDirectory)
		})
	}
}

func TestRepositoryManagerRemoteOperations(testInstance *testing.T) {
	executor := &stubGitExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testRemoteURLConstant + "\n"}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	remoteURL, lookupError := manager.GetRemoteURL(context.Background(), testRepositoryPathConstant, testRemoteNameConstant)
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, testRemoteURLConstant, remoteURL)
	require.Equal(testInstance, []string{"remote", "get-url", testRemoteNameConstant}, executor.recordedDetails[0].Arguments)

	updateError := manager.SetRemoteURL(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, testRemoteURLConstant)
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, []string{"remote", "set-url", testRemoteNameConstant, testRemoteURLConstant}, executor.recordedDetails[1].Arguments)
}

func TestRepositoryManagerCommitLifecycle(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.InitializeRepository(context.Background(), testRepositoryPathConstant))
	require.NoError(testInstance, manager.StageAll(context.Background(), testRepositoryPathConstant))
	require.NoError(testInstance, manager.CreateCommit(context.Background(), testRepositoryPathConstant, testCommitMessageConstant))
	require.NoError(testInstance, manager.Push(context.Background(), testRepositoryPathConstant, testRemoteNameConstant, testBranchNameConstant))

	require.Len(testInstance, executor.recordedDetails, 4)
	require.Equal(testInstance, []string{"init"}, executor.recordedDetails[0].Arguments)
	require.Equal(testInstance, []string{"add", "--all"}, executor.recordedDetails[1].Arguments)
	require.Equal(testInstance, []string{"commit", "-m", testCommitMessageConstant}, executor.recordedDetails[2].Arguments)
	require.Equal(testInstance, []string{"push", "--set-upstream", testRemoteNameConstant, testBranchNameConstant}, executor.recordedDetails[3].Arguments)
}

func TestRepositoryManagerCurrentBranch(testInstance *testing.T) {
	executor := &stubGitExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testBranchNameConstant + "\n"}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	branchName, branchError := manager.CurrentBranch(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, branchError)
	require.Equal(testInstance, testBranchNameConstant, branchName)
	require.Equal(testInstance, []string{"rev-parse", "--abbrev-ref", "HEAD"}, executor.recordedDetails[0].Arguments)
}

func TestRepositoryManagerPropagatesExecutionErrors(testInstance *testing.T) {
	executionFailure := errors.New("git unavailable")
	executor := &stubGitExecutor{executionError: executionFailure}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	_, checkError := manager.CheckCleanWorktree(context.Background(), testRepositoryPathConstant)
	require.ErrorIs(testInstance, checkError, executionFailure)

	_, lookupError := manager.GetRemoteURL(context.Background(), testRepositoryPathConstant, testRemoteNameConstant)
	require.ErrorIs(testInstance, lookupError, executionFailure)
}
