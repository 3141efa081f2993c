package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avessner/atelier/internal/execshell"
)

const (
	testMessagesWorkingDirectoryConstant  = "/projects/lantern"
	testMessagesRepositoryConstant        = "avessner/lantern"
	testMessagesRenamedRepositoryConstant = "lantern-studio"
	testMessagesCommitMessageConstant     = "Publish lantern updates"
	testMessagesRemoteURLConstant         = "git@github.com:avessner/lantern.git"
)

func TestCommandMessageFormatterStartedMessages(testInstance *testing.T) {
	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedMessage string
	}{
		{
			name: "git_status",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"status", "--porcelain"}, WorkingDirectory: testMessagesWorkingDirectoryConstant},
			},
			expectedMessage: "Reviewing working tree status in /projects/lantern",
		},
		{
			name: "git_commit",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"commit", "-m", testMessagesCommitMessageConstant}, WorkingDirectory: testMessagesWorkingDirectoryConstant},
			},
			expectedMessage: "Creating commit in /projects/lantern with message \"Publish lantern updates\"",
		},
		{
			name: "git_push",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"push", "origin", "main"}, WorkingDirectory: testMessagesWorkingDirectoryConstant},
			},
			expectedMessage: "Pushing main to origin from /projects/lantern",
		},
		{
			name: "github_repo_create",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGitHub,
				Details: execshell.CommandDetails{Arguments: []string{"repo", "create", testMessagesRepositoryConstant, "--private"}},
			},
			expectedMessage: "Creating GitHub repository avessner/lantern",
		},
		{
			name: "github_repo_rename",
			command: execshell.ShellCommand{
				Name:    execshell.CommandGitHub,
				Details: execshell.CommandDetails{Arguments: []string{"repo", "rename", testMessagesRenamedRepositoryConstant, "--repo", testMessagesRepositoryConstant, "--yes"}},
			},
			expectedMessage: "Renaming GitHub repository avessner/lantern to lantern-studio",
		},
		{
			name: "osascript",
			command: execshell.ShellCommand{
				Name:    execshell.CommandOSAScript,
				Details: execshell.CommandDetails{Arguments: []string{"-e", "tell application \"Things3\""}},
			},
			expectedMessage: "Running task automation script",
		},
		{
			name: "generic_without_arguments",
			command: execshell.ShellCommand{
				Name: execshell.CommandGit,
			},
			expectedMessage: "Running git",
		},
	}

	formatter := execshell.CommandMessageFormatter{}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, formatter.BuildStartedMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterOutcomeMessages(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	remoteLookupCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"remote", "get-url", "origin"}, WorkingDirectory: testMessagesWorkingDirectoryConstant},
	}
	lookupResult := execshell.ExecutionResult{StandardOutput: testMessagesRemoteURLConstant + "\n"}
	require.Equal(testInstance,
		"origin remote for /projects/lantern points to git@github.com:avessner/lantern.git",
		formatter.BuildSuccessMessage(remoteLookupCommand, lookupResult))

	deleteCommand := execshell.ShellCommand{
		Name:    execshell.CommandGitHub,
		Details: execshell.CommandDetails{Arguments: []string{"repo", "delete", testMessagesRepositoryConstant, "--yes"}},
	}
	deletionResult := execshell.ExecutionResult{ExitCode: 1, StandardError: "HTTP 403: forbidden\n"}
	require.Equal(testInstance,
		"Failed to delete GitHub repository avessner/lantern (exit code 1: HTTP 403: forbidden)",
		formatter.BuildFailureMessage(deleteCommand, deletionResult))

	scriptCommand := execshell.ShellCommand{
		Name:    execshell.CommandOSAScript,
		Details: execshell.CommandDetails{Arguments: []string{"-e", "return"}},
	}
	require.Equal(testInstance,
		"Task automation script failed: executable not found",
		formatter.BuildExecutionFailureMessage(scriptCommand, errors.New("executable not found")))
}
