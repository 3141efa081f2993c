package tasklist_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avessner/atelier/internal/execshell"
	"github.com/avessner/atelier/internal/tasklist"
)

type stubScriptExecutor struct {
	recordedDetails []execshell.CommandDetails
	result          execshell.ExecutionResult
	executionError  error
}

func (executor *stubScriptExecutor) ExecuteOSAScript(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return executor.result, executor.executionError
}

func (executor *stubScriptExecutor) joinedScript(testInstance *testing.T) string {
	testInstance.Helper()
	require.NotEmpty(testInstance, executor.recordedDetails)
	scriptLines := make([]string, 0, len(executor.recordedDetails[0].Arguments)/2)
	arguments := executor.recordedDetails[0].Arguments
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex += 2 {
		require.Equal(testInstance, "-e", arguments[argumentIndex])
		scriptLines = append(scriptLines, arguments[argumentIndex+1])
	}
	return strings.Join(scriptLines, "\n")
}

func TestNewThings3ManagerRequiresExecutor(testInstance *testing.T) {
	_, constructionError := tasklist.NewThings3Manager(nil)
	require.ErrorIs(testInstance, constructionError, tasklist.ErrExecutorNotConfigured)
}

func TestThings3ManagerCreateItem(testInstance *testing.T) {
	testCases := []struct {
		name             string
		area             string
		expectedFragment string
	}{
		{
			name:             "with_area",
			area:             "Creative",
			expectedFragment: `move newItem to area "Creative"`,
		},
		{
			name:             "without_area",
			area:             "",
			expectedFragment: `get id of newItem`,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			executor := &stubScriptExecutor{result: execshell.ExecutionResult{StandardOutput: "THM-77\n"}}
			manager, constructionError := tasklist.NewThings3Manager(executor)
			require.NoError(subTest, constructionError)

			itemIdentifier, createError := manager.CreateItem(context.Background(), "Lantern", testCase.area)
			require.NoError(subTest, createError)
			require.Equal(subTest, "THM-77", itemIdentifier)

			script := executor.joinedScript(subTest)
			require.Contains(subTest, script, `make new project with properties {name:"Lantern"}`)
			require.Contains(subTest, script, testCase.expectedFragment)
			if len(testCase.area) == 0 {
				require.NotContains(subTest, script, "move newItem to area")
			}
		})
	}
}

func TestThings3ManagerCreateItemRejectsEmptyResponse(testInstance *testing.T) {
	executor := &stubScriptExecutor{result: execshell.ExecutionResult{StandardOutput: "  \n"}}
	manager, constructionError := tasklist.NewThings3Manager(executor)
	require.NoError(testInstance, constructionError)

	_, createError := manager.CreateItem(context.Background(), "Lantern", "")
	require.Error(testInstance, createError)

	var operationError tasklist.OperationError
	require.ErrorAs(testInstance, createError, &operationError)
	require.Equal(testInstance, "CreateItem", operationError.Operation)
}

func TestThings3ManagerRenameAndDelete(testInstance *testing.T) {
	executor := &stubScriptExecutor{}
	manager, constructionError := tasklist.NewThings3Manager(executor)
	require.NoError(testInstance, constructionError)

	require.NoError(testInstance, manager.RenameItem(context.Background(), "THM-77", "beacon"))
	require.NoError(testInstance, manager.DeleteItem(context.Background(), "THM-77"))

	require.Len(testInstance, executor.recordedDetails, 2)
	require.Contains(testInstance, executor.recordedDetails[0].Arguments[1], `set name of project id "THM-77" to "beacon"`)
	require.Contains(testInstance, executor.recordedDetails[1].Arguments[1], `delete project id "THM-77"`)
}

func TestThings3ManagerEscapesQuotes(testInstance *testing.T) {
	executor := &stubScriptExecutor{result: execshell.ExecutionResult{StandardOutput: "THM-1"}}
	manager, constructionError := tasklist.NewThings3Manager(executor)
	require.NoError(testInstance, constructionError)

	_, createError := manager.CreateItem(context.Background(), `Say "hi"`, "")
	require.NoError(testInstance, createError)
	require.Contains(testInstance, executor.joinedScript(testInstance), `{name:"Say \"hi\""}`)
}

func TestThings3ManagerWrapsExecutionFailures(testInstance *testing.T) {
	executor := &stubScriptExecutor{executionError: errors.New("application not running")}
	manager, constructionError := tasklist.NewThings3Manager(executor)
	require.NoError(testInstance, constructionError)

	renameError := manager.RenameItem(context.Background(), "THM-77", "beacon")
	var operationError tasklist.OperationError
	require.ErrorAs(testInstance, renameError, &operationError)
	require.Equal(testInstance, "RenameItem", operationError.Operation)
}

func TestDisabledManagerIsInert(testInstance *testing.T) {
	manager := tasklist.NewDisabledManager()
	require.False(testInstance, manager.Enabled())

	itemIdentifier, createError := manager.CreateItem(context.Background(), "Lantern", "Creative")
	require.NoError(testInstance, createError)
	require.Empty(testInstance, itemIdentifier)
	require.NoError(testInstance, manager.RenameItem(context.Background(), "THM-77", "beacon"))
	require.NoError(testInstance, manager.DeleteItem(context.Background(), "THM-77"))
}
