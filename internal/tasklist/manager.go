package tasklist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avessner/atelier/internal/execshell"
)

const (
	executorRequiredMessageConstant = "task list executor not configured"
	scriptFlagConstant              = "-e"
	operationErrorTemplateConstant  = "task list %s failed: %s"
	emptyResponseMessageConstant    = "empty script response"

	createItemScriptTemplateConstant = `tell application "Things3" to set newItem to make new project with properties {name:"%s"}
tell application "Things3" to move newItem to area "%s"
tell application "Things3" to get id of newItem`
	createItemWithoutAreaScriptTemplateConstant = `tell application "Things3" to set newItem to make new project with properties {name:"%s"}
tell application "Things3" to get id of newItem`
	renameItemScriptTemplateConstant = `tell application "Things3" to set name of project id "%s" to "%s"`
	deleteItemScriptTemplateConstant = `tell application "Things3" to delete project id "%s"`
)

// ErrExecutorNotConfigured indicates the Things3 manager was created without a script executor.
var ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)

// OperationError wraps a failed task list operation with its name.
type OperationError struct {
	Operation string
	Cause     error
}

// Error describes the failed operation.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// TaskManager mirrors project identity into an external task list.
type TaskManager interface {
	Enabled() bool
	CreateItem(executionContext context.Context, title string, area string) (string, error)
	RenameItem(executionContext context.Context, itemIdentifier string, newTitle string) error
	DeleteItem(executionContext context.Context, itemIdentifier string) error
}

// ScriptExecutor runs osascript invocations.
type ScriptExecutor interface {
	ExecuteOSAScript(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Things3Manager drives the Things 3 application over osascript.
type Things3Manager struct {
	executor ScriptExecutor
}

// NewThings3Manager wires a manager around a script executor.
func NewThings3Manager(executor ScriptExecutor) (*Things3Manager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Things3Manager{executor: executor}, nil
}

// Enabled reports that the integration is active.
func (manager *Things3Manager) Enabled() bool {
	return true
}

// CreateItem creates a Things project, files it under the configured area,
// and returns the application-assigned identifier.
func (manager *Things3Manager) CreateItem(executionContext context.Context, title string, area string) (string, error) {
	script := fmt.Sprintf(createItemWithoutAreaScriptTemplateConstant, escapeScriptString(title))
	if len(strings.TrimSpace(area)) > 0 {
		script = fmt.Sprintf(createItemScriptTemplateConstant, escapeScriptString(title), escapeScriptString(area))
	}

	executionResult, executionError := manager.runScript(executionContext, script)
	if executionError != nil {
		return "", OperationError{Operation: "CreateItem", Cause: executionError}
	}

	itemIdentifier := strings.TrimSpace(executionResult.StandardOutput)
	if len(itemIdentifier) == 0 {
		return "", OperationError{Operation: "CreateItem", Cause: errors.New(emptyResponseMessageConstant)}
	}
	return itemIdentifier, nil
}

// RenameItem retitles an existing Things project.
func (manager *Things3Manager) RenameItem(executionContext context.Context, itemIdentifier string, newTitle string) error {
	script := fmt.Sprintf(renameItemScriptTemplateConstant, escapeScriptString(itemIdentifier), escapeScriptString(newTitle))
	if _, executionError := manager.runScript(executionContext, script); executionError != nil {
		return OperationError{Operation: "RenameItem", Cause: executionError}
	}
	return nil
}

// DeleteItem moves an existing Things project to the application trash.
func (manager *Things3Manager) DeleteItem(executionContext context.Context, itemIdentifier string) error {
	script := fmt.Sprintf(deleteItemScriptTemplateConstant, escapeScriptString(itemIdentifier))
	if _, executionError := manager.runScript(executionContext, script); executionError != nil {
		return OperationError{Operation: "DeleteItem", Cause: executionError}
	}
	return nil
}

func (manager *Things3Manager) runScript(executionContext context.Context, script string) (execshell.ExecutionResult, error) {
	scriptArguments := make([]string, 0, len(strings.Split(script, "\n"))*2)
	for _, scriptLine := range strings.Split(script, "\n") {
		scriptArguments = append(scriptArguments, scriptFlagConstant, scriptLine)
	}
	return manager.executor.ExecuteOSAScript(executionContext, execshell.CommandDetails{Arguments: scriptArguments})
}

func escapeScriptString(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(escaped, `"`, `\"`)
}

// DisabledManager satisfies TaskManager when the integration is switched off.
type DisabledManager struct{}

// NewDisabledManager returns the inert task manager.
func NewDisabledManager() *DisabledManager {
	return &DisabledManager{}
}

// Enabled reports that the integration is inactive.
func (manager *DisabledManager) Enabled() bool {
	return false
}

// CreateItem does nothing and returns an empty identifier.
func (manager *DisabledManager) CreateItem(_ context.Context, _ string, _ string) (string, error) {
	return "", nil
}

// RenameItem does nothing.
func (manager *DisabledManager) RenameItem(_ context.Context, _ string, _ string) error {
	return nil
}

// DeleteItem does nothing.
func (manager *DisabledManager) DeleteItem(_ context.Context, _ string) error {
	return nil
}
