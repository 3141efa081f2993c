package githubcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avessner/atelier/internal/execshell"
)

const (
	repoSubcommandConstant                   = "repo"
	viewSubcommandConstant                   = "view"
	createSubcommandConstant                 = "create"
	renameSubcommandConstant                 = "rename"
	deleteSubcommandConstant                 = "delete"
	editSubcommandConstant                   = "edit"
	jsonFlagConstant                         = "--json"
	repoFlagConstant                         = "--repo"
	descriptionFlagConstant                  = "--description"
	homepageFlagConstant                     = "--homepage"
	privateVisibilityFlagConstant            = "--private"
	publicVisibilityFlagConstant             = "--public"
	confirmationFlagConstant                 = "--yes"
	repositoryFieldNameConstant              = "repository"
	newNameFieldNameConstant                 = "new_name"
	requiredValueMessageConstant             = "value required"
	executorNotConfiguredMessageConstant     = "github cli executor not configured"
	repoViewJSONFieldsConstant               = "defaultBranchRef,nameWithOwner,description,homepageUrl"
	operationErrorMessageTemplateConstant    = "%s operation failed"
	operationErrorWithCauseTemplateConstant  = "%s operation failed: %s"
	invalidInputErrorTemplateConstant        = "%s: %s"
	createRepositoryOperationNameConstant    = OperationName("CreateRepository")
	renameRepositoryOperationNameConstant    = OperationName("RenameRepository")
	deleteRepositoryOperationNameConstant    = OperationName("DeleteRepository")
	updateDescriptionOperationNameConstant   = OperationName("UpdateRepositoryDescription")
	updateHomepageOperationNameConstant      = OperationName("UpdateRepositoryHomepage")
	repositoryExistenceOperationNameConstant = OperationName("RepositoryExists")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// RepositoryVisibility describes the visibility applied to created repositories.
type RepositoryVisibility string

// Repository visibility enumerations.
const (
	RepositoryVisibilityPrivate RepositoryVisibility = RepositoryVisibility("private")
	RepositoryVisibilityPublic  RepositoryVisibility = RepositoryVisibility("public")
)

// RepositoryCreateOptions configures CreateRepository invocations.
type RepositoryCreateOptions struct {
	Visibility  RepositoryVisibility
	Description string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// RepositoryExists reports whether the repository resolves through gh repo view.
// A failing gh invocation means the repository is absent or inaccessible; other
// execution problems surface as operation errors.
func (client *Client) RepositoryExists(executionContext context.Context, repository string) (bool, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return false, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			viewSubcommandConstant,
			repositoryIdentifier,
			jsonFlagConstant,
			repoViewJSONFieldsConstant,
		},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError == nil {
		return true, nil
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		return false, nil
	}

	return false, OperationError{Operation: repositoryExistenceOperationNameConstant, Cause: executionError}
}

// CreateRepository provisions a repository on GitHub using gh repo create.
func (client *Client) CreateRepository(executionContext context.Context, repository string, options RepositoryCreateOptions) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{
		repoSubcommandConstant,
		createSubcommandConstant,
		repositoryIdentifier,
	}
	switch options.Visibility {
	case RepositoryVisibilityPublic:
		arguments = append(arguments, publicVisibilityFlagConstant)
	default:
		arguments = append(arguments, privateVisibilityFlagConstant)
	}
	if len(strings.TrimSpace(options.Description)) > 0 {
		arguments = append(arguments, descriptionFlagConstant, options.Description)
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{Arguments: arguments})
	if executionError != nil {
		return OperationError{Operation: createRepositoryOperationNameConstant, Cause: executionError}
	}

	return nil
}

// RenameRepository renames a repository on GitHub using gh repo rename.
func (client *Client) RenameRepository(executionContext context.Context, repository string, newName string) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedNewName := strings.TrimSpace(newName)
	if len(trimmedNewName) == 0 {
		return InvalidInputError{FieldName: newNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			renameSubcommandConstant,
			trimmedNewName,
			repoFlagConstant,
			repositoryIdentifier,
			confirmationFlagConstant,
		},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: renameRepositoryOperationNameConstant, Cause: executionError}
	}

	return nil
}

// DeleteRepository removes a repository on GitHub using gh repo delete.
func (client *Client) DeleteRepository(executionContext context.Context, repository string) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			deleteSubcommandConstant,
			repositoryIdentifier,
			confirmationFlagConstant,
		},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: deleteRepositoryOperationNameConstant, Cause: executionError}
	}

	return nil
}

// UpdateRepositoryDescription sets the repository description using gh repo edit.
func (client *Client) UpdateRepositoryDescription(executionContext context.Context, repository string, description string) error {
	return client.editRepository(executionContext, repository, descriptionFlagConstant, description, updateDescriptionOperationNameConstant)
}

// UpdateRepositoryHomepage sets the repository homepage URL using gh repo edit.
func (client *Client) UpdateRepositoryHomepage(executionContext context.Context, repository string, homepageURL string) error {
	return client.editRepository(executionContext, repository, homepageFlagConstant, homepageURL, updateHomepageOperationNameConstant)
}

func (client *Client) editRepository(executionContext context.Context, repository string, flagName string, flagValue string, operation OperationName) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			repoSubcommandConstant,
			editSubcommandConstant,
			repositoryIdentifier,
			flagName,
			flagValue,
		},
	}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: operation, Cause: executionError}
	}

	return nil
}
