package projects

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avessner/atelier/internal/scaffold"
	flagutils "github.com/avessner/atelier/internal/utils/flags"
)

const (
	createUseConstant              = "create NAME"
	createShortDescriptionConstant = "Create a new project with its directory skeleton"
	createLongDescriptionConstant  = "create builds the project directory skeleton, writes the initial metadata, and optionally registers the task item and remote repository."
	createDisplayNameFlagConstant  = "display-name"
	createDisplayNameUsageConstant = "Human-facing project title."
	createTaglineFlagConstant      = "tagline"
	createTaglineUsageConstant     = "One-line project description."
	createRepositoryFlagConstant   = "repo"
	createRepositoryUsageConstant  = "Create the GitHub repository for the project."
	createVisibilityFlagConstant   = "visibility"
	createVisibilityUsageConstant  = "Visibility for the created repository."
	createdMessageTemplateConstant = "Created %s at %s\n"
)

// CreateCommandBuilder assembles the create command.
type CreateCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	HumanReadableLoggingProvider func() bool
	Dependencies                 Dependencies
}

// Build constructs the create command.
func (builder *CreateCommandBuilder) Build() (*cobra.Command, error) {
	var displayNameValue string
	var taglineValue string
	var createRepositoryValue bool
	var visibilityValue string

	command := &cobra.Command{
		Use:   createUseConstant,
		Short: createShortDescriptionConstant,
		Long:  createLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments[0], displayNameValue, taglineValue, createRepositoryValue, visibilityValue)
		},
	}

	command.Flags().StringVar(&displayNameValue, createDisplayNameFlagConstant, "", createDisplayNameUsageConstant)
	command.Flags().StringVar(&taglineValue, createTaglineFlagConstant, "", createTaglineUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &createRepositoryValue, createRepositoryFlagConstant, "", false, createRepositoryUsageConstant)
	command.Flags().StringVar(&visibilityValue, createVisibilityFlagConstant, "", flagutils.FormatChoiceUsage(
		repositoryVisibilityPrivateConstant,
		[]string{repositoryVisibilityPrivateConstant, repositoryVisibilityPublicConstant},
		createVisibilityUsageConstant,
	))

	return command, nil
}

func (builder *CreateCommandBuilder) run(command *cobra.Command, canonicalName string, displayName string, tagline string, createRepository bool, visibility string) error {
	configuration := expandedConfiguration(builder.ConfigurationProvider())
	logger := resolveLogger(builder.LoggerProvider)

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	shellExecutor, executorError := resolveShellExecutor(builder.Dependencies.ShellExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}
	registry, registryError := resolveRegistry(builder.Dependencies.Registry, configuration, logger)
	if registryError != nil {
		return registryError
	}
	taskManager, taskManagerError := resolveTaskManager(builder.Dependencies.TaskManager, configuration, shellExecutor)
	if taskManagerError != nil {
		return taskManagerError
	}
	gitManager, gitManagerError := resolveGitManager(builder.Dependencies.GitManager, shellExecutor)
	if gitManagerError != nil {
		return gitManagerError
	}
	githubClient, githubClientError := resolveGitHubClient(builder.Dependencies.GitHubClient, shellExecutor)
	if githubClientError != nil {
		return githubClientError
	}

	resolvedVisibility := visibility
	if len(resolvedVisibility) == 0 {
		resolvedVisibility = configuration.RepositoryVisibility
	}
	repositoryVisibility, visibilityError := parseRepositoryVisibility(resolvedVisibility)
	if visibilityError != nil {
		return visibilityError
	}

	creator, creatorError := scaffold.NewCreator(registry, taskManager, githubClient, gitManager, logger, scaffold.CreatorConfiguration{
		GitHubOwner: configuration.GitHubOwner,
		TaskArea:    configuration.Tasks.Area,
	})
	if creatorError != nil {
		return creatorError
	}

	record, createError := creator.CreateProject(command.Context(), canonicalName, scaffold.CreateOptions{
		DisplayName:            displayName,
		Tagline:                tagline,
		CreateRemoteRepository: createRepository,
		RepositoryVisibility:   repositoryVisibility,
	})
	if createError != nil {
		return createError
	}

	fmt.Fprintf(command.OutOrStdout(), createdMessageTemplateConstant, record.CanonicalName, record.Path)
	return nil
}
