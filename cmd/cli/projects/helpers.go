package projects

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/avessner/atelier/internal/execshell"
	"github.com/avessner/atelier/internal/githubcli"
	"github.com/avessner/atelier/internal/gitrepo"
	"github.com/avessner/atelier/internal/project"
	"github.com/avessner/atelier/internal/tasklist"
	"github.com/avessner/atelier/internal/templates"
	"github.com/avessner/atelier/internal/ui"
	pathutils "github.com/avessner/atelier/internal/utils/path"
)

const (
	unknownSortKeyTemplateConstant        = "unknown sort key %q"
	unknownVisibilityTemplateConstant     = "unknown repository visibility %q"
	projectArgumentRequiredConstant       = "project name argument is required"
	projectListSeparatorConstant          = ","
	repositoryVisibilityPrivateConstant   = "private"
	repositoryVisibilityPublicConstant    = "public"
	rawOutputSubdirectoryConstant         = "raw"
	pdfOutputSubdirectoryFallbackConstant = "pdf"
)

// LoggerProvider supplies the logger shared across command builders.
type LoggerProvider func() *zap.Logger

// Dependencies carries optional collaborator overrides for command builders.
// Unset fields are resolved against the live configuration.
type Dependencies struct {
	Registry      *project.Registry
	ShellExecutor *execshell.ShellExecutor
	GitManager    *gitrepo.RepositoryManager
	GitHubClient  *githubcli.Client
	TaskManager   tasklist.TaskManager
	Renderer      templates.Renderer
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveShellExecutor(existing *execshell.ShellExecutor, logger *zap.Logger, humanReadableLogging bool) (*execshell.ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	executor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}
	if humanReadableLogging {
		executor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}
	return executor, nil
}

func resolveRegistry(existing *project.Registry, configuration CommandConfiguration, logger *zap.Logger) (*project.Registry, error) {
	if existing != nil {
		return existing, nil
	}
	expander := pathutils.NewHomeExpander()
	return project.NewRegistry(expander.Expand(configuration.BaseDirectory), logger)
}

func resolveGitManager(existing *gitrepo.RepositoryManager, executor *execshell.ShellExecutor) (*gitrepo.RepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}

func resolveGitHubClient(existing *githubcli.Client, executor *execshell.ShellExecutor) (*githubcli.Client, error) {
	if existing != nil {
		return existing, nil
	}
	return githubcli.NewClient(executor)
}

func resolveTaskManager(existing tasklist.TaskManager, configuration CommandConfiguration, executor *execshell.ShellExecutor) (tasklist.TaskManager, error) {
	if existing != nil {
		return existing, nil
	}
	if !configuration.Tasks.Enabled {
		return tasklist.NewDisabledManager(), nil
	}
	return tasklist.NewThings3Manager(executor)
}

func resolveRenderer(existing templates.Renderer, configuration CommandConfiguration) (templates.Renderer, error) {
	if existing != nil {
		return existing, nil
	}
	expander := pathutils.NewHomeExpander()
	return templates.NewFileRenderer(expander.Expand(configuration.TemplatesDirectory))
}

func parseRepositoryVisibility(value string) (githubcli.RepositoryVisibility, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case repositoryVisibilityPrivateConstant, "":
		return githubcli.RepositoryVisibilityPrivate, nil
	case repositoryVisibilityPublicConstant:
		return githubcli.RepositoryVisibilityPublic, nil
	default:
		return githubcli.RepositoryVisibility(""), fmt.Errorf(unknownVisibilityTemplateConstant, value)
	}
}

func parseSortKey(value string) (project.SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(project.SortKeyName), "":
		return project.SortKeyName, nil
	case string(project.SortKeyCreated):
		return project.SortKeyCreated, nil
	case string(project.SortKeyStatus):
		return project.SortKeyStatus, nil
	default:
		return project.SortKey(""), fmt.Errorf(unknownSortKeyTemplateConstant, value)
	}
}

func splitProjectList(value string) []string {
	segments := strings.Split(value, projectListSeparatorConstant)
	projectNames := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmedSegment := strings.TrimSpace(segment)
		if len(trimmedSegment) > 0 {
			projectNames = append(projectNames, trimmedSegment)
		}
	}
	return projectNames
}

func expandedConfiguration(configuration CommandConfiguration) CommandConfiguration {
	expander := pathutils.NewHomeExpander()
	configuration.BaseDirectory = expander.Expand(configuration.BaseDirectory)
	configuration.StagingDirectory = expander.Expand(configuration.StagingDirectory)
	configuration.OutputDirectory = expander.Expand(configuration.OutputDirectory)
	configuration.TemplatesDirectory = expander.Expand(configuration.TemplatesDirectory)
	configuration.Website.RepositoryPath = expander.Expand(configuration.Website.RepositoryPath)
	configuration.Website.PostsDirectory = expander.Expand(configuration.Website.PostsDirectory)
	configuration.Website.PagesDirectory = expander.Expand(configuration.Website.PagesDirectory)
	configuration.Website.MediaDirectory = expander.Expand(configuration.Website.MediaDirectory)
	configuration.PDF.OutputDirectory = expander.Expand(configuration.PDF.OutputDirectory)
	return configuration
}

func pdfOutputDirectory(configuration CommandConfiguration) string {
	if len(configuration.PDF.OutputDirectory) > 0 {
		return configuration.PDF.OutputDirectory
	}
	return filepath.Join(configuration.OutputDirectory, pdfOutputSubdirectoryFallbackConstant)
}

func rawOutputDirectory(configuration CommandConfiguration) string {
	return filepath.Join(configuration.OutputDirectory, rawOutputSubdirectoryConstant)
}

func websiteEmptyStateMessages(configuration CommandConfiguration) map[project.Status]string {
	messages := map[project.Status]string{}
	for rawStatus, message := range configuration.Website.EmptyStateMessages {
		parsedStatus, parseError := project.ParseStatus(rawStatus)
		if parseError != nil {
			continue
		}
		messages[parsedStatus] = message
	}
	return messages
}
