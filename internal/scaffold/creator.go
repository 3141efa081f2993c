package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/avessner/atelier/internal/githubcli"
	"github.com/avessner/atelier/internal/gitrepo"
	"github.com/avessner/atelier/internal/media"
	"github.com/avessner/atelier/internal/project"
	"github.com/avessner/atelier/internal/tasklist"
)

const (
	creatorDependenciesMessageConstant = "scaffold creator dependencies not configured"
	sourceDirectoryNameConstant        = "src"
	readmeFileNameConstant             = "README.md"
	gitignoreFileNameConstant          = ".gitignore"
	skeletonDirectoryPermissions       = 0o755
	skeletonFilePermissions            = 0o644
	projectCreatedInfoMessageConstant  = "Created project"
	projectLogFieldConstant            = "project"
	remoteLogFieldConstant             = "remote"
	gitDefaultRemoteNameConstant       = "origin"
	gitDefaultHostConstant             = "github.com"

	defaultGitignoreContentConstant = `.DS_Store
*.swp
media-internal/
`
)

// ErrCreatorDependenciesNotConfigured indicates a missing collaborator at construction.
var ErrCreatorDependenciesNotConfigured = errors.New(creatorDependenciesMessageConstant)

// RepositoryCreator provisions the remote repository for a new project.
type RepositoryCreator interface {
	CreateRepository(executionContext context.Context, repository string, options githubcli.RepositoryCreateOptions) error
}

// GitInitializer prepares the local repository for a new project.
type GitInitializer interface {
	InitializeRepository(executionContext context.Context, repositoryPath string) error
	AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
}

// CreatorConfiguration carries the settings project creation needs.
type CreatorConfiguration struct {
	GitHubOwner           string
	TaskArea              string
	GitignoreTemplatePath string
	TimeSource            func() time.Time
}

// CreateOptions selects the optional integrations for one creation.
type CreateOptions struct {
	DisplayName            string
	Tagline                string
	CreateRemoteRepository bool
	RepositoryVisibility   githubcli.RepositoryVisibility
}

// Creator materializes new project directories with their full skeleton and
// registers them across the enabled integrations.
type Creator struct {
	registry          *project.Registry
	taskManager       tasklist.TaskManager
	repositoryCreator RepositoryCreator
	gitInitializer    GitInitializer
	logger            *zap.Logger
	configuration     CreatorConfiguration
}

// NewCreator wires a creator with its collaborators. The repository creator
// and git initializer may be nil when remote provisioning is unavailable.
func NewCreator(registry *project.Registry, taskManager tasklist.TaskManager, repositoryCreator RepositoryCreator, gitInitializer GitInitializer, logger *zap.Logger, configuration CreatorConfiguration) (*Creator, error) {
	if registry == nil || taskManager == nil || logger == nil {
		return nil, ErrCreatorDependenciesNotConfigured
	}
	if configuration.TimeSource == nil {
		configuration.TimeSource = time.Now
	}
	return &Creator{
		registry:          registry,
		taskManager:       taskManager,
		repositoryCreator: repositoryCreator,
		gitInitializer:    gitInitializer,
		logger:            logger,
		configuration:     configuration,
	}, nil
}

// CreateProject builds the directory skeleton for a new project, writes its
// metadata, and provisions the optional task item and remote repository.
// New projects always start in the backlog status.
func (creator *Creator) CreateProject(executionContext context.Context, canonicalName string, options CreateOptions) (*project.Record, error) {
	if validationError := project.ValidateCanonicalName(canonicalName); validationError != nil {
		return nil, validationError
	}
	if availabilityError := creator.registry.EnsureNameAvailable(canonicalName); availabilityError != nil {
		return nil, availabilityError
	}

	projectDirectory := creator.registry.ProjectDirectory(canonicalName)
	if skeletonError := creator.buildSkeleton(projectDirectory); skeletonError != nil {
		return nil, skeletonError
	}

	record := &project.Record{
		CanonicalName: canonicalName,
		DisplayName:   options.DisplayName,
		Tagline:       options.Tagline,
		Status:        project.StatusBacklog,
		CreatedAt:     creator.configuration.TimeSource(),
		Path:          projectDirectory,
	}

	if creator.taskManager.Enabled() {
		itemIdentifier, taskError := creator.taskManager.CreateItem(executionContext, record.EffectiveDisplayName(), creator.configuration.TaskArea)
		if taskError != nil {
			return nil, taskError
		}
		record.TaskItemID = itemIdentifier
	}

	if options.CreateRemoteRepository && creator.repositoryCreator != nil {
		if remoteError := creator.provisionRemote(executionContext, record, options); remoteError != nil {
			return nil, remoteError
		}
	}

	if saveError := creator.registry.SaveRecord(record); saveError != nil {
		return nil, saveError
	}

	creator.logger.Info(projectCreatedInfoMessageConstant,
		zap.String(projectLogFieldConstant, canonicalName),
		zap.String(remoteLogFieldConstant, record.GitHubRemoteName),
	)

	return record, nil
}

func (creator *Creator) buildSkeleton(projectDirectory string) error {
	skeletonDirectories := []string{
		filepath.Join(projectDirectory, sourceDirectoryNameConstant),
		filepath.Join(projectDirectory, project.ContentDirectoryName),
	}
	for _, category := range media.Categories() {
		skeletonDirectories = append(skeletonDirectories,
			filepath.Join(projectDirectory, project.PublishedMediaDirectoryName, string(category)),
			filepath.Join(projectDirectory, project.InternalMediaDirectoryName, string(category)),
		)
	}
	for _, skeletonDirectory := range skeletonDirectories {
		if directoryError := os.MkdirAll(skeletonDirectory, skeletonDirectoryPermissions); directoryError != nil {
			return directoryError
		}
	}

	contentFragmentPath := filepath.Join(projectDirectory, project.ContentDirectoryName, project.ContentFragmentFileName)
	if writeError := os.WriteFile(contentFragmentPath, []byte{}, skeletonFilePermissions); writeError != nil {
		return writeError
	}
	readmePath := filepath.Join(projectDirectory, readmeFileNameConstant)
	if writeError := os.WriteFile(readmePath, []byte{}, skeletonFilePermissions); writeError != nil {
		return writeError
	}

	gitignoreContent := []byte(defaultGitignoreContentConstant)
	if len(creator.configuration.GitignoreTemplatePath) > 0 {
		templateContent, readError := os.ReadFile(creator.configuration.GitignoreTemplatePath)
		if readError != nil {
			return readError
		}
		gitignoreContent = templateContent
	}
	return os.WriteFile(filepath.Join(projectDirectory, gitignoreFileNameConstant), gitignoreContent, skeletonFilePermissions)
}

func (creator *Creator) provisionRemote(executionContext context.Context, record *project.Record, options CreateOptions) error {
	repositoryIdentifier := fmt.Sprintf("%s/%s", creator.configuration.GitHubOwner, record.CanonicalName)
	creationError := creator.repositoryCreator.CreateRepository(executionContext, repositoryIdentifier, githubcli.RepositoryCreateOptions{
		Visibility:  options.RepositoryVisibility,
		Description: record.Tagline,
	})
	if creationError != nil {
		return creationError
	}
	record.GitHubRemoteName = repositoryIdentifier

	if creator.gitInitializer == nil {
		return nil
	}
	if initializationError := creator.gitInitializer.InitializeRepository(executionContext, record.Path); initializationError != nil {
		return initializationError
	}
	remoteURL, formatError := gitrepo.FormatRemoteURL(gitrepo.RemoteURL{
		Protocol:   gitrepo.RemoteProtocolSSH,
		Host:       gitDefaultHostConstant,
		Owner:      creator.configuration.GitHubOwner,
		Repository: record.CanonicalName,
	})
	if formatError != nil {
		return formatError
	}
	return creator.gitInitializer.AddRemote(executionContext, record.Path, gitDefaultRemoteNameConstant, remoteURL)
}
