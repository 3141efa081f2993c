package channels

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avessner/atelier/internal/compose"
	"github.com/avessner/atelier/internal/githubcli"
	"github.com/avessner/atelier/internal/gitrepo"
	"github.com/avessner/atelier/internal/media"
	"github.com/avessner/atelier/internal/project"
	"github.com/avessner/atelier/internal/templates"
)

const (
	githubReadmeTemplateIdentifierConstant    = "github-readme"
	githubReadmeFileNameConstant              = "README.md"
	githubDefaultRemoteNameConstant           = "origin"
	githubHostConstant                        = "github.com"
	githubCommitMessageOptionKeyConstant      = "commit_message"
	githubMissingCommitMessageReasonConstant  = "commit message required"
	githubChannelDependenciesMessageConstant  = "github channel dependencies not configured"
	githubHomepageTemplateConstant            = "https://%s/projects/%s"
	githubRepositoryIdentifierTemplate        = "%s/%s"
	githubStagedReadmeDebugMessageConstant    = "Staged GitHub README"
	githubCreatedRepositoryInfoMessage        = "Created GitHub repository for project"
	githubProjectLogFieldConstant             = "project"
	githubRepositoryLogFieldConstant          = "repository"
)

// ErrGitHubChannelDependenciesNotConfigured indicates a missing collaborator at construction.
var ErrGitHubChannelDependenciesNotConfigured = errors.New(githubChannelDependenciesMessageConstant)

// GitController is the slice of gitrepo.RepositoryManager the GitHub channel needs.
type GitController interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	StageAll(executionContext context.Context, repositoryPath string) error
	CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error
	Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	CurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
}

// RepositoryService is the slice of githubcli.Client the GitHub channel needs.
type RepositoryService interface {
	RepositoryExists(executionContext context.Context, repository string) (bool, error)
	CreateRepository(executionContext context.Context, repository string, options githubcli.RepositoryCreateOptions) error
	UpdateRepositoryDescription(executionContext context.Context, repository string, description string) error
	UpdateRepositoryHomepage(executionContext context.Context, repository string, homepageURL string) error
}

// GitHubChannelConfiguration carries process-level settings for the GitHub channel.
type GitHubChannelConfiguration struct {
	Owner                string
	SiteDomain           string
	RepositoryVisibility githubcli.RepositoryVisibility
}

// GitHubOptions carries invocation-scoped settings for the GitHub channel.
type GitHubOptions struct {
	CommitMessage string
}

// GitHubChannel publishes a project README and pushes the project repository.
type GitHubChannel struct {
	gitController     GitController
	repositoryService RepositoryService
	recordStore       RecordStore
	renderer          templates.Renderer
	logger            *zap.Logger
	configuration     GitHubChannelConfiguration
	options           GitHubOptions
}

// NewGitHubChannel wires a GitHub channel with its collaborators.
func NewGitHubChannel(gitController GitController, repositoryService RepositoryService, recordStore RecordStore, renderer templates.Renderer, logger *zap.Logger, configuration GitHubChannelConfiguration, options GitHubOptions) (*GitHubChannel, error) {
	if gitController == nil || repositoryService == nil || recordStore == nil || renderer == nil || logger == nil {
		return nil, ErrGitHubChannelDependenciesNotConfigured
	}
	return &GitHubChannel{
		gitController:     gitController,
		repositoryService: repositoryService,
		recordStore:       recordStore,
		renderer:          renderer,
		logger:            logger,
		configuration:     configuration,
		options:           options,
	}, nil
}

// Identifier names the channel.
func (channel *GitHubChannel) Identifier() Identifier {
	return IdentifierGitHub
}

// IsEligible fails closed when no commit message is available.
func (channel *GitHubChannel) IsEligible(record *project.Record) (bool, string) {
	if len(strings.TrimSpace(channel.options.CommitMessage)) == 0 {
		return false, githubMissingCommitMessageReasonConstant
	}
	return true, ""
}

// Stage renders the combined README into the project worktree and commits it locally.
//
// When the worktree is already clean no commit is created, keeping repeated
// staging idempotent.
func (channel *GitHubChannel) Stage(executionContext context.Context, record *project.Record) (StagedArtifact, error) {
	contentFragment, fragmentError := readContentFragment(record.Path)
	if fragmentError != nil {
		return StagedArtifact{}, fragmentError
	}
	inventory, scanError := media.Scan(record.Path)
	if scanError != nil {
		return StagedArtifact{}, scanError
	}

	renderContext := compose.Compose(record, contentFragment, inventory, map[string]any{
		githubCommitMessageOptionKeyConstant: channel.options.CommitMessage,
	})
	renderedReadme, renderError := channel.renderer.Render(githubReadmeTemplateIdentifierConstant, renderContext)
	if renderError != nil {
		return StagedArtifact{}, renderError
	}

	readmePath := filepath.Join(record.Path, githubReadmeFileNameConstant)
	if writeError := writeFileIfChanged(readmePath, []byte(renderedReadme)); writeError != nil {
		return StagedArtifact{}, writeError
	}

	commitCreated := false
	worktreeClean, statusError := channel.gitController.CheckCleanWorktree(executionContext, record.Path)
	if statusError != nil {
		return StagedArtifact{}, statusError
	}
	if !worktreeClean {
		if stageError := channel.gitController.StageAll(executionContext, record.Path); stageError != nil {
			return StagedArtifact{}, stageError
		}
		if commitError := channel.gitController.CreateCommit(executionContext, record.Path, channel.options.CommitMessage); commitError != nil {
			return StagedArtifact{}, commitError
		}
		commitCreated = true
	}

	channel.logger.Debug(githubStagedReadmeDebugMessageConstant,
		zap.String(githubProjectLogFieldConstant, record.CanonicalName),
		zap.Bool("commit_created", commitCreated),
	)

	return StagedArtifact{
		Channel:       IdentifierGitHub,
		Fingerprint:   compose.Fingerprint(record, contentFragment, inventory),
		Paths:         []string{readmePath},
		CommitCreated: commitCreated,
	}, nil
}

// Publish pushes the staged commit, creating the remote repository on first publish.
//
// Sync state is updated only after a confirmed push so a failed push leaves
// the record re-publishable.
func (channel *GitHubChannel) Publish(executionContext context.Context, record *project.Record, artifact StagedArtifact) (PublishResult, error) {
	if fingerprintUnchanged(record, IdentifierGitHub, artifact.Fingerprint) {
		return skippedResult(IdentifierGitHub, record.GitHubRemoteName), nil
	}

	if len(record.GitHubRemoteName) == 0 {
		repositoryIdentifier := fmt.Sprintf(githubRepositoryIdentifierTemplate, channel.configuration.Owner, record.CanonicalName)
		// The record can lose its remote name while the repository lives on,
		// for example after a reverted rename. Adopt the existing repository
		// instead of failing to create it again.
		repositoryExists, existenceError := channel.repositoryService.RepositoryExists(executionContext, repositoryIdentifier)
		if existenceError != nil {
			return PublishResult{}, existenceError
		}
		if !repositoryExists {
			creationError := channel.repositoryService.CreateRepository(executionContext, repositoryIdentifier, githubcli.RepositoryCreateOptions{
				Visibility:  channel.configuration.RepositoryVisibility,
				Description: record.Tagline,
			})
			if creationError != nil {
				return PublishResult{}, creationError
			}
			channel.logger.Info(githubCreatedRepositoryInfoMessage,
				zap.String(githubProjectLogFieldConstant, record.CanonicalName),
				zap.String(githubRepositoryLogFieldConstant, repositoryIdentifier),
			)
		}

		remoteURL, formatError := gitrepo.FormatRemoteURL(gitrepo.RemoteURL{
			Protocol:   gitrepo.RemoteProtocolSSH,
			Host:       githubHostConstant,
			Owner:      channel.configuration.Owner,
			Repository: record.CanonicalName,
		})
		if formatError != nil {
			return PublishResult{}, formatError
		}
		if remoteError := channel.gitController.AddRemote(executionContext, record.Path, githubDefaultRemoteNameConstant, remoteURL); remoteError != nil {
			return PublishResult{}, remoteError
		}
		record.GitHubRemoteName = repositoryIdentifier
	}

	branchName, branchError := channel.gitController.CurrentBranch(executionContext, record.Path)
	if branchError != nil {
		return PublishResult{}, branchError
	}
	if pushError := channel.gitController.Push(executionContext, record.Path, githubDefaultRemoteNameConstant, branchName); pushError != nil {
		return PublishResult{}, pushError
	}

	if len(strings.TrimSpace(record.Tagline)) > 0 {
		if descriptionError := channel.repositoryService.UpdateRepositoryDescription(executionContext, record.GitHubRemoteName, record.Tagline); descriptionError != nil {
			return PublishResult{}, descriptionError
		}
	}
	if record.Status == project.StatusComplete && len(channel.configuration.SiteDomain) > 0 {
		homepageURL := fmt.Sprintf(githubHomepageTemplateConstant, channel.configuration.SiteDomain, record.CanonicalName)
		if homepageError := channel.repositoryService.UpdateRepositoryHomepage(executionContext, record.GitHubRemoteName, homepageURL); homepageError != nil {
			return PublishResult{}, homepageError
		}
	}

	publishedAt := time.Now()
	record.SetSyncState(string(IdentifierGitHub), project.ChannelSyncState{
		LastPublishedAt:        publishedAt,
		LastContentFingerprint: artifact.Fingerprint,
		DestinationReference:   record.GitHubRemoteName,
	})
	if saveError := channel.recordStore.SaveRecord(record); saveError != nil {
		return PublishResult{}, saveError
	}

	return PublishResult{
		Channel:     IdentifierGitHub,
		Destination: record.GitHubRemoteName,
		PublishedAt: publishedAt,
	}, nil
}
