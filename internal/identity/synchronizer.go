package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/avessner/atelier/internal/channels"
	"github.com/avessner/atelier/internal/gitrepo"
	"github.com/avessner/atelier/internal/project"
)

// StepName identifies one step of a cross-system identity operation.
type StepName string

// Rename saga steps, in execution order.
const (
	StepCollisionCheck         StepName = StepName("collision_check")
	StepDirectoryRename        StepName = StepName("directory_rename")
	StepMetadataUpdate         StepName = StepName("metadata_update")
	StepGitRemoteRename        StepName = StepName("git_remote_rename")
	StepTaskItemRename         StepName = StepName("task_item_rename")
	StepWebsiteArtifactRewrite StepName = StepName("website_artifact_rewrite")
)

// Delete saga steps, in execution order.
const (
	StepGitRemoteDelete         StepName = StepName("git_remote_delete")
	StepTaskItemDelete          StepName = StepName("task_item_delete")
	StepWebsiteArtifactRemoval  StepName = StepName("website_artifact_removal")
	StepRawExportRemoval        StepName = StepName("raw_export_removal")
	StepProjectDirectoryRemoval StepName = StepName("project_directory_removal")
)

const (
	synchronizerDependenciesMessageConstant = "identity synchronizer dependencies not configured"
	gitDefaultRemoteNameConstant            = "origin"
	renameStepFailedTemplateConstant        = "rename step %s failed: %s"
	deleteStepFailedTemplateConstant        = "delete step %s failed: %s"
	renameCompletedInfoMessageConstant      = "Renamed project across systems"
	deleteCompletedInfoMessageConstant      = "Deleted project across systems"
	oldNameLogFieldConstant                 = "old_name"
	newNameLogFieldConstant                 = "new_name"
	projectLogFieldConstant                 = "project"
)

// ErrSynchronizerDependenciesNotConfigured indicates a missing collaborator at construction.
var ErrSynchronizerDependenciesNotConfigured = errors.New(synchronizerDependenciesMessageConstant)

// StepOutcome reports whether one saga step completed.
type StepOutcome struct {
	Step      StepName
	Completed bool
	Error     error
}

// StepError names the saga step whose failure stopped the sequence.
type StepError struct {
	Step     StepName
	Cause    error
	deletion bool
}

// Error describes the failed step.
func (stepError StepError) Error() string {
	template := renameStepFailedTemplateConstant
	if stepError.deletion {
		template = deleteStepFailedTemplateConstant
	}
	return fmt.Sprintf(template, stepError.Step, stepError.Cause)
}

// Unwrap exposes the underlying cause.
func (stepError StepError) Unwrap() error {
	return stepError.Cause
}

// RenameResult reports the outcome of every rename step.
//
// Renames are a best-effort saga across independent systems, not a
// transaction: completed steps are never rolled back, and the outcome list
// states exactly which systems now carry the new identity.
type RenameResult struct {
	OldName string
	NewName string
	Steps   []StepOutcome
}

// Succeeded reports whether every executed step completed.
func (result RenameResult) Succeeded() bool {
	for _, outcome := range result.Steps {
		if outcome.Error != nil {
			return false
		}
	}
	return true
}

// FailedStep returns the first failed step, if any.
func (result RenameResult) FailedStep() (StepName, bool) {
	for _, outcome := range result.Steps {
		if outcome.Error != nil {
			return outcome.Step, true
		}
	}
	return StepName(""), false
}

// DeleteResult reports the outcome of every deletion step.
type DeleteResult struct {
	Name  string
	Steps []StepOutcome
}

// Succeeded reports whether every executed step completed.
func (result DeleteResult) Succeeded() bool {
	for _, outcome := range result.Steps {
		if outcome.Error != nil {
			return false
		}
	}
	return true
}

// RepositoryRenamer is the slice of githubcli.Client the synchronizer needs.
type RepositoryRenamer interface {
	RenameRepository(executionContext context.Context, repository string, newName string) error
	DeleteRepository(executionContext context.Context, repository string) error
}

// RemoteConfigurer is the slice of gitrepo.RepositoryManager the synchronizer needs.
type RemoteConfigurer interface {
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	SetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
}

// TaskItemManager is the task-list capability the synchronizer consumes.
type TaskItemManager interface {
	RenameItem(executionContext context.Context, itemIdentifier string, newTitle string) error
	DeleteItem(executionContext context.Context, itemIdentifier string) error
}

// RoadmapPublisher regenerates the live roadmap page after membership changes.
type RoadmapPublisher interface {
	PublishRoadmap(executionContext context.Context) error
}

// SynchronizerConfiguration carries the settings identity propagation needs.
type SynchronizerConfiguration struct {
	GitHubOwner        string
	SiteMediaDirectory string
	RawExportDirectory string
}

// Synchronizer propagates rename, status, and delete operations across every
// system holding a copy of a project's identity.
type Synchronizer struct {
	registry          *project.Registry
	repositoryRenamer RepositoryRenamer
	remoteConfigurer  RemoteConfigurer
	taskItemManager   TaskItemManager
	roadmapPublisher  RoadmapPublisher
	logger            *zap.Logger
	configuration     SynchronizerConfiguration
}

// NewSynchronizer wires a synchronizer with its collaborators.
//
// The task item manager and roadmap publisher may be nil when the respective
// integrations are disabled.
func NewSynchronizer(registry *project.Registry, repositoryRenamer RepositoryRenamer, remoteConfigurer RemoteConfigurer, taskItemManager TaskItemManager, roadmapPublisher RoadmapPublisher, logger *zap.Logger, configuration SynchronizerConfiguration) (*Synchronizer, error) {
	if registry == nil || repositoryRenamer == nil || remoteConfigurer == nil || logger == nil {
		return nil, ErrSynchronizerDependenciesNotConfigured
	}
	return &Synchronizer{
		registry:          registry,
		repositoryRenamer: repositoryRenamer,
		remoteConfigurer:  remoteConfigurer,
		taskItemManager:   taskItemManager,
		roadmapPublisher:  roadmapPublisher,
		logger:            logger,
		configuration:     configuration,
	}, nil
}

// Rename propagates a canonical name change across the local directory, the
// metadata file, the git remote, the task item, and published site artifacts.
//
// The collision check runs before any mutation. The local directory rename
// runs first; remote side-effecting steps follow. On failure the sequence
// stops and the result names exactly which systems were updated.
func (synchronizer *Synchronizer) Rename(executionContext context.Context, record *project.Record, newCanonicalName string) (RenameResult, error) {
	result := RenameResult{OldName: record.CanonicalName, NewName: newCanonicalName}
	oldCanonicalName := record.CanonicalName

	if failure := synchronizer.runStep(&result.Steps, StepCollisionCheck, func() error {
		if validationError := project.ValidateCanonicalName(newCanonicalName); validationError != nil {
			return validationError
		}
		return synchronizer.registry.EnsureNameAvailable(newCanonicalName)
	}); failure != nil {
		return result, StepError{Step: StepCollisionCheck, Cause: failure}
	}

	if failure := synchronizer.runStep(&result.Steps, StepDirectoryRename, func() error {
		newProjectDirectory := synchronizer.registry.ProjectDirectory(newCanonicalName)
		if renameError := os.Rename(record.Path, newProjectDirectory); renameError != nil {
			return renameError
		}
		record.Path = newProjectDirectory
		return nil
	}); failure != nil {
		return result, StepError{Step: StepDirectoryRename, Cause: failure}
	}

	if failure := synchronizer.runStep(&result.Steps, StepMetadataUpdate, func() error {
		record.CanonicalName = newCanonicalName
		return synchronizer.registry.SaveRecord(record)
	}); failure != nil {
		return result, StepError{Step: StepMetadataUpdate, Cause: failure}
	}

	if len(record.GitHubRemoteName) > 0 {
		if failure := synchronizer.runStep(&result.Steps, StepGitRemoteRename, func() error {
			return synchronizer.renameGitRemote(executionContext, record, newCanonicalName)
		}); failure != nil {
			return result, StepError{Step: StepGitRemoteRename, Cause: failure}
		}
	}

	if synchronizer.taskItemManager != nil && len(record.TaskItemID) > 0 {
		if failure := synchronizer.runStep(&result.Steps, StepTaskItemRename, func() error {
			return synchronizer.taskItemManager.RenameItem(executionContext, record.TaskItemID, newCanonicalName)
		}); failure != nil {
			return result, StepError{Step: StepTaskItemRename, Cause: failure}
		}
	}

	if failure := synchronizer.runStep(&result.Steps, StepWebsiteArtifactRewrite, func() error {
		return synchronizer.rewriteWebsiteArtifacts(executionContext, record, oldCanonicalName, newCanonicalName)
	}); failure != nil {
		return result, StepError{Step: StepWebsiteArtifactRewrite, Cause: failure}
	}

	synchronizer.logger.Info(renameCompletedInfoMessageConstant,
		zap.String(oldNameLogFieldConstant, oldCanonicalName),
		zap.String(newNameLogFieldConstant, newCanonicalName),
	)

	return result, nil
}

// ChangeStatus updates the record's status and re-triggers roadmap
// regeneration when the website channel is in use, since roadmap membership
// depends on status.
func (synchronizer *Synchronizer) ChangeStatus(executionContext context.Context, record *project.Record, newStatus project.Status) error {
	record.Status = newStatus
	if saveError := synchronizer.registry.SaveRecord(record); saveError != nil {
		return saveError
	}
	if synchronizer.roadmapPublisher != nil {
		return synchronizer.roadmapPublisher.PublishRoadmap(executionContext)
	}
	return nil
}

// Delete tears down every external identity and then removes the project
// directory, which carries the registry entry with it.
func (synchronizer *Synchronizer) Delete(executionContext context.Context, record *project.Record) (DeleteResult, error) {
	result := DeleteResult{Name: record.CanonicalName}

	if len(record.GitHubRemoteName) > 0 {
		if failure := synchronizer.runStep(&result.Steps, StepGitRemoteDelete, func() error {
			return synchronizer.repositoryRenamer.DeleteRepository(executionContext, record.GitHubRemoteName)
		}); failure != nil {
			return result, StepError{Step: StepGitRemoteDelete, Cause: failure, deletion: true}
		}
	}

	if synchronizer.taskItemManager != nil && len(record.TaskItemID) > 0 {
		if failure := synchronizer.runStep(&result.Steps, StepTaskItemDelete, func() error {
			return synchronizer.taskItemManager.DeleteItem(executionContext, record.TaskItemID)
		}); failure != nil {
			return result, StepError{Step: StepTaskItemDelete, Cause: failure, deletion: true}
		}
	}

	if failure := synchronizer.runStep(&result.Steps, StepWebsiteArtifactRemoval, func() error {
		return synchronizer.removeWebsiteArtifacts(executionContext, record)
	}); failure != nil {
		return result, StepError{Step: StepWebsiteArtifactRemoval, Cause: failure, deletion: true}
	}

	if failure := synchronizer.runStep(&result.Steps, StepRawExportRemoval, func() error {
		if len(synchronizer.configuration.RawExportDirectory) == 0 {
			return nil
		}
		return os.RemoveAll(filepath.Join(synchronizer.configuration.RawExportDirectory, record.CanonicalName))
	}); failure != nil {
		return result, StepError{Step: StepRawExportRemoval, Cause: failure, deletion: true}
	}

	if failure := synchronizer.runStep(&result.Steps, StepProjectDirectoryRemoval, func() error {
		return os.RemoveAll(record.Path)
	}); failure != nil {
		return result, StepError{Step: StepProjectDirectoryRemoval, Cause: failure, deletion: true}
	}

	synchronizer.logger.Info(deleteCompletedInfoMessageConstant,
		zap.String(projectLogFieldConstant, record.CanonicalName),
	)

	return result, nil
}

func (synchronizer *Synchronizer) runStep(outcomes *[]StepOutcome, step StepName, operation func() error) error {
	operationError := operation()
	*outcomes = append(*outcomes, StepOutcome{Step: step, Completed: operationError == nil, Error: operationError})
	return operationError
}

func (synchronizer *Synchronizer) renameGitRemote(executionContext context.Context, record *project.Record, newCanonicalName string) error {
	if renameError := synchronizer.repositoryRenamer.RenameRepository(executionContext, record.GitHubRemoteName, newCanonicalName); renameError != nil {
		return renameError
	}

	currentRemoteURL, lookupError := synchronizer.remoteConfigurer.GetRemoteURL(executionContext, record.Path, gitDefaultRemoteNameConstant)
	if lookupError != nil {
		return lookupError
	}
	parsedRemote, parseError := gitrepo.ParseRemoteURL(currentRemoteURL)
	if parseError != nil {
		return parseError
	}
	parsedRemote.Repository = newCanonicalName
	updatedRemoteURL, formatError := gitrepo.FormatRemoteURL(parsedRemote)
	if formatError != nil {
		return formatError
	}
	if updateError := synchronizer.remoteConfigurer.SetRemoteURL(executionContext, record.Path, gitDefaultRemoteNameConstant, updatedRemoteURL); updateError != nil {
		return updateError
	}

	record.GitHubRemoteName = fmt.Sprintf("%s/%s", parsedRemote.Owner, newCanonicalName)
	if syncState, found := record.SyncStateFor(string(channels.IdentifierGitHub)); found {
		syncState.DestinationReference = record.GitHubRemoteName
		record.SetSyncState(string(channels.IdentifierGitHub), syncState)
	}
	return synchronizer.registry.SaveRecord(record)
}

func (synchronizer *Synchronizer) rewriteWebsiteArtifacts(executionContext context.Context, record *project.Record, oldCanonicalName string, newCanonicalName string) error {
	if len(record.WebsitePostPath) > 0 {
		if removeError := os.Remove(record.WebsitePostPath); removeError != nil && !os.IsNotExist(removeError) {
			return removeError
		}
		record.WebsitePostPath = strings.ReplaceAll(record.WebsitePostPath, oldCanonicalName, newCanonicalName)
	}
	if len(synchronizer.configuration.SiteMediaDirectory) > 0 {
		if removeError := os.RemoveAll(filepath.Join(synchronizer.configuration.SiteMediaDirectory, oldCanonicalName)); removeError != nil {
			return removeError
		}
	}
	if syncState, found := record.SyncStateFor(string(channels.IdentifierWebsite)); found {
		syncState.DestinationReference = strings.ReplaceAll(syncState.DestinationReference, oldCanonicalName, newCanonicalName)
		// Clearing the fingerprint forces the next publish to rematerialize the post.
		syncState.LastContentFingerprint = ""
		record.SetSyncState(string(channels.IdentifierWebsite), syncState)
	}
	if saveError := synchronizer.registry.SaveRecord(record); saveError != nil {
		return saveError
	}
	if synchronizer.roadmapPublisher != nil {
		return synchronizer.roadmapPublisher.PublishRoadmap(executionContext)
	}
	return nil
}

func (synchronizer *Synchronizer) removeWebsiteArtifacts(executionContext context.Context, record *project.Record) error {
	if len(record.WebsitePostPath) > 0 {
		if removeError := os.Remove(record.WebsitePostPath); removeError != nil && !os.IsNotExist(removeError) {
			return removeError
		}
	}
	if len(synchronizer.configuration.SiteMediaDirectory) > 0 {
		if removeError := os.RemoveAll(filepath.Join(synchronizer.configuration.SiteMediaDirectory, record.CanonicalName)); removeError != nil {
			return removeError
		}
	}
	if synchronizer.roadmapPublisher != nil {
		return synchronizer.roadmapPublisher.PublishRoadmap(executionContext)
	}
	return nil
}
