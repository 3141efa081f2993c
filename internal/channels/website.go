package channels

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/avessner/atelier/internal/compose"
	"github.com/avessner/atelier/internal/media"
	"github.com/avessner/atelier/internal/project"
	"github.com/avessner/atelier/internal/templates"
)

const (
	websitePostTemplateIdentifierConstant    = "website-post"
	websiteRoadmapTemplateIdentifierConstant = "website-roadmap"
	websiteRoadmapFileNameConstant           = "roadmap.md"
	websitePostsSubdirectoryConstant         = "posts"
	websitePagesSubdirectoryConstant         = "pages"
	websitePostFileNameTemplateConstant      = "%s-%s.md"
	websitePostDateLayoutConstant            = "2006-01-02"
	websiteFrontMatterDelimiterConstant      = "---\n"
	websiteIneligibleReasonConstant          = "status must be complete"
	websiteDependenciesMessageConstant       = "website channel dependencies not configured"
	websiteCommitMessageTemplateConstant     = "Publish %s"
	websiteStagedPostDebugMessageConstant    = "Staged website post"
	websiteProjectLogFieldConstant           = "project"
	websitePostPathLogFieldConstant          = "post_path"
)

// ErrWebsiteChannelDependenciesNotConfigured indicates a missing collaborator at construction.
var ErrWebsiteChannelDependenciesNotConfigured = errors.New(websiteDependenciesMessageConstant)

// RegistryReader exposes the registry queries the website roadmap needs.
type RegistryReader interface {
	DiscoverRecords() ([]*project.Record, error)
}

// WebsiteChannelConfiguration carries the site tree layout and display settings.
type WebsiteChannelConfiguration struct {
	StagingDirectory   string
	PostsDirectory     string
	PagesDirectory     string
	MediaDirectory     string
	SiteRepositoryPath string
	EmptyStateMessages map[project.Status]string
}

// WebsiteChannel stages site posts and regenerates the roadmap page.
type WebsiteChannel struct {
	registryReader RegistryReader
	recordStore    RecordStore
	renderer       templates.Renderer
	gitController  GitController
	logger         *zap.Logger
	configuration  WebsiteChannelConfiguration
}

// NewWebsiteChannel wires a website channel with its collaborators.
//
// The git controller may be nil when the site tree is not git-backed.
func NewWebsiteChannel(registryReader RegistryReader, recordStore RecordStore, renderer templates.Renderer, gitController GitController, logger *zap.Logger, configuration WebsiteChannelConfiguration) (*WebsiteChannel, error) {
	if registryReader == nil || recordStore == nil || renderer == nil || logger == nil {
		return nil, ErrWebsiteChannelDependenciesNotConfigured
	}
	return &WebsiteChannel{
		registryReader: registryReader,
		recordStore:    recordStore,
		renderer:       renderer,
		gitController:  gitController,
		logger:         logger,
		configuration:  configuration,
	}, nil
}

// Identifier names the channel.
func (channel *WebsiteChannel) Identifier() Identifier {
	return IdentifierWebsite
}

// IsEligible restricts full posts to complete projects; everything else reaches
// the site only through the roadmap projection.
func (channel *WebsiteChannel) IsEligible(record *project.Record) (bool, string) {
	if record.Status != project.StatusComplete {
		return false, websiteIneligibleReasonConstant
	}
	return true, ""
}

// PostFileName derives the site post filename for a record.
func (channel *WebsiteChannel) PostFileName(record *project.Record) string {
	return fmt.Sprintf(websitePostFileNameTemplateConstant, record.CreatedAt.Format(websitePostDateLayoutConstant), record.CanonicalName)
}

// Stage writes the front-matter-bearing post and the regenerated roadmap into
// the staging directory.
func (channel *WebsiteChannel) Stage(executionContext context.Context, record *project.Record) (StagedArtifact, error) {
	contentFragment, fragmentError := readContentFragment(record.Path)
	if fragmentError != nil {
		return StagedArtifact{}, fragmentError
	}
	inventory, scanError := media.Scan(record.Path)
	if scanError != nil {
		return StagedArtifact{}, scanError
	}

	renderContext := compose.Compose(record, contentFragment, inventory, nil)
	renderedBody, renderError := channel.renderer.Render(websitePostTemplateIdentifierConstant, renderContext)
	if renderError != nil {
		return StagedArtifact{}, renderError
	}

	frontMatter, frontMatterError := channel.buildFrontMatter(record, inventory)
	if frontMatterError != nil {
		return StagedArtifact{}, frontMatterError
	}

	stagedPostPath := filepath.Join(channel.configuration.StagingDirectory, websitePostsSubdirectoryConstant, channel.PostFileName(record))
	postDocument := websiteFrontMatterDelimiterConstant + frontMatter + websiteFrontMatterDelimiterConstant + renderedBody
	if writeError := writeFileIfChanged(stagedPostPath, []byte(postDocument)); writeError != nil {
		return StagedArtifact{}, writeError
	}

	roadmapDocument, roadmapError := channel.buildRoadmap()
	if roadmapError != nil {
		return StagedArtifact{}, roadmapError
	}
	stagedRoadmapPath := filepath.Join(channel.configuration.StagingDirectory, websitePagesSubdirectoryConstant, websiteRoadmapFileNameConstant)
	if writeError := writeFileIfChanged(stagedRoadmapPath, []byte(roadmapDocument)); writeError != nil {
		return StagedArtifact{}, writeError
	}

	channel.logger.Debug(websiteStagedPostDebugMessageConstant,
		zap.String(websiteProjectLogFieldConstant, record.CanonicalName),
		zap.String(websitePostPathLogFieldConstant, stagedPostPath),
	)

	return StagedArtifact{
		Channel:     IdentifierWebsite,
		Fingerprint: compose.Fingerprint(record, contentFragment, inventory),
		Paths:       []string{stagedPostPath, stagedRoadmapPath},
	}, nil
}

// Publish copies the staged post, roadmap, and media into the live site tree
// and, when the site is git-backed, commits and pushes.
func (channel *WebsiteChannel) Publish(executionContext context.Context, record *project.Record, artifact StagedArtifact) (PublishResult, error) {
	livePostPath := filepath.Join(channel.configuration.PostsDirectory, channel.PostFileName(record))
	if fingerprintUnchanged(record, IdentifierWebsite, artifact.Fingerprint) {
		return skippedResult(IdentifierWebsite, livePostPath), nil
	}

	stagedPostPath := filepath.Join(channel.configuration.StagingDirectory, websitePostsSubdirectoryConstant, channel.PostFileName(record))
	if copyError := copyFile(stagedPostPath, livePostPath); copyError != nil {
		return PublishResult{}, copyError
	}

	stagedRoadmapPath := filepath.Join(channel.configuration.StagingDirectory, websitePagesSubdirectoryConstant, websiteRoadmapFileNameConstant)
	liveRoadmapPath := filepath.Join(channel.configuration.PagesDirectory, websiteRoadmapFileNameConstant)
	if copyError := copyFile(stagedRoadmapPath, liveRoadmapPath); copyError != nil {
		return PublishResult{}, copyError
	}

	inventory, scanError := media.Scan(record.Path)
	if scanError != nil {
		return PublishResult{}, scanError
	}
	for _, asset := range inventory.AllAssets() {
		sourcePath := filepath.Join(record.Path, asset.RelativePath)
		destinationPath := filepath.Join(channel.configuration.MediaDirectory, record.CanonicalName, string(asset.Category), filepath.Base(asset.RelativePath))
		if copyError := copyFile(sourcePath, destinationPath); copyError != nil {
			return PublishResult{}, copyError
		}
	}

	if pushError := channel.commitAndPushSite(executionContext, record); pushError != nil {
		return PublishResult{}, pushError
	}

	publishedAt := time.Now()
	record.WebsitePostPath = livePostPath
	record.SetSyncState(string(IdentifierWebsite), project.ChannelSyncState{
		LastPublishedAt:        publishedAt,
		LastContentFingerprint: artifact.Fingerprint,
		DestinationReference:   livePostPath,
	})
	if saveError := channel.recordStore.SaveRecord(record); saveError != nil {
		return PublishResult{}, saveError
	}

	return PublishResult{
		Channel:     IdentifierWebsite,
		Destination: livePostPath,
		PublishedAt: publishedAt,
	}, nil
}

// PublishRoadmap regenerates the roadmap page directly into the live site
// tree. Used after status changes, which alter roadmap membership without
// going through a full publish.
func (channel *WebsiteChannel) PublishRoadmap(executionContext context.Context) error {
	roadmapDocument, roadmapError := channel.buildRoadmap()
	if roadmapError != nil {
		return roadmapError
	}
	liveRoadmapPath := filepath.Join(channel.configuration.PagesDirectory, websiteRoadmapFileNameConstant)
	return writeFileIfChanged(liveRoadmapPath, []byte(roadmapDocument))
}

func (channel *WebsiteChannel) buildFrontMatter(record *project.Record, inventory media.Inventory) (string, error) {
	mediaReferences := make([]string, 0)
	for _, asset := range inventory.AllAssets() {
		mediaReferences = append(mediaReferences, filepath.ToSlash(filepath.Join(record.CanonicalName, string(asset.Category), filepath.Base(asset.RelativePath))))
	}

	frontMatter := struct {
		Title   string   `yaml:"title"`
		Slug    string   `yaml:"slug"`
		Date    string   `yaml:"date"`
		Status  string   `yaml:"status"`
		Tagline string   `yaml:"tagline,omitempty"`
		Media   []string `yaml:"media,omitempty"`
	}{
		Title:   record.EffectiveDisplayName(),
		Slug:    record.CanonicalName,
		Date:    record.CreatedAt.Format(websitePostDateLayoutConstant),
		Status:  string(record.Status),
		Tagline: record.Tagline,
		Media:   mediaReferences,
	}

	frontMatterBytes, encodeError := yaml.Marshal(frontMatter)
	if encodeError != nil {
		return "", encodeError
	}
	return string(frontMatterBytes), nil
}

var roadmapStatusHeadings = map[project.Status]string{
	project.StatusInProgress: "In Progress",
	project.StatusComplete:   "Complete",
	project.StatusBacklog:    "Backlog",
}

func (channel *WebsiteChannel) buildRoadmap() (string, error) {
	records, discoveryError := channel.registryReader.DiscoverRecords()
	if discoveryError != nil {
		return "", discoveryError
	}

	sections := make([]map[string]any, 0, len(project.StatusValues()))
	for _, status := range project.StatusValues() {
		statusRecords := project.FilterByStatus(records, status)
		projectEntries := make([]map[string]any, 0, len(statusRecords))
		for _, statusRecord := range statusRecords {
			projectEntries = append(projectEntries, map[string]any{
				"name":    statusRecord.EffectiveDisplayName(),
				"slug":    statusRecord.CanonicalName,
				"tagline": statusRecord.Tagline,
			})
		}
		sections = append(sections, map[string]any{
			"heading":       roadmapStatusHeadings[status],
			"projects":      projectEntries,
			"empty_message": channel.configuration.EmptyStateMessages[status],
		})
	}

	return channel.renderer.Render(websiteRoadmapTemplateIdentifierConstant, map[string]any{"sections": sections})
}

func (channel *WebsiteChannel) commitAndPushSite(executionContext context.Context, record *project.Record) error {
	sitePath := channel.configuration.SiteRepositoryPath
	if channel.gitController == nil || len(sitePath) == 0 {
		return nil
	}
	if _, statError := os.Stat(filepath.Join(sitePath, ".git")); statError != nil {
		return nil
	}

	worktreeClean, statusError := channel.gitController.CheckCleanWorktree(executionContext, sitePath)
	if statusError != nil {
		return statusError
	}
	if worktreeClean {
		return nil
	}

	if stageError := channel.gitController.StageAll(executionContext, sitePath); stageError != nil {
		return stageError
	}
	commitMessage := fmt.Sprintf(websiteCommitMessageTemplateConstant, record.CanonicalName)
	if commitError := channel.gitController.CreateCommit(executionContext, sitePath, commitMessage); commitError != nil {
		return commitError
	}
	branchName, branchError := channel.gitController.CurrentBranch(executionContext, sitePath)
	if branchError != nil {
		return branchError
	}
	return channel.gitController.Push(executionContext, sitePath, githubDefaultRemoteNameConstant, branchName)
}
