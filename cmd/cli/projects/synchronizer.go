package projects

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/avessner/atelier/internal/channels"
	"github.com/avessner/atelier/internal/identity"
	"github.com/avessner/atelier/internal/project"
)

// buildSynchronizer wires the identity synchronizer against the live
// configuration. The roadmap publisher is only attached when the website
// channel has a configured pages directory.
func buildSynchronizer(configuration CommandConfiguration, logger *zap.Logger, dependencies Dependencies, humanReadableLogging bool) (*identity.Synchronizer, *project.Registry, error) {
	shellExecutor, executorError := resolveShellExecutor(dependencies.ShellExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return nil, nil, executorError
	}
	registry, registryError := resolveRegistry(dependencies.Registry, configuration, logger)
	if registryError != nil {
		return nil, nil, registryError
	}
	gitManager, gitManagerError := resolveGitManager(dependencies.GitManager, shellExecutor)
	if gitManagerError != nil {
		return nil, nil, gitManagerError
	}
	githubClient, githubClientError := resolveGitHubClient(dependencies.GitHubClient, shellExecutor)
	if githubClientError != nil {
		return nil, nil, githubClientError
	}
	taskManager, taskManagerError := resolveTaskManager(dependencies.TaskManager, configuration, shellExecutor)
	if taskManagerError != nil {
		return nil, nil, taskManagerError
	}

	var roadmapPublisher identity.RoadmapPublisher
	if len(configuration.Website.PagesDirectory) > 0 {
		renderer, rendererError := resolveRenderer(dependencies.Renderer, configuration)
		if rendererError != nil {
			return nil, nil, rendererError
		}
		websiteChannel, websiteError := channels.NewWebsiteChannel(registry, registry, renderer, gitManager, logger, websiteChannelConfiguration(configuration))
		if websiteError != nil {
			return nil, nil, websiteError
		}
		roadmapPublisher = websiteChannel
	}

	synchronizer, synchronizerError := identity.NewSynchronizer(registry, githubClient, gitManager, taskManager, roadmapPublisher, logger, identity.SynchronizerConfiguration{
		GitHubOwner:        configuration.GitHubOwner,
		SiteMediaDirectory: configuration.Website.MediaDirectory,
		RawExportDirectory: filepath.Join(configuration.OutputDirectory, rawOutputSubdirectoryConstant),
	})
	if synchronizerError != nil {
		return nil, nil, synchronizerError
	}
	return synchronizer, registry, nil
}

func websiteChannelConfiguration(configuration CommandConfiguration) channels.WebsiteChannelConfiguration {
	return channels.WebsiteChannelConfiguration{
		StagingDirectory:   configuration.StagingDirectory,
		PostsDirectory:     configuration.Website.PostsDirectory,
		PagesDirectory:     configuration.Website.PagesDirectory,
		MediaDirectory:     configuration.Website.MediaDirectory,
		SiteRepositoryPath: configuration.Website.RepositoryPath,
		EmptyStateMessages: websiteEmptyStateMessages(configuration),
	}
}
