package projects

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avessner/atelier/internal/channels"
	"github.com/avessner/atelier/internal/execshell"
	"github.com/avessner/atelier/internal/orchestrator"
	"github.com/avessner/atelier/internal/project"
	flagutils "github.com/avessner/atelier/internal/utils/flags"
)

const (
	stageUseConstant                  = "stage"
	stageShortDescriptionConstant     = "Materialize channel artifacts without publishing them"
	stageLongDescriptionConstant      = "stage renders every selected project's artifacts into the staging area so they can be inspected before publishing."
	publishUseConstant                = "publish"
	publishShortDescriptionConstant   = "Publish staged artifacts to their channels"
	publishLongDescriptionConstant    = "publish stages every selected project and makes the resulting artifacts visible on the selected channels."
	projectsFlagConstant              = "projects"
	projectsFlagUsageConstant         = "Comma-separated project names to process."
	allProjectsFlagConstant           = "all-projects"
	allProjectsFlagUsageConstant      = "Process every registered project."
	channelsFlagConstant              = "channels"
	channelsFlagUsageConstant         = "Comma-separated channel identifiers to target."
	allChannelsFlagConstant           = "all-channels"
	allChannelsFlagUsageConstant      = "Target every channel."
	commitMessageFlagConstant         = "commit-message"
	commitMessageFlagUsageConstant    = "Commit message recorded by the GitHub channel."
	collateImagesFlagConstant         = "collate-images"
	collateImagesFlagUsageConstant    = "Collate images into the rendered document instead of exporting siblings."
	maxWidthFlagConstant              = "max-width"
	maxWidthFlagUsageConstant         = "Maximum image width in the rendered document."
	maxHeightFlagConstant             = "max-height"
	maxHeightFlagUsageConstant        = "Maximum image height in the rendered document."
	filenamePrefixFlagConstant        = "filename-prefix"
	filenamePrefixFlagUsageConstant   = "Prefix applied to exported sibling files."
	submissionNameFlagConstant        = "submission-name"
	submissionNameFlagUsageConstant   = "File name for the merged submission document."
	noProjectsSelectedMessageConstant = "no projects selected: pass --projects or --all-projects"
	noChannelsSelectedMessageConstant = "no channels selected: pass --channels or --all-channels"
	unitLineTemplateConstant          = "%-8s %-20s %s\n"
	unitSucceededTemplateConstant     = "succeeded"
	unitDestinationTemplateConstant   = "succeeded -> %s"
	unitSkippedTemplateConstant       = "skipped (%s)"
	unitFailedTemplateConstant        = "failed: %s"
	mergedDocumentTemplateConstant    = "Merged document written to %s\n"
	unitsFailedTemplateConstant       = "%d publication units failed"
)

// publicationFlagValues stores the shared stage/publish flag values.
type publicationFlagValues struct {
	projects       string
	allProjects    bool
	channels       string
	allChannels    bool
	commitMessage  string
	collateImages  bool
	maxWidth       int
	maxHeight      int
	filenamePrefix string
	submissionName string
}

// PublicationCommandBuilder assembles the stage and publish commands.
type PublicationCommandBuilder struct {
	Mode                         orchestrator.Mode
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	HumanReadableLoggingProvider func() bool
	Dependencies                 Dependencies
}

// Build constructs the stage or publish command selected by Mode.
func (builder *PublicationCommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &publicationFlagValues{}

	useLine := stageUseConstant
	shortDescription := stageShortDescriptionConstant
	longDescription := stageLongDescriptionConstant
	if builder.Mode == orchestrator.ModePublish {
		useLine = publishUseConstant
		shortDescription = publishShortDescriptionConstant
		longDescription = publishLongDescriptionConstant
	}

	command := &cobra.Command{
		Use:   useLine,
		Short: shortDescription,
		Long:  longDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, flagValues)
		},
	}

	flagSet := command.Flags()
	flagSet.StringVar(&flagValues.projects, projectsFlagConstant, "", projectsFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flagValues.allProjects, allProjectsFlagConstant, "", false, allProjectsFlagUsageConstant)
	flagSet.StringVar(&flagValues.channels, channelsFlagConstant, "", channelsFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flagValues.allChannels, allChannelsFlagConstant, "", false, allChannelsFlagUsageConstant)
	flagSet.StringVar(&flagValues.commitMessage, commitMessageFlagConstant, "", commitMessageFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, &flagValues.collateImages, collateImagesFlagConstant, "", false, collateImagesFlagUsageConstant)
	flagSet.IntVar(&flagValues.maxWidth, maxWidthFlagConstant, 0, maxWidthFlagUsageConstant)
	flagSet.IntVar(&flagValues.maxHeight, maxHeightFlagConstant, 0, maxHeightFlagUsageConstant)
	flagSet.StringVar(&flagValues.filenamePrefix, filenamePrefixFlagConstant, "", filenamePrefixFlagUsageConstant)
	flagSet.StringVar(&flagValues.submissionName, submissionNameFlagConstant, "", submissionNameFlagUsageConstant)

	return command, nil
}

func (builder *PublicationCommandBuilder) run(command *cobra.Command, flagValues *publicationFlagValues) error {
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

	records, selectionError := builder.selectRecords(registry, flagValues)
	if selectionError != nil {
		return selectionError
	}

	identifiers, identifiersError := builder.selectChannelIdentifiers(flagValues)
	if identifiersError != nil {
		return identifiersError
	}

	channelList, pdfChannel, channelsError := builder.buildChannels(configuration, logger, shellExecutor, registry, records, identifiers, flagValues)
	if channelsError != nil {
		return channelsError
	}

	runner, runnerError := orchestrator.NewOrchestrator(logger, configuration.WorkerCount)
	if runnerError != nil {
		return runnerError
	}

	report, runError := runner.Run(command.Context(), records, channelList, builder.Mode)
	if runError != nil {
		return runError
	}

	printReport(command, report)

	if builder.Mode == orchestrator.ModePublish && pdfChannel != nil && pdfChannel.PublishedSectionCount() > 1 {
		mergedDocumentPath, mergeError := pdfChannel.WriteMergedDocument()
		if mergeError != nil {
			return mergeError
		}
		fmt.Fprintf(command.OutOrStdout(), mergedDocumentTemplateConstant, mergedDocumentPath)
	}

	if report.HasFailures() {
		return fmt.Errorf(unitsFailedTemplateConstant, report.FailedCount())
	}
	return nil
}

func (builder *PublicationCommandBuilder) selectRecords(registry *project.Registry, flagValues *publicationFlagValues) ([]*project.Record, error) {
	if flagValues.allProjects {
		return registry.DiscoverRecords()
	}
	projectNames := splitProjectList(flagValues.projects)
	if len(projectNames) == 0 {
		return nil, errors.New(noProjectsSelectedMessageConstant)
	}
	records := make([]*project.Record, 0, len(projectNames))
	for _, projectName := range projectNames {
		record, lookupError := registry.FindByName(projectName)
		if lookupError != nil {
			return nil, lookupError
		}
		records = append(records, record)
	}
	return records, nil
}

func (builder *PublicationCommandBuilder) selectChannelIdentifiers(flagValues *publicationFlagValues) ([]channels.Identifier, error) {
	if flagValues.allChannels {
		return channels.Identifiers(), nil
	}
	channelNames := splitProjectList(flagValues.channels)
	if len(channelNames) == 0 {
		return nil, errors.New(noChannelsSelectedMessageConstant)
	}
	identifiers := make([]channels.Identifier, 0, len(channelNames))
	for _, channelName := range channelNames {
		identifier, parseError := channels.ParseIdentifier(channelName)
		if parseError != nil {
			return nil, parseError
		}
		identifiers = append(identifiers, identifier)
	}
	return identifiers, nil
}

func (builder *PublicationCommandBuilder) buildChannels(configuration CommandConfiguration, logger *zap.Logger, shellExecutor *execshell.ShellExecutor, registry *project.Registry, records []*project.Record, identifiers []channels.Identifier, flagValues *publicationFlagValues) ([]channels.Channel, *channels.PDFChannel, error) {
	gitManager, gitManagerError := resolveGitManager(builder.Dependencies.GitManager, shellExecutor)
	if gitManagerError != nil {
		return nil, nil, gitManagerError
	}
	githubClient, githubClientError := resolveGitHubClient(builder.Dependencies.GitHubClient, shellExecutor)
	if githubClientError != nil {
		return nil, nil, githubClientError
	}
	renderer, rendererError := resolveRenderer(builder.Dependencies.Renderer, configuration)
	if rendererError != nil {
		return nil, nil, rendererError
	}

	repositoryVisibility, visibilityError := parseRepositoryVisibility(configuration.RepositoryVisibility)
	if visibilityError != nil {
		return nil, nil, visibilityError
	}

	var pdfChannel *channels.PDFChannel
	channelList := make([]channels.Channel, 0, len(identifiers))
	for _, identifier := range identifiers {
		switch identifier {
		case channels.IdentifierGitHub:
			githubChannel, buildError := channels.NewGitHubChannel(gitManager, githubClient, registry, renderer, logger, channels.GitHubChannelConfiguration{
				Owner:                configuration.GitHubOwner,
				SiteDomain:           configuration.SiteDomain,
				RepositoryVisibility: repositoryVisibility,
			}, channels.GitHubOptions{CommitMessage: flagValues.commitMessage})
			if buildError != nil {
				return nil, nil, buildError
			}
			channelList = append(channelList, githubChannel)
		case channels.IdentifierWebsite:
			websiteChannel, buildError := channels.NewWebsiteChannel(registry, registry, renderer, gitManager, logger, websiteChannelConfiguration(configuration))
			if buildError != nil {
				return nil, nil, buildError
			}
			channelList = append(channelList, websiteChannel)
		case channels.IdentifierPDF:
			builtChannel, buildError := channels.NewPDFChannel(registry, renderer, logger, channels.PDFChannelConfiguration{
				StagingDirectory: configuration.StagingDirectory,
				OutputDirectory:  pdfOutputDirectory(configuration),
				OperatorName:     configuration.PDF.OperatorName,
			}, channels.PDFOptions{
				CollateImages:   flagValues.collateImages,
				MaxWidth:        flagValues.maxWidth,
				MaxHeight:       flagValues.maxHeight,
				FilenamePrefix:  flagValues.filenamePrefix,
				SubmissionName:  flagValues.submissionName,
				SubmissionOrder: selectedCanonicalNames(records),
			})
			if buildError != nil {
				return nil, nil, buildError
			}
			pdfChannel = builtChannel
			channelList = append(channelList, builtChannel)
		case channels.IdentifierRaw:
			rawChannel, buildError := channels.NewRawChannel(registry, logger, channels.RawChannelConfiguration{
				StagingDirectory: configuration.StagingDirectory,
				OutputDirectory:  rawOutputDirectory(configuration),
			})
			if buildError != nil {
				return nil, nil, buildError
			}
			channelList = append(channelList, rawChannel)
		}
	}
	return channelList, pdfChannel, nil
}

func selectedCanonicalNames(records []*project.Record) []string {
	canonicalNames := make([]string, 0, len(records))
	for _, record := range records {
		canonicalNames = append(canonicalNames, record.CanonicalName)
	}
	return canonicalNames
}

func printReport(command *cobra.Command, report orchestrator.Report) {
	for _, unit := range report.Units {
		outcome := unitSucceededTemplateConstant
		switch unit.Status {
		case orchestrator.UnitStatusSucceeded:
			if len(unit.Destination) > 0 {
				outcome = fmt.Sprintf(unitDestinationTemplateConstant, unit.Destination)
			}
		case orchestrator.UnitStatusSkipped:
			outcome = fmt.Sprintf(unitSkippedTemplateConstant, unit.Reason)
		case orchestrator.UnitStatusFailed:
			outcome = fmt.Sprintf(unitFailedTemplateConstant, unit.Error)
		}
		fmt.Fprintf(command.OutOrStdout(), unitLineTemplateConstant, unit.Channel, unit.Project, outcome)
	}
}
