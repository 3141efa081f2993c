package projects

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avessner/atelier/internal/identity"
)

const (
	renameUseConstant               = "rename OLD_NAME NEW_NAME"
	renameShortDescriptionConstant  = "Rename a project across every connected system"
	renameLongDescriptionConstant   = "rename propagates a canonical name change to the local directory, the metadata file, the git remote, the task item, and published site artifacts."
	renameStepTemplateConstant      = "%s %s\n"
	renameStepCompletedMarkConstant = "ok"
	renameStepFailedMarkConstant    = "failed"
	renamedMessageTemplateConstant  = "Renamed %s to %s\n"
)

// RenameCommandBuilder assembles the rename command.
type RenameCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	HumanReadableLoggingProvider func() bool
	Dependencies                 Dependencies
}

// Build constructs the rename command.
func (builder *RenameCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   renameUseConstant,
		Short: renameShortDescriptionConstant,
		Long:  renameLongDescriptionConstant,
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments[0], arguments[1])
		},
	}
	return command, nil
}

func (builder *RenameCommandBuilder) run(command *cobra.Command, oldName string, newName string) error {
	configuration := expandedConfiguration(builder.ConfigurationProvider())
	logger := resolveLogger(builder.LoggerProvider)

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	synchronizer, registry, wiringError := buildSynchronizer(configuration, logger, builder.Dependencies, humanReadableLogging)
	if wiringError != nil {
		return wiringError
	}

	record, lookupError := registry.FindByName(oldName)
	if lookupError != nil {
		return lookupError
	}

	result, renameError := synchronizer.Rename(command.Context(), record, newName)
	printStepOutcomes(command, result.Steps)
	if renameError != nil {
		return renameError
	}

	fmt.Fprintf(command.OutOrStdout(), renamedMessageTemplateConstant, oldName, newName)
	return nil
}

func printStepOutcomes(command *cobra.Command, outcomes []identity.StepOutcome) {
	for _, outcome := range outcomes {
		mark := renameStepCompletedMarkConstant
		if outcome.Error != nil {
			mark = renameStepFailedMarkConstant
		}
		fmt.Fprintf(command.OutOrStdout(), renameStepTemplateConstant, outcome.Step, mark)
	}
}
