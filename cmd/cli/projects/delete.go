package projects

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	flagutils "github.com/avessner/atelier/internal/utils/flags"
)

const (
	deleteUseConstant                      = "delete NAME"
	deleteShortDescriptionConstant         = "Delete a project and tear down its external identities"
	deleteLongDescriptionConstant          = "delete removes the git remote, task item, published site artifacts, and raw exports before deleting the project directory."
	deleteAssumeYesFlagConstant            = "yes"
	deleteAssumeYesShorthandConstant       = "y"
	deleteAssumeYesUsageConstant           = "Skip the confirmation prompt."
	deleteConfirmationTemplateConstant     = "Delete %s and all of its published artifacts? [y/N]: "
	deleteAbortedMessageConstant           = "Delete aborted\n"
	deletedMessageTemplateConstant         = "Deleted %s\n"
	deleteConfirmationAcceptedConstant     = "y"
	deleteConfirmationAcceptedLongConstant = "yes"
)

// DeleteCommandBuilder assembles the delete command.
type DeleteCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	HumanReadableLoggingProvider func() bool
	Dependencies                 Dependencies
}

// Build constructs the delete command.
func (builder *DeleteCommandBuilder) Build() (*cobra.Command, error) {
	var assumeYesValue bool

	command := &cobra.Command{
		Use:   deleteUseConstant,
		Short: deleteShortDescriptionConstant,
		Long:  deleteLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments[0], assumeYesValue)
		},
	}

	flagutils.AddToggleFlag(command.Flags(), &assumeYesValue, deleteAssumeYesFlagConstant, deleteAssumeYesShorthandConstant, false, deleteAssumeYesUsageConstant)

	return command, nil
}

func (builder *DeleteCommandBuilder) run(command *cobra.Command, canonicalName string, assumeYes bool) error {
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

	record, lookupError := registry.FindByName(canonicalName)
	if lookupError != nil {
		return lookupError
	}

	if !assumeYes && !builder.confirmDeletion(command, canonicalName) {
		fmt.Fprint(command.OutOrStdout(), deleteAbortedMessageConstant)
		return nil
	}

	result, deleteError := synchronizer.Delete(command.Context(), record)
	printStepOutcomes(command, result.Steps)
	if deleteError != nil {
		return deleteError
	}

	fmt.Fprintf(command.OutOrStdout(), deletedMessageTemplateConstant, canonicalName)
	return nil
}

func (builder *DeleteCommandBuilder) confirmDeletion(command *cobra.Command, canonicalName string) bool {
	fmt.Fprintf(command.OutOrStdout(), deleteConfirmationTemplateConstant, canonicalName)
	inputReader := bufio.NewReader(command.InOrStdin())
	response, readError := inputReader.ReadString('\n')
	if readError != nil && len(response) == 0 {
		return false
	}
	normalizedResponse := strings.ToLower(strings.TrimSpace(response))
	return normalizedResponse == deleteConfirmationAcceptedConstant || normalizedResponse == deleteConfirmationAcceptedLongConstant
}
