package projects

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avessner/atelier/internal/project"
)

const (
	statusUseConstant                    = "status NAME STATUS"
	statusShortDescriptionConstant       = "Change a project's lifecycle status"
	statusLongDescriptionConstant        = "status updates the project's lifecycle status and regenerates the site roadmap when the website channel is configured."
	statusChangedMessageTemplateConstant = "Set %s to %s\n"
)

// StatusCommandBuilder assembles the status command.
type StatusCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	HumanReadableLoggingProvider func() bool
	Dependencies                 Dependencies
}

// Build constructs the status command.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusUseConstant,
		Short: statusShortDescriptionConstant,
		Long:  statusLongDescriptionConstant,
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments[0], arguments[1])
		},
	}
	return command, nil
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, canonicalName string, rawStatus string) error {
	configuration := expandedConfiguration(builder.ConfigurationProvider())
	logger := resolveLogger(builder.LoggerProvider)

	newStatus, statusError := project.ParseStatus(rawStatus)
	if statusError != nil {
		return statusError
	}

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

	if changeError := synchronizer.ChangeStatus(command.Context(), record, newStatus); changeError != nil {
		return changeError
	}

	fmt.Fprintf(command.OutOrStdout(), statusChangedMessageTemplateConstant, canonicalName, newStatus)
	return nil
}
