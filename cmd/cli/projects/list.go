package projects

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/avessner/atelier/internal/project"
	flagutils "github.com/avessner/atelier/internal/utils/flags"
)

const (
	listUseConstant              = "list"
	listShortDescriptionConstant = "List registered projects"
	listLongDescriptionConstant  = "list prints every project in the registry with its status, creation date, and channel destinations."
	listSortByFlagConstant       = "sort-by"
	listSortByUsageConstant      = "Sort projects by the selected key."
	listStatusFlagConstant       = "status"
	listStatusUsageConstant      = "Only show projects with the selected status."
	listHeaderConstant           = "NAME\tSTATUS\tCREATED\tREMOTE\n"
	listRowTemplateConstant      = "%s\t%s\t%s\t%s\n"
	listDateLayoutConstant       = "2006-01-02"
	listEmptyCellConstant        = "-"
)

// ListCommandBuilder assembles the list command.
type ListCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	Dependencies          Dependencies
}

// Build constructs the list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	var sortByValue string
	var statusValue string

	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, sortByValue, statusValue)
		},
	}

	sortChoices := []string{string(project.SortKeyName), string(project.SortKeyCreated), string(project.SortKeyStatus)}
	command.Flags().StringVar(&sortByValue, listSortByFlagConstant, "", flagutils.FormatChoiceUsage(string(project.SortKeyName), sortChoices, listSortByUsageConstant))

	statusChoices := make([]string, 0, len(project.StatusValues()))
	for _, status := range project.StatusValues() {
		statusChoices = append(statusChoices, string(status))
	}
	command.Flags().StringVar(&statusValue, listStatusFlagConstant, "", flagutils.FormatChoiceUsage("", statusChoices, listStatusUsageConstant))

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, sortByValue string, statusValue string) error {
	configuration := expandedConfiguration(builder.ConfigurationProvider())
	logger := resolveLogger(builder.LoggerProvider)

	registry, registryError := resolveRegistry(builder.Dependencies.Registry, configuration, logger)
	if registryError != nil {
		return registryError
	}

	sortKey, sortKeyError := parseSortKey(sortByValue)
	if sortKeyError != nil {
		return sortKeyError
	}

	records, discoveryError := registry.DiscoverRecords()
	if discoveryError != nil {
		return discoveryError
	}

	if len(statusValue) > 0 {
		statusFilter, statusError := project.ParseStatus(statusValue)
		if statusError != nil {
			return statusError
		}
		records = project.FilterByStatus(records, statusFilter)
	}

	project.SortRecords(records, sortKey)

	tableWriter := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprint(tableWriter, listHeaderConstant)
	for _, record := range records {
		createdCell := listEmptyCellConstant
		if !record.CreatedAt.IsZero() {
			createdCell = record.CreatedAt.Format(listDateLayoutConstant)
		}
		remoteCell := record.GitHubRemoteName
		if len(remoteCell) == 0 {
			remoteCell = listEmptyCellConstant
		}
		fmt.Fprintf(tableWriter, listRowTemplateConstant, record.CanonicalName, record.Status, createdCell, remoteCell)
	}
	return tableWriter.Flush()
}
