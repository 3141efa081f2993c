package projects

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avessner/atelier/internal/githubcli"
	"github.com/avessner/atelier/internal/project"
)

func TestParseSortKey(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedKey   project.SortKey
		expectedError bool
	}{
		{name: "empty_defaults_to_name", input: "", expectedKey: project.SortKeyName},
		{name: "name", input: "name", expectedKey: project.SortKeyName},
		{name: "created", input: "created", expectedKey: project.SortKeyCreated},
		{name: "status_uppercase", input: "STATUS", expectedKey: project.SortKeyStatus},
		{name: "padded", input: "  created  ", expectedKey: project.SortKeyCreated},
		{name: "unknown", input: "size", expectedError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sortKey, parseError := parseSortKey(testCase.input)
			if testCase.expectedError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedKey, sortKey)
		})
	}
}

func TestParseRepositoryVisibility(testInstance *testing.T) {
	testCases := []struct {
		name               string
		input              string
		expectedVisibility githubcli.RepositoryVisibility
		expectedError      bool
	}{
		{name: "empty_defaults_to_private", input: "", expectedVisibility: githubcli.RepositoryVisibilityPrivate},
		{name: "private", input: "private", expectedVisibility: githubcli.RepositoryVisibilityPrivate},
		{name: "public_uppercase", input: "Public", expectedVisibility: githubcli.RepositoryVisibilityPublic},
		{name: "unknown", input: "internal", expectedError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			visibility, parseError := parseRepositoryVisibility(testCase.input)
			if testCase.expectedError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedVisibility, visibility)
		})
	}
}

func TestSplitProjectList(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedNames []string
	}{
		{name: "empty", input: "", expectedNames: []string{}},
		{name: "single", input: "lantern", expectedNames: []string{"lantern"}},
		{name: "multiple_with_spaces", input: "lantern, beacon ,harbor", expectedNames: []string{"lantern", "beacon", "harbor"}},
		{name: "stray_separators", input: ",lantern,,", expectedNames: []string{"lantern"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedNames, splitProjectList(testCase.input))
		})
	}
}

func TestOutputDirectoryResolution(testInstance *testing.T) {
	configuration := DefaultCommandConfiguration()
	configuration.OutputDirectory = "/tmp/published"

	require.Equal(testInstance, filepath.Join("/tmp/published", "pdf"), pdfOutputDirectory(configuration))
	require.Equal(testInstance, filepath.Join("/tmp/published", "raw"), rawOutputDirectory(configuration))

	configuration.PDF.OutputDirectory = "/tmp/documents"
	require.Equal(testInstance, "/tmp/documents", pdfOutputDirectory(configuration))
}

func TestWebsiteEmptyStateMessages(testInstance *testing.T) {
	configuration := DefaultCommandConfiguration()
	configuration.Website.EmptyStateMessages = map[string]string{
		"in_progress": "Work in progress.",
		"complete":    "Done and documented.",
		"mystery":     "Ignored entry.",
	}

	messages := websiteEmptyStateMessages(configuration)

	require.Len(testInstance, messages, 2)
	require.Equal(testInstance, "Work in progress.", messages[project.StatusInProgress])
	require.Equal(testInstance, "Done and documented.", messages[project.StatusComplete])
}
