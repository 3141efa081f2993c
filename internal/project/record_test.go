package project_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avessner/atelier/internal/project"
)

func TestValidateCanonicalName(testInstance *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectValid bool
	}{
		{name: "simple", input: "lantern", expectValid: true},
		{name: "hyphenated", input: "paper-lantern-v2", expectValid: true},
		{name: "digits", input: "area51", expectValid: true},
		{name: "uppercase", input: "Lantern"},
		{name: "spaces", input: "paper lantern"},
		{name: "leading_hyphen", input: "-lantern"},
		{name: "trailing_hyphen", input: "lantern-"},
		{name: "consecutive_hyphens", input: "paper--lantern"},
		{name: "empty", input: ""},
		{name: "unicode", input: "lantern-🏮"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			validationError := project.ValidateCanonicalName(testCase.input)
			if testCase.expectValid {
				require.NoError(testInstance, validationError)
			} else {
				require.Error(testInstance, validationError)
			}
		})
	}
}

func TestParseStatus(testInstance *testing.T) {
	for _, status := range project.StatusValues() {
		parsed, parseError := project.ParseStatus(string(status))
		require.NoError(testInstance, parseError)
		require.Equal(testInstance, status, parsed)
	}

	_, unknownError := project.ParseStatus("archived")
	var statusError project.InvalidStatusError
	require.ErrorAs(testInstance, unknownError, &statusError)
	require.Equal(testInstance, "archived", statusError.Value)
}

func TestRecordSyncStateRoundTrip(testInstance *testing.T) {
	record := &project.Record{CanonicalName: "lantern"}

	_, found := record.SyncStateFor("github")
	require.False(testInstance, found)

	publishedAt := time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)
	record.SetSyncState("github", project.ChannelSyncState{
		LastPublishedAt:        publishedAt,
		LastContentFingerprint: "abc123",
	})

	syncState, found := record.SyncStateFor("github")
	require.True(testInstance, found)
	require.Equal(testInstance, publishedAt, syncState.LastPublishedAt)
	require.Equal(testInstance, "abc123", syncState.LastContentFingerprint)
}

func TestRecordEffectiveDisplayName(testInstance *testing.T) {
	withDisplay := &project.Record{CanonicalName: "lantern", DisplayName: "Lantern 🏮"}
	require.Equal(testInstance, "Lantern 🏮", withDisplay.EffectiveDisplayName())

	withoutDisplay := &project.Record{CanonicalName: "lantern"}
	require.Equal(testInstance, "lantern", withoutDisplay.EffectiveDisplayName())
}

func TestSortRecords(testInstance *testing.T) {
	early := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	records := []*project.Record{
		{CanonicalName: "orrery", Status: project.StatusBacklog, CreatedAt: late},
		{CanonicalName: "lantern", Status: project.StatusComplete, CreatedAt: early},
		{CanonicalName: "automaton", Status: project.StatusInProgress, CreatedAt: late},
	}

	project.SortRecords(records, project.SortKeyName)
	require.Equal(testInstance, "automaton", records[0].CanonicalName)
	require.Equal(testInstance, "lantern", records[1].CanonicalName)
	require.Equal(testInstance, "orrery", records[2].CanonicalName)

	project.SortRecords(records, project.SortKeyCreated)
	require.Equal(testInstance, "lantern", records[0].CanonicalName)

	project.SortRecords(records, project.SortKeyStatus)
	require.Equal(testInstance, project.StatusInProgress, records[0].Status)
	require.Equal(testInstance, project.StatusComplete, records[1].Status)
	require.Equal(testInstance, project.StatusBacklog, records[2].Status)
}

func TestFilterByStatus(testInstance *testing.T) {
	records := []*project.Record{
		{CanonicalName: "lantern", Status: project.StatusComplete},
		{CanonicalName: "orrery", Status: project.StatusBacklog},
		{CanonicalName: "automaton", Status: project.StatusComplete},
	}

	complete := project.FilterByStatus(records, project.StatusComplete)
	require.Len(testInstance, complete, 2)
	for _, record := range complete {
		require.Equal(testInstance, project.Status("complete"), record.Status)
	}

	require.Empty(testInstance, project.FilterByStatus(records, project.StatusInProgress))
}
