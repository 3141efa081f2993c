package channels

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/avessner/atelier/internal/compose"
	"github.com/avessner/atelier/internal/media"
	"github.com/avessner/atelier/internal/project"
)

const (
	rawStagingSubdirectoryConstant = "raw"
	rawDependenciesMessageConstant = "raw channel dependencies not configured"
	rawStagedExportDebugMessage    = "Staged raw export"
	rawProjectLogFieldConstant     = "project"
	rawExportPathLogFieldConstant  = "export_path"
)

// ErrRawChannelDependenciesNotConfigured indicates a missing collaborator at construction.
var ErrRawChannelDependenciesNotConfigured = errors.New(rawDependenciesMessageConstant)

// RawChannelConfiguration carries the staging and export layout.
type RawChannelConfiguration struct {
	StagingDirectory string
	OutputDirectory  string
}

// RawChannel flattens the published media tree and content files into one
// destination folder per project. Stage and publish produce the same bytes;
// the distinction exists only to match the channel interface.
type RawChannel struct {
	recordStore   RecordStore
	logger        *zap.Logger
	configuration RawChannelConfiguration
}

// NewRawChannel wires a raw channel with its collaborators.
func NewRawChannel(recordStore RecordStore, logger *zap.Logger, configuration RawChannelConfiguration) (*RawChannel, error) {
	if recordStore == nil || logger == nil {
		return nil, ErrRawChannelDependenciesNotConfigured
	}
	return &RawChannel{recordStore: recordStore, logger: logger, configuration: configuration}, nil
}

// Identifier names the channel.
func (channel *RawChannel) Identifier() Identifier {
	return IdentifierRaw
}

// IsEligible accepts every record; the raw export has no gating.
func (channel *RawChannel) IsEligible(record *project.Record) (bool, string) {
	return true, ""
}

// Stage flattens the project into the staging directory.
func (channel *RawChannel) Stage(executionContext context.Context, record *project.Record) (StagedArtifact, error) {
	stagingRoot := filepath.Join(channel.configuration.StagingDirectory, rawStagingSubdirectoryConstant, record.CanonicalName)
	flattenedPaths, contentFragment, inventory, flattenError := channel.flattenInto(record, stagingRoot)
	if flattenError != nil {
		return StagedArtifact{}, flattenError
	}

	channel.logger.Debug(rawStagedExportDebugMessage,
		zap.String(rawProjectLogFieldConstant, record.CanonicalName),
		zap.String(rawExportPathLogFieldConstant, stagingRoot),
	)

	return StagedArtifact{
		Channel:     IdentifierRaw,
		Fingerprint: compose.Fingerprint(record, contentFragment, inventory),
		Paths:       flattenedPaths,
	}, nil
}

// Publish flattens the project into the export directory and records sync state.
func (channel *RawChannel) Publish(executionContext context.Context, record *project.Record, artifact StagedArtifact) (PublishResult, error) {
	exportRoot := filepath.Join(channel.configuration.OutputDirectory, record.CanonicalName)
	if fingerprintUnchanged(record, IdentifierRaw, artifact.Fingerprint) {
		return skippedResult(IdentifierRaw, exportRoot), nil
	}

	if _, _, _, flattenError := channel.flattenInto(record, exportRoot); flattenError != nil {
		return PublishResult{}, flattenError
	}

	publishedAt := time.Now()
	record.SetSyncState(string(IdentifierRaw), project.ChannelSyncState{
		LastPublishedAt:        publishedAt,
		LastContentFingerprint: artifact.Fingerprint,
		DestinationReference:   exportRoot,
	})
	if saveError := channel.recordStore.SaveRecord(record); saveError != nil {
		return PublishResult{}, saveError
	}

	return PublishResult{
		Channel:     IdentifierRaw,
		Destination: exportRoot,
		PublishedAt: publishedAt,
	}, nil
}

// flattenInto copies the published media tree (category subfolders preserved)
// and the content files into the destination root. The internal media subtree
// is never read.
func (channel *RawChannel) flattenInto(record *project.Record, destinationRoot string) ([]string, string, media.Inventory, error) {
	contentFragment, fragmentError := readContentFragment(record.Path)
	if fragmentError != nil {
		return nil, "", media.Inventory{}, fragmentError
	}
	inventory, scanError := media.Scan(record.Path)
	if scanError != nil {
		return nil, "", media.Inventory{}, scanError
	}

	flattenedPaths := make([]string, 0)

	contentSourcePath := filepath.Join(record.Path, project.ContentDirectoryName, project.ContentFragmentFileName)
	if _, statError := os.Stat(contentSourcePath); statError == nil {
		contentDestinationPath := filepath.Join(destinationRoot, project.ContentFragmentFileName)
		if copyError := copyFile(contentSourcePath, contentDestinationPath); copyError != nil {
			return nil, "", media.Inventory{}, copyError
		}
		flattenedPaths = append(flattenedPaths, contentDestinationPath)
	}

	for _, asset := range inventory.AllAssets() {
		destinationPath := filepath.Join(destinationRoot, string(asset.Category), filepath.Base(asset.RelativePath))
		if copyError := copyFile(filepath.Join(record.Path, asset.RelativePath), destinationPath); copyError != nil {
			return nil, "", media.Inventory{}, copyError
		}
		flattenedPaths = append(flattenedPaths, destinationPath)
	}

	sort.Strings(flattenedPaths)
	return flattenedPaths, contentFragment, inventory, nil
}
