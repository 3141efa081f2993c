package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	baseDirectoryRequiredMessageConstant   = "registry base directory not configured"
	registryLoggerRequiredMessageConstant  = "registry logger not configured"
	recordNotFoundTemplateConstant         = "project %q not found"
	duplicateCanonicalNameTemplateConstant = "canonical name %q already in use"
	metadataErrorTemplateConstant          = "metadata file %s: %s"
	temporaryMetadataFilePatternConstant   = "metadata-*.yml"
	discoveredRecordsDebugMessageConstant  = "Discovered project records"
	skippedRecordWarningMessageConstant    = "Skipping project with unreadable metadata"
	recordCountLogFieldConstant            = "record_count"
	baseDirectoryLogFieldConstant          = "base_directory"
	projectDirectoryLogFieldConstant       = "project_directory"
)

// SortKey selects the ordering applied by SortRecords.
type SortKey string

// Recognized sort keys for project listings.
const (
	SortKeyName    SortKey = SortKey("name")
	SortKeyCreated SortKey = SortKey("created")
	SortKeyStatus  SortKey = SortKey("status")
)

// ErrBaseDirectoryNotConfigured indicates the registry was created without a base directory.
var ErrBaseDirectoryNotConfigured = errors.New(baseDirectoryRequiredMessageConstant)

// ErrLoggerNotConfigured indicates the registry was created without a logger.
var ErrLoggerNotConfigured = errors.New(registryLoggerRequiredMessageConstant)

// RecordNotFoundError indicates no project carries the requested canonical name.
type RecordNotFoundError struct {
	Name string
}

// Error describes the missing record.
func (notFoundError RecordNotFoundError) Error() string {
	return fmt.Sprintf(recordNotFoundTemplateConstant, notFoundError.Name)
}

// DuplicateCanonicalNameError indicates a canonical name collision inside the registry.
type DuplicateCanonicalNameError struct {
	Name string
}

// Error describes the collision.
func (duplicateError DuplicateCanonicalNameError) Error() string {
	return fmt.Sprintf(duplicateCanonicalNameTemplateConstant, duplicateError.Name)
}

// MetadataError wraps failures reading or writing a metadata file.
type MetadataError struct {
	Path  string
	Cause error
}

// Error describes the metadata failure.
func (metadataError MetadataError) Error() string {
	return fmt.Sprintf(metadataErrorTemplateConstant, metadataError.Path, metadataError.Cause)
}

// Unwrap exposes the underlying cause.
func (metadataError MetadataError) Unwrap() error {
	return metadataError.Cause
}

// Registry discovers and persists project records beneath one base directory.
type Registry struct {
	baseDirectory string
	logger        *zap.Logger
}

// NewRegistry wires a registry rooted at the provided base directory.
func NewRegistry(baseDirectory string, logger *zap.Logger) (*Registry, error) {
	if len(strings.TrimSpace(baseDirectory)) == 0 {
		return nil, ErrBaseDirectoryNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	return &Registry{baseDirectory: baseDirectory, logger: logger}, nil
}

// BaseDirectory exposes the directory the registry discovers projects under.
func (registry *Registry) BaseDirectory() string {
	return registry.baseDirectory
}

// ProjectDirectory resolves the directory a canonical name maps to.
func (registry *Registry) ProjectDirectory(canonicalName string) string {
	return filepath.Join(registry.baseDirectory, canonicalName)
}

// DiscoverRecords loads every project beneath the base directory, sorted by canonical name.
func (registry *Registry) DiscoverRecords() ([]*Record, error) {
	directoryEntries, readError := os.ReadDir(registry.baseDirectory)
	if readError != nil {
		return nil, fmt.Errorf("reading base directory %s: %w", registry.baseDirectory, readError)
	}

	seenNames := map[string]struct{}{}
	records := make([]*Record, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}
		projectDirectory := filepath.Join(registry.baseDirectory, directoryEntry.Name())
		metadataPath := filepath.Join(projectDirectory, ContentDirectoryName, MetadataFileName)
		if _, statError := os.Stat(metadataPath); statError != nil {
			continue
		}

		record, loadError := registry.LoadRecord(projectDirectory)
		if loadError != nil {
			// One unreadable project must not hide every other one.
			registry.logger.Warn(skippedRecordWarningMessageConstant,
				zap.String(projectDirectoryLogFieldConstant, projectDirectory),
				zap.Error(loadError),
			)
			continue
		}
		if _, alreadySeen := seenNames[record.CanonicalName]; alreadySeen {
			return nil, DuplicateCanonicalNameError{Name: record.CanonicalName}
		}
		seenNames[record.CanonicalName] = struct{}{}
		records = append(records, record)
	}

	sort.Slice(records, func(firstIndex int, secondIndex int) bool {
		return records[firstIndex].CanonicalName < records[secondIndex].CanonicalName
	})

	registry.logger.Debug(discoveredRecordsDebugMessageConstant,
		zap.String(baseDirectoryLogFieldConstant, registry.baseDirectory),
		zap.Int(recordCountLogFieldConstant, len(records)),
	)

	return records, nil
}

// LoadRecord reads the metadata file inside the provided project directory.
//
// Missing optional fields keep their zero values so older metadata files stay
// readable. UpdatedAt advances to the newest modification time found under the
// content and published media subtrees.
func (registry *Registry) LoadRecord(projectDirectory string) (*Record, error) {
	metadataPath := filepath.Join(projectDirectory, ContentDirectoryName, MetadataFileName)
	metadataBytes, readError := os.ReadFile(metadataPath)
	if readError != nil {
		return nil, MetadataError{Path: metadataPath, Cause: readError}
	}

	record := &Record{}
	if decodeError := yaml.Unmarshal(metadataBytes, record); decodeError != nil {
		return nil, MetadataError{Path: metadataPath, Cause: decodeError}
	}

	record.Path = projectDirectory
	if len(record.CanonicalName) == 0 {
		record.CanonicalName = filepath.Base(projectDirectory)
	}
	if len(record.Status) == 0 {
		record.Status = StatusBacklog
	}
	if validationError := ValidateCanonicalName(record.CanonicalName); validationError != nil {
		return nil, MetadataError{Path: metadataPath, Cause: validationError}
	}

	latestModification := record.UpdatedAt
	for _, subtree := range []string{ContentDirectoryName, PublishedMediaDirectoryName} {
		subtreeModification := newestModificationTime(filepath.Join(projectDirectory, subtree))
		if subtreeModification.After(latestModification) {
			latestModification = subtreeModification
		}
	}
	record.UpdatedAt = latestModification

	return record, nil
}

// SaveRecord persists the record's metadata file atomically via a temporary file rename.
func (registry *Registry) SaveRecord(record *Record) error {
	contentDirectory := filepath.Join(record.Path, ContentDirectoryName)
	if ensureError := os.MkdirAll(contentDirectory, 0o755); ensureError != nil {
		return MetadataError{Path: contentDirectory, Cause: ensureError}
	}

	metadataBytes, encodeError := yaml.Marshal(record)
	if encodeError != nil {
		return MetadataError{Path: contentDirectory, Cause: encodeError}
	}

	temporaryFile, temporaryError := os.CreateTemp(contentDirectory, temporaryMetadataFilePatternConstant)
	if temporaryError != nil {
		return MetadataError{Path: contentDirectory, Cause: temporaryError}
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(metadataBytes); writeError != nil {
		temporaryFile.Close()
		os.Remove(temporaryPath)
		return MetadataError{Path: temporaryPath, Cause: writeError}
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		os.Remove(temporaryPath)
		return MetadataError{Path: temporaryPath, Cause: closeError}
	}

	metadataPath := filepath.Join(contentDirectory, MetadataFileName)
	if renameError := os.Rename(temporaryPath, metadataPath); renameError != nil {
		os.Remove(temporaryPath)
		return MetadataError{Path: metadataPath, Cause: renameError}
	}

	return nil
}

// FindByName resolves a record by canonical name.
func (registry *Registry) FindByName(canonicalName string) (*Record, error) {
	records, discoveryError := registry.DiscoverRecords()
	if discoveryError != nil {
		return nil, discoveryError
	}
	for _, record := range records {
		if record.CanonicalName == canonicalName {
			return record, nil
		}
	}
	return nil, RecordNotFoundError{Name: canonicalName}
}

// EnsureNameAvailable rejects canonical names already present in the registry.
func (registry *Registry) EnsureNameAvailable(canonicalName string) error {
	if validationError := ValidateCanonicalName(canonicalName); validationError != nil {
		return validationError
	}
	_, lookupError := registry.FindByName(canonicalName)
	if lookupError == nil {
		return DuplicateCanonicalNameError{Name: canonicalName}
	}
	var notFoundError RecordNotFoundError
	if errors.As(lookupError, &notFoundError) {
		return nil
	}
	return lookupError
}

// FilterByStatus keeps only records carrying the requested status.
func FilterByStatus(records []*Record, status Status) []*Record {
	filtered := make([]*Record, 0, len(records))
	for _, record := range records {
		if record.Status == status {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// SortRecords orders records by the requested key, falling back to canonical name.
func SortRecords(records []*Record, sortKey SortKey) {
	sort.SliceStable(records, func(firstIndex int, secondIndex int) bool {
		first := records[firstIndex]
		second := records[secondIndex]
		switch sortKey {
		case SortKeyCreated:
			if !first.CreatedAt.Equal(second.CreatedAt) {
				return first.CreatedAt.Before(second.CreatedAt)
			}
		case SortKeyStatus:
			if first.Status != second.Status {
				return statusSortRank(first.Status) < statusSortRank(second.Status)
			}
		}
		return first.CanonicalName < second.CanonicalName
	})
}

func statusSortRank(status Status) int {
	for rank, candidate := range StatusValues() {
		if candidate == status {
			return rank
		}
	}
	return len(StatusValues())
}

func newestModificationTime(root string) (latest time.Time) {
	filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil || entry.IsDir() {
			return nil
		}
		fileInfo, infoError := entry.Info()
		if infoError != nil {
			return nil
		}
		if fileInfo.ModTime().After(latest) {
			latest = fileInfo.ModTime()
		}
		return nil
	})
	return latest
}
