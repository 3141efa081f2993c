package channels

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/avessner/atelier/internal/project"
)

// Identifier names one publication channel.
type Identifier string

// The closed channel variant set.
const (
	IdentifierGitHub  Identifier = Identifier("github")
	IdentifierWebsite Identifier = Identifier("website")
	IdentifierPDF     Identifier = Identifier("pdf")
	IdentifierRaw     Identifier = Identifier("raw")
)

const (
	unknownChannelTemplateConstant      = "unknown channel %q"
	contentUnchangedSkipReasonConstant  = "content unchanged since last publish"
	defaultFilePermissionsConstant      = 0o644
	defaultDirectoryPermissionsConstant = 0o755
)

// Identifiers lists every channel in default publish order.
func Identifiers() []Identifier {
	return []Identifier{IdentifierGitHub, IdentifierWebsite, IdentifierPDF, IdentifierRaw}
}

// UnknownChannelError indicates a channel name outside the variant set.
type UnknownChannelError struct {
	Name string
}

// Error describes the unknown channel.
func (unknownError UnknownChannelError) Error() string {
	return fmt.Sprintf(unknownChannelTemplateConstant, unknownError.Name)
}

// ParseIdentifier converts a textual channel name into an Identifier.
func ParseIdentifier(name string) (Identifier, error) {
	for _, identifier := range Identifiers() {
		if string(identifier) == name {
			return identifier, nil
		}
	}
	return Identifier(""), UnknownChannelError{Name: name}
}

// StagedArtifact describes the output staging produced for one record.
type StagedArtifact struct {
	Channel       Identifier
	Fingerprint   string
	Paths         []string
	RenderedBody  string
	CommitCreated bool
}

// PublishResult describes the outcome of publishing one staged artifact.
type PublishResult struct {
	Channel     Identifier
	Destination string
	Skipped     bool
	SkipReason  string
	PublishedAt time.Time
}

// Channel is the capability shared by every publication destination.
type Channel interface {
	Identifier() Identifier
	IsEligible(record *project.Record) (bool, string)
	Stage(executionContext context.Context, record *project.Record) (StagedArtifact, error)
	Publish(executionContext context.Context, record *project.Record, artifact StagedArtifact) (PublishResult, error)
}

// RecordStore persists records after publish updates their sync state.
type RecordStore interface {
	SaveRecord(record *project.Record) error
}

// readContentFragment loads the narrative fragment, treating a missing file as empty content.
func readContentFragment(projectRoot string) (string, error) {
	fragmentPath := filepath.Join(projectRoot, project.ContentDirectoryName, project.ContentFragmentFileName)
	fragmentBytes, readError := os.ReadFile(fragmentPath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return "", nil
		}
		return "", readError
	}
	return string(fragmentBytes), nil
}

// fingerprintUnchanged reports whether the channel's stored fingerprint matches the staged one.
func fingerprintUnchanged(record *project.Record, channelIdentifier Identifier, stagedFingerprint string) bool {
	syncState, found := record.SyncStateFor(string(channelIdentifier))
	if !found {
		return false
	}
	return len(syncState.LastContentFingerprint) > 0 && syncState.LastContentFingerprint == stagedFingerprint
}

// writeFileIfChanged writes content only when it differs from what is on disk,
// keeping repeated staging byte-identical and modification times stable.
func writeFileIfChanged(path string, content []byte) error {
	existingContent, readError := os.ReadFile(path)
	if readError == nil && string(existingContent) == string(content) {
		return nil
	}
	if ensureError := os.MkdirAll(filepath.Dir(path), defaultDirectoryPermissionsConstant); ensureError != nil {
		return ensureError
	}
	return os.WriteFile(path, content, defaultFilePermissionsConstant)
}

// copyFile duplicates a file's bytes to the destination path, creating parent directories.
func copyFile(sourcePath string, destinationPath string) error {
	sourceFile, openError := os.Open(sourcePath)
	if openError != nil {
		return openError
	}
	defer sourceFile.Close()

	if ensureError := os.MkdirAll(filepath.Dir(destinationPath), defaultDirectoryPermissionsConstant); ensureError != nil {
		return ensureError
	}
	destinationFile, createError := os.Create(destinationPath)
	if createError != nil {
		return createError
	}
	defer destinationFile.Close()

	if _, copyError := io.Copy(destinationFile, sourceFile); copyError != nil {
		return copyError
	}
	return destinationFile.Sync()
}

func skippedResult(identifier Identifier, destination string) PublishResult {
	return PublishResult{
		Channel:     identifier,
		Destination: destination,
		Skipped:     true,
		SkipReason:  contentUnchangedSkipReasonConstant,
	}
}
