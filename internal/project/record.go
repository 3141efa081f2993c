package project

import (
	"fmt"
	"regexp"
	"time"
)

const (
	// ContentDirectoryName is the per-project directory holding narrative content and metadata.
	ContentDirectoryName = "content"
	// MetadataFileName is the metadata file stored inside the content directory.
	MetadataFileName = "metadata.yml"
	// ContentFragmentFileName is the narrative fragment interpolated into channel output.
	ContentFragmentFileName = "content.md"
	// PublishedMediaDirectoryName is the media subtree visible to channels.
	PublishedMediaDirectoryName = "media"
	// InternalMediaDirectoryName is the working media subtree channels never read.
	InternalMediaDirectoryName = "media-internal"
)

const (
	canonicalNamePatternConstant         = `^[a-z0-9]+(-[a-z0-9]+)*$`
	invalidCanonicalNameTemplateConstant = "canonical name %q must be lowercase, hyphenated, and url-safe"
	unknownStatusTemplateConstant        = "unknown project status %q"
)

var canonicalNameExpression = regexp.MustCompile(canonicalNamePatternConstant)

// Status describes where a project sits in its lifecycle.
type Status string

// Project lifecycle statuses.
const (
	StatusBacklog    Status = Status("backlog")
	StatusInProgress Status = Status("in_progress")
	StatusComplete   Status = Status("complete")
)

// StatusValues lists every recognized status in roadmap display order.
func StatusValues() []Status {
	return []Status{StatusInProgress, StatusComplete, StatusBacklog}
}

// InvalidStatusError indicates a status string outside the recognized set.
type InvalidStatusError struct {
	Value string
}

// Error describes the invalid status.
func (statusError InvalidStatusError) Error() string {
	return fmt.Sprintf(unknownStatusTemplateConstant, statusError.Value)
}

// ParseStatus converts a textual status into a Status value.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusBacklog, StatusInProgress, StatusComplete:
		return Status(value), nil
	default:
		return Status(""), InvalidStatusError{Value: value}
	}
}

// InvalidCanonicalNameError indicates a name that cannot serve as a project identifier.
type InvalidCanonicalNameError struct {
	Name string
}

// Error describes the invalid name.
func (nameError InvalidCanonicalNameError) Error() string {
	return fmt.Sprintf(invalidCanonicalNameTemplateConstant, nameError.Name)
}

// ValidateCanonicalName rejects names unsuitable for directories, repositories, and URLs.
func ValidateCanonicalName(name string) error {
	if !canonicalNameExpression.MatchString(name) {
		return InvalidCanonicalNameError{Name: name}
	}
	return nil
}

// ChannelSyncState captures the last published artifact for one channel.
type ChannelSyncState struct {
	LastPublishedAt        time.Time `yaml:"last_published_at,omitempty"`
	LastContentFingerprint string    `yaml:"last_content_fingerprint,omitempty"`
	DestinationReference   string    `yaml:"destination_reference,omitempty"`
}

// Record is the canonical representation of one project.
type Record struct {
	CanonicalName    string                      `yaml:"canonical_name"`
	DisplayName      string                      `yaml:"display_name,omitempty"`
	Status           Status                      `yaml:"status"`
	Tagline          string                      `yaml:"tagline,omitempty"`
	Description      string                      `yaml:"description,omitempty"`
	CreatedAt        time.Time                   `yaml:"created_at,omitempty"`
	UpdatedAt        time.Time                   `yaml:"updated_at,omitempty"`
	ChannelSyncState map[string]ChannelSyncState `yaml:"channel_sync_state,omitempty"`
	GitHubRemoteName string                      `yaml:"github_remote_name,omitempty"`
	WebsitePostPath  string                      `yaml:"website_post_path,omitempty"`
	TaskItemID       string                      `yaml:"task_item_id,omitempty"`

	// Path is the project root directory; derived on load, never serialized.
	Path string `yaml:"-"`
}

// SyncStateFor returns the stored sync state for a channel identifier.
func (record *Record) SyncStateFor(channelIdentifier string) (ChannelSyncState, bool) {
	syncState, found := record.ChannelSyncState[channelIdentifier]
	return syncState, found
}

// SetSyncState records the sync state for a channel identifier.
func (record *Record) SetSyncState(channelIdentifier string, syncState ChannelSyncState) {
	if record.ChannelSyncState == nil {
		record.ChannelSyncState = map[string]ChannelSyncState{}
	}
	record.ChannelSyncState[channelIdentifier] = syncState
}

// EffectiveDisplayName resolves the human-facing name, falling back to the canonical name.
func (record *Record) EffectiveDisplayName() string {
	if len(record.DisplayName) > 0 {
		return record.DisplayName
	}
	return record.CanonicalName
}
