package compose

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avessner/atelier/internal/media"
	"github.com/avessner/atelier/internal/project"
)

const (
	canonicalNameContextKeyConstant  = "canonical_name"
	displayNameContextKeyConstant    = "display_name"
	statusContextKeyConstant         = "status"
	taglineContextKeyConstant        = "tagline"
	descriptionContextKeyConstant    = "description"
	createdAtContextKeyConstant      = "created_at"
	updatedAtContextKeyConstant      = "updated_at"
	contentContextKeyConstant        = "content"
	mediaContextKeyConstant          = "media"
	optionsContextKeyConstant        = "options"
	assetStemFieldKeyConstant        = "stem"
	assetDisplayStemFieldKey         = "display_stem"
	assetRelativePathFieldKey        = "relative_path"
	assetURLFieldKeyConstant         = "url"
	assetExtensionFieldKeyConstant   = "extension"
	contextTimestampLayoutConstant   = "2006-01-02"
	fingerprintSegmentSeparator      = "\n"
	stemSeparatorReplacementConstant = " "
)

// Compose merges a record, its narrative fragment, its media inventory, and
// channel options into the rendering context consumed by the template
// collaborator.
func Compose(record *project.Record, contentFragment string, inventory media.Inventory, channelOptions map[string]any) map[string]any {
	mediaContext := map[string]any{}
	for _, category := range media.Categories() {
		assets := inventory.AssetsFor(category)
		assetContexts := make([]map[string]any, 0, len(assets))
		for _, asset := range assets {
			assetContexts = append(assetContexts, map[string]any{
				assetStemFieldKeyConstant:      asset.Stem,
				assetDisplayStemFieldKey:       displayStem(asset.Stem),
				assetRelativePathFieldKey:      asset.RelativePath,
				assetURLFieldKeyConstant:       filepath.ToSlash(asset.RelativePath),
				assetExtensionFieldKeyConstant: asset.Extension,
			})
		}
		mediaContext[string(category)] = assetContexts
	}

	renderContext := map[string]any{
		canonicalNameContextKeyConstant: record.CanonicalName,
		displayNameContextKeyConstant:   record.EffectiveDisplayName(),
		statusContextKeyConstant:        string(record.Status),
		taglineContextKeyConstant:       record.Tagline,
		descriptionContextKeyConstant:   record.Description,
		createdAtContextKeyConstant:     record.CreatedAt.Format(contextTimestampLayoutConstant),
		updatedAtContextKeyConstant:     record.UpdatedAt.Format(contextTimestampLayoutConstant),
		contentContextKeyConstant:       contentFragment,
		mediaContextKeyConstant:         mediaContext,
	}
	if channelOptions == nil {
		channelOptions = map[string]any{}
	}
	renderContext[optionsContextKeyConstant] = channelOptions

	return renderContext
}

// Fingerprint computes a deterministic hash over every content-affecting
// input: the narrative fragment, the scalar metadata fields, and the sorted
// published asset paths. Timestamps are deliberately excluded so reloading
// unchanged content never marks a record stale.
func Fingerprint(record *project.Record, contentFragment string, inventory media.Inventory) string {
	assetPaths := make([]string, 0)
	for _, asset := range inventory.AllAssets() {
		assetPaths = append(assetPaths, filepath.ToSlash(asset.RelativePath))
	}
	sort.Strings(assetPaths)

	segments := []string{
		contentFragment,
		record.CanonicalName,
		record.DisplayName,
		string(record.Status),
		record.Tagline,
		record.Description,
	}
	segments = append(segments, assetPaths...)

	digest := sha256.Sum256([]byte(strings.Join(segments, fingerprintSegmentSeparator)))
	return hex.EncodeToString(digest[:])
}

func displayStem(stem string) string {
	replacer := strings.NewReplacer("-", stemSeparatorReplacementConstant, "_", stemSeparatorReplacementConstant)
	return replacer.Replace(stem)
}
