package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avessner/atelier/internal/project"
)

// Category identifies one published media grouping.
type Category string

// Media categories in presentation order.
const (
	CategoryImages Category = Category("images")
	CategoryVideos Category = Category("videos")
	CategoryAudio  Category = Category("audio")
	CategoryModels Category = Category("models")
	CategoryDocs   Category = Category("docs")
)

// Categories lists every recognized category in presentation order.
func Categories() []Category {
	return []Category{CategoryImages, CategoryVideos, CategoryAudio, CategoryModels, CategoryDocs}
}

var categoryExtensionAllowLists = map[Category][]string{
	CategoryImages: {".png", ".jpg", ".jpeg"},
	CategoryVideos: {".mov", ".mp4"},
	CategoryAudio:  {".mp3", ".wav"},
	CategoryModels: {".stl"},
	CategoryDocs:   {".pdf"},
}

// Asset describes one published media file.
type Asset struct {
	Category     Category
	RelativePath string
	Stem         string
	Extension    string
}

// Inventory groups published assets by category with stable per-category ordering.
type Inventory struct {
	assetsByCategory map[Category][]Asset
}

// AssetsFor returns the assets of one category; missing categories yield an empty slice.
func (inventory Inventory) AssetsFor(category Category) []Asset {
	return inventory.assetsByCategory[category]
}

// AllAssets returns every asset across categories in presentation order.
func (inventory Inventory) AllAssets() []Asset {
	assets := make([]Asset, 0)
	for _, category := range Categories() {
		assets = append(assets, inventory.assetsByCategory[category]...)
	}
	return assets
}

// IsEmpty reports whether the inventory holds no assets.
func (inventory Inventory) IsEmpty() bool {
	for _, assets := range inventory.assetsByCategory {
		if len(assets) > 0 {
			return false
		}
	}
	return true
}

// Scan walks the published media subtree of a project and builds its inventory.
//
// Only the published media root is read; the internal media subtree is never
// touched. Missing category directories yield empty listings. Dotfiles and
// files outside the category's extension allow-list are filtered. Assets are
// ordered lexicographically by filename so regenerated output never churns.
func Scan(projectRoot string) (Inventory, error) {
	inventory := Inventory{assetsByCategory: map[Category][]Asset{}}
	publishedRoot := filepath.Join(projectRoot, project.PublishedMediaDirectoryName)

	for _, category := range Categories() {
		categoryDirectory := filepath.Join(publishedRoot, string(category))
		directoryEntries, readError := os.ReadDir(categoryDirectory)
		if readError != nil {
			if os.IsNotExist(readError) {
				inventory.assetsByCategory[category] = []Asset{}
				continue
			}
			return Inventory{}, readError
		}

		assets := make([]Asset, 0, len(directoryEntries))
		for _, directoryEntry := range directoryEntries {
			if directoryEntry.IsDir() {
				continue
			}
			fileName := directoryEntry.Name()
			if strings.HasPrefix(fileName, ".") {
				continue
			}
			extension := strings.ToLower(filepath.Ext(fileName))
			if !extensionAllowed(category, extension) {
				continue
			}
			assets = append(assets, Asset{
				Category:     category,
				RelativePath: filepath.Join(project.PublishedMediaDirectoryName, string(category), fileName),
				Stem:         strings.TrimSuffix(fileName, filepath.Ext(fileName)),
				Extension:    extension,
			})
		}

		sort.Slice(assets, func(firstIndex int, secondIndex int) bool {
			return assets[firstIndex].RelativePath < assets[secondIndex].RelativePath
		})
		inventory.assetsByCategory[category] = assets
	}

	return inventory, nil
}

func extensionAllowed(category Category, extension string) bool {
	for _, allowedExtension := range categoryExtensionAllowLists[category] {
		if extension == allowedExtension {
			return true
		}
	}
	return false
}
