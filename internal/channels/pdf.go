package channels

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/avessner/atelier/internal/compose"
	"github.com/avessner/atelier/internal/media"
	"github.com/avessner/atelier/internal/project"
	"github.com/avessner/atelier/internal/templates"
)

const (
	pdfDocumentTemplateIdentifierConstant = "pdf-document"
	pdfCoverTemplateIdentifierConstant    = "pdf-cover"
	pdfStagingSubdirectoryConstant        = "pdf"
	pdfDocumentFileNameTemplateConstant   = "%s.pdf"
	pdfCollateImagesOptionKeyConstant     = "collate_images"
	pdfMaxWidthOptionKeyConstant          = "max_width"
	pdfMaxHeightOptionKeyConstant         = "max_height"
	pdfFilenamePrefixOptionKeyConstant    = "filename_prefix"
	pdfDependenciesMessageConstant        = "pdf channel dependencies not configured"
	pdfNoSectionsMessageConstant          = "no rendered documents available to merge"
	pdfSectionSeparatorConstant           = "\n\n"
	pdfExportJPEGQualityConstant          = 90
	pdfStagedDocumentDebugMessage         = "Staged PDF document"
	pdfProjectLogFieldConstant            = "project"
	pdfDocumentPathLogFieldConstant       = "document_path"
)

// ErrPDFChannelDependenciesNotConfigured indicates a missing collaborator at construction.
var ErrPDFChannelDependenciesNotConfigured = errors.New(pdfDependenciesMessageConstant)

// ErrNoDocumentsToMerge indicates WriteMergedDocument ran before any publish completed.
var ErrNoDocumentsToMerge = errors.New(pdfNoSectionsMessageConstant)

// PDFChannelConfiguration carries the staging/output layout and operator identity.
type PDFChannelConfiguration struct {
	StagingDirectory string
	OutputDirectory  string
	OperatorName     string
}

// PDFOptions carries invocation-scoped layout settings.
//
// CollateImages and the sibling-file layout are mutually exclusive: collated
// documents embed image references, the sibling layout exports image files
// next to the document with an optional filename prefix. The width/height
// caps downscale the exported image files and travel to the renderer through
// the options context. SubmissionOrder lists canonical names in the order the
// caller selected them; the merged document follows it regardless of which
// publish finished first.
type PDFOptions struct {
	CollateImages   bool
	MaxWidth        int
	MaxHeight       int
	FilenamePrefix  string
	SubmissionName  string
	SubmissionOrder []string
}

type renderedSection struct {
	canonicalName string
	displayName   string
	body          string
}

// PDFChannel renders submission documents into the output directory.
type PDFChannel struct {
	recordStore   RecordStore
	renderer      templates.Renderer
	logger        *zap.Logger
	configuration PDFChannelConfiguration
	options       PDFOptions

	sectionsMutex sync.Mutex
	sections      []renderedSection
}

// NewPDFChannel wires a PDF channel with its collaborators.
func NewPDFChannel(recordStore RecordStore, renderer templates.Renderer, logger *zap.Logger, configuration PDFChannelConfiguration, options PDFOptions) (*PDFChannel, error) {
	if recordStore == nil || renderer == nil || logger == nil {
		return nil, ErrPDFChannelDependenciesNotConfigured
	}
	return &PDFChannel{
		recordStore:   recordStore,
		renderer:      renderer,
		logger:        logger,
		configuration: configuration,
		options:       options,
	}, nil
}

// Identifier names the channel.
func (channel *PDFChannel) Identifier() Identifier {
	return IdentifierPDF
}

// IsEligible accepts every record; the PDF channel has no gating.
func (channel *PDFChannel) IsEligible(record *project.Record) (bool, string) {
	return true, ""
}

// Stage renders the document into the staging directory and, in the sibling
// layout, exports image files next to it.
func (channel *PDFChannel) Stage(executionContext context.Context, record *project.Record) (StagedArtifact, error) {
	contentFragment, fragmentError := readContentFragment(record.Path)
	if fragmentError != nil {
		return StagedArtifact{}, fragmentError
	}
	inventory, scanError := media.Scan(record.Path)
	if scanError != nil {
		return StagedArtifact{}, scanError
	}

	renderContext := compose.Compose(record, contentFragment, inventory, map[string]any{
		pdfCollateImagesOptionKeyConstant:  channel.options.CollateImages,
		pdfMaxWidthOptionKeyConstant:       channel.options.MaxWidth,
		pdfMaxHeightOptionKeyConstant:      channel.options.MaxHeight,
		pdfFilenamePrefixOptionKeyConstant: channel.options.FilenamePrefix,
	})
	renderedDocument, renderError := channel.renderer.Render(pdfDocumentTemplateIdentifierConstant, renderContext)
	if renderError != nil {
		return StagedArtifact{}, renderError
	}

	stagingDirectory := filepath.Join(channel.configuration.StagingDirectory, pdfStagingSubdirectoryConstant)
	stagedDocumentPath := filepath.Join(stagingDirectory, fmt.Sprintf(pdfDocumentFileNameTemplateConstant, record.CanonicalName))
	if writeError := writeFileIfChanged(stagedDocumentPath, []byte(renderedDocument)); writeError != nil {
		return StagedArtifact{}, writeError
	}

	stagedPaths := []string{stagedDocumentPath}
	if !channel.options.CollateImages {
		for _, imageAsset := range inventory.AssetsFor(media.CategoryImages) {
			exportedImagePath := filepath.Join(stagingDirectory, channel.exportedImageName(imageAsset))
			if exportError := channel.exportImageFile(filepath.Join(record.Path, imageAsset.RelativePath), exportedImagePath); exportError != nil {
				return StagedArtifact{}, exportError
			}
			stagedPaths = append(stagedPaths, exportedImagePath)
		}
	}

	channel.logger.Debug(pdfStagedDocumentDebugMessage,
		zap.String(pdfProjectLogFieldConstant, record.CanonicalName),
		zap.String(pdfDocumentPathLogFieldConstant, stagedDocumentPath),
	)

	return StagedArtifact{
		Channel:      IdentifierPDF,
		Fingerprint:  compose.Fingerprint(record, contentFragment, inventory),
		Paths:        stagedPaths,
		RenderedBody: renderedDocument,
	}, nil
}

// Publish writes the staged artifact set into the output directory. Publishing
// for the PDF channel is synonymous with that write; there is no remote
// destination.
func (channel *PDFChannel) Publish(executionContext context.Context, record *project.Record, artifact StagedArtifact) (PublishResult, error) {
	outputDocumentPath := filepath.Join(channel.configuration.OutputDirectory, fmt.Sprintf(pdfDocumentFileNameTemplateConstant, record.CanonicalName))
	if fingerprintUnchanged(record, IdentifierPDF, artifact.Fingerprint) {
		return skippedResult(IdentifierPDF, outputDocumentPath), nil
	}

	for _, stagedPath := range artifact.Paths {
		outputPath := filepath.Join(channel.configuration.OutputDirectory, filepath.Base(stagedPath))
		if copyError := copyFile(stagedPath, outputPath); copyError != nil {
			return PublishResult{}, copyError
		}
	}

	channel.collectSection(record, artifact.RenderedBody)

	publishedAt := time.Now()
	record.SetSyncState(string(IdentifierPDF), project.ChannelSyncState{
		LastPublishedAt:        publishedAt,
		LastContentFingerprint: artifact.Fingerprint,
		DestinationReference:   outputDocumentPath,
	})
	if saveError := channel.recordStore.SaveRecord(record); saveError != nil {
		return PublishResult{}, saveError
	}

	return PublishResult{
		Channel:     IdentifierPDF,
		Destination: outputDocumentPath,
		PublishedAt: publishedAt,
	}, nil
}

// WriteMergedDocument concatenates every published document, in the order the
// caller selected the projects, into one submission file preceded by a cover
// section naming the operator and the included project titles.
func (channel *PDFChannel) WriteMergedDocument() (string, error) {
	channel.sectionsMutex.Lock()
	sections := make([]renderedSection, len(channel.sections))
	copy(sections, channel.sections)
	channel.sectionsMutex.Unlock()

	if len(sections) == 0 {
		return "", ErrNoDocumentsToMerge
	}
	sections = channel.orderSections(sections)

	projectTitles := make([]string, 0, len(sections))
	sectionBodies := make([]string, 0, len(sections))
	for _, section := range sections {
		projectTitles = append(projectTitles, section.displayName)
		sectionBodies = append(sectionBodies, section.body)
	}

	coverSection, coverError := channel.renderer.Render(pdfCoverTemplateIdentifierConstant, map[string]any{
		"operator":        channel.configuration.OperatorName,
		"submission_name": channel.submissionName(),
		"project_titles":  projectTitles,
	})
	if coverError != nil {
		return "", coverError
	}

	mergedDocument := coverSection + pdfSectionSeparatorConstant + strings.Join(sectionBodies, pdfSectionSeparatorConstant)
	mergedDocumentPath := filepath.Join(channel.configuration.OutputDirectory, fmt.Sprintf(pdfDocumentFileNameTemplateConstant, channel.submissionName()))
	if writeError := writeFileIfChanged(mergedDocumentPath, []byte(mergedDocument)); writeError != nil {
		return "", writeError
	}

	return mergedDocumentPath, nil
}

// PublishedSectionCount reports how many documents the channel has published.
func (channel *PDFChannel) PublishedSectionCount() int {
	channel.sectionsMutex.Lock()
	defer channel.sectionsMutex.Unlock()
	return len(channel.sections)
}

func (channel *PDFChannel) collectSection(record *project.Record, renderedBody string) {
	channel.sectionsMutex.Lock()
	defer channel.sectionsMutex.Unlock()
	channel.sections = append(channel.sections, renderedSection{
		canonicalName: record.CanonicalName,
		displayName:   record.EffectiveDisplayName(),
		body:          renderedBody,
	})
}

// orderSections rearranges published sections to follow the caller's
// selection order. Sections for names outside the order keep their publish
// order and sort after the named ones.
func (channel *PDFChannel) orderSections(sections []renderedSection) []renderedSection {
	if len(channel.options.SubmissionOrder) == 0 {
		return sections
	}
	selectionIndexes := make(map[string]int, len(channel.options.SubmissionOrder))
	for orderIndex, canonicalName := range channel.options.SubmissionOrder {
		selectionIndexes[canonicalName] = orderIndex
	}
	sectionRank := func(section renderedSection) int {
		if selectionIndex, known := selectionIndexes[section.canonicalName]; known {
			return selectionIndex
		}
		return len(channel.options.SubmissionOrder)
	}
	sort.SliceStable(sections, func(firstIndex int, secondIndex int) bool {
		return sectionRank(sections[firstIndex]) < sectionRank(sections[secondIndex])
	})
	return sections
}

// exportImageFile copies an image into the staging directory, downscaling it
// when it exceeds the configured width/height caps. Formats without an
// encoder here are copied verbatim.
func (channel *PDFChannel) exportImageFile(sourcePath string, destinationPath string) error {
	if channel.options.MaxWidth <= 0 && channel.options.MaxHeight <= 0 {
		return copyFile(sourcePath, destinationPath)
	}

	extension := strings.ToLower(filepath.Ext(sourcePath))
	if extension != ".png" && extension != ".jpg" && extension != ".jpeg" {
		return copyFile(sourcePath, destinationPath)
	}

	sourceFile, openError := os.Open(sourcePath)
	if openError != nil {
		return openError
	}
	decodedImage, _, decodeError := image.Decode(sourceFile)
	closeError := sourceFile.Close()
	if decodeError != nil {
		// Undecodable files are passed through untouched.
		return copyFile(sourcePath, destinationPath)
	}
	if closeError != nil {
		return closeError
	}

	scaledWidth, scaledHeight := fitWithinCaps(decodedImage.Bounds().Dx(), decodedImage.Bounds().Dy(), channel.options.MaxWidth, channel.options.MaxHeight)
	if scaledWidth == decodedImage.Bounds().Dx() && scaledHeight == decodedImage.Bounds().Dy() {
		return copyFile(sourcePath, destinationPath)
	}

	scaledImage := image.NewRGBA(image.Rect(0, 0, scaledWidth, scaledHeight))
	draw.CatmullRom.Scale(scaledImage, scaledImage.Bounds(), decodedImage, decodedImage.Bounds(), draw.Over, nil)

	if directoryError := os.MkdirAll(filepath.Dir(destinationPath), 0o755); directoryError != nil {
		return directoryError
	}
	destinationFile, createError := os.Create(destinationPath)
	if createError != nil {
		return createError
	}
	var encodeError error
	if extension == ".png" {
		encodeError = png.Encode(destinationFile, scaledImage)
	} else {
		encodeError = jpeg.Encode(destinationFile, scaledImage, &jpeg.Options{Quality: pdfExportJPEGQualityConstant})
	}
	if encodeError != nil {
		destinationFile.Close()
		return encodeError
	}
	return destinationFile.Close()
}

// fitWithinCaps shrinks dimensions to satisfy the caps while preserving the
// aspect ratio. A cap of zero leaves that axis unbounded; dimensions already
// within the caps are returned unchanged.
func fitWithinCaps(width int, height int, maxWidth int, maxHeight int) (int, int) {
	scale := 1.0
	if maxWidth > 0 && width > maxWidth {
		scale = float64(maxWidth) / float64(width)
	}
	if maxHeight > 0 && height > maxHeight {
		heightScale := float64(maxHeight) / float64(height)
		if heightScale < scale {
			scale = heightScale
		}
	}
	if scale >= 1.0 {
		return width, height
	}
	scaledWidth := int(float64(width) * scale)
	scaledHeight := int(float64(height) * scale)
	if scaledWidth < 1 {
		scaledWidth = 1
	}
	if scaledHeight < 1 {
		scaledHeight = 1
	}
	return scaledWidth, scaledHeight
}

func (channel *PDFChannel) exportedImageName(imageAsset media.Asset) string {
	baseName := filepath.Base(imageAsset.RelativePath)
	if len(channel.options.FilenamePrefix) == 0 {
		return baseName
	}
	return channel.options.FilenamePrefix + baseName
}

func (channel *PDFChannel) submissionName() string {
	if len(strings.TrimSpace(channel.options.SubmissionName)) > 0 {
		return channel.options.SubmissionName
	}
	return "submission"
}
