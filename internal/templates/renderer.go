package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
)

const (
	templateFileExtensionConstant          = ".tmpl"
	templatesDirectoryRequiredMessage      = "templates directory not configured"
	templateNotFoundTemplateConstant       = "template %q not found under %s"
	templateRenderFailureTemplateConstant  = "rendering template %q: %s"
	templateParsingFailureTemplateConstant = "parsing template %q: %s"
)

// ErrTemplatesDirectoryNotConfigured indicates the renderer was created without a directory.
var ErrTemplatesDirectoryNotConfigured = errors.New(templatesDirectoryRequiredMessage)

// Renderer turns a named template and a rendering context into output text.
type Renderer interface {
	Render(templateIdentifier string, renderContext map[string]any) (string, error)
}

// TemplateNotFoundError indicates no template file backs the requested identifier.
type TemplateNotFoundError struct {
	Identifier string
	Directory  string
}

// Error describes the missing template.
func (notFoundError TemplateNotFoundError) Error() string {
	return fmt.Sprintf(templateNotFoundTemplateConstant, notFoundError.Identifier, notFoundError.Directory)
}

// RenderError wraps parse and execution failures for one template.
type RenderError struct {
	Identifier string
	Cause      error
	parsing    bool
}

// Error describes the render failure.
func (renderError RenderError) Error() string {
	if renderError.parsing {
		return fmt.Sprintf(templateParsingFailureTemplateConstant, renderError.Identifier, renderError.Cause)
	}
	return fmt.Sprintf(templateRenderFailureTemplateConstant, renderError.Identifier, renderError.Cause)
}

// Unwrap exposes the underlying cause.
func (renderError RenderError) Unwrap() error {
	return renderError.Cause
}

// FileRenderer renders templates stored as files beneath one directory.
//
// The identifier "github-readme" resolves to "<directory>/github-readme.tmpl".
type FileRenderer struct {
	directory string
}

// NewFileRenderer wires a renderer over the provided templates directory.
func NewFileRenderer(directory string) (*FileRenderer, error) {
	if len(strings.TrimSpace(directory)) == 0 {
		return nil, ErrTemplatesDirectoryNotConfigured
	}
	return &FileRenderer{directory: directory}, nil
}

// Render parses the identified template file and executes it with the context.
func (renderer *FileRenderer) Render(templateIdentifier string, renderContext map[string]any) (string, error) {
	templatePath := filepath.Join(renderer.directory, templateIdentifier+templateFileExtensionConstant)
	templateBytes, readError := os.ReadFile(templatePath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return "", TemplateNotFoundError{Identifier: templateIdentifier, Directory: renderer.directory}
		}
		return "", RenderError{Identifier: templateIdentifier, Cause: readError}
	}

	parsedTemplate, parseError := texttemplate.New(templateIdentifier).Parse(string(templateBytes))
	if parseError != nil {
		return "", RenderError{Identifier: templateIdentifier, Cause: parseError, parsing: true}
	}

	var output strings.Builder
	if executionError := parsedTemplate.Execute(&output, renderContext); executionError != nil {
		return "", RenderError{Identifier: templateIdentifier, Cause: executionError}
	}

	return output.String(), nil
}
