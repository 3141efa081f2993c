package templates_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avessner/atelier/internal/templates"
)

func TestNewFileRendererValidation(testInstance *testing.T) {
	renderer, creationError := templates.NewFileRenderer("  ")
	require.Nil(testInstance, renderer)
	require.ErrorIs(testInstance, creationError, templates.ErrTemplatesDirectoryNotConfigured)
}

func TestFileRendererRendersContext(testInstance *testing.T) {
	templatesDirectory := testInstance.TempDir()
	templateBody := "# {{.display_name}}\n\n{{.tagline}}\n"
	require.NoError(testInstance, os.WriteFile(filepath.Join(templatesDirectory, "github-readme.tmpl"), []byte(templateBody), 0o644))

	renderer, creationError := templates.NewFileRenderer(templatesDirectory)
	require.NoError(testInstance, creationError)

	rendered, renderError := renderer.Render("github-readme", map[string]any{
		"display_name": "Lantern 🏮",
		"tagline":      "A paper lantern with a live flame sensor",
	})
	require.NoError(testInstance, renderError)
	require.Equal(testInstance, "# Lantern 🏮\n\nA paper lantern with a live flame sensor\n", rendered)
}

func TestFileRendererMissingTemplate(testInstance *testing.T) {
	renderer, creationError := templates.NewFileRenderer(testInstance.TempDir())
	require.NoError(testInstance, creationError)

	_, renderError := renderer.Render("absent", map[string]any{})
	var notFoundError templates.TemplateNotFoundError
	require.ErrorAs(testInstance, renderError, &notFoundError)
	require.Equal(testInstance, "absent", notFoundError.Identifier)
}

func TestFileRendererSurfacesParseFailures(testInstance *testing.T) {
	templatesDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(templatesDirectory, "broken.tmpl"), []byte("{{.unclosed"), 0o644))

	renderer, creationError := templates.NewFileRenderer(templatesDirectory)
	require.NoError(testInstance, creationError)

	_, renderError := renderer.Render("broken", map[string]any{})
	var renderFailure templates.RenderError
	require.ErrorAs(testInstance, renderError, &renderFailure)
}
