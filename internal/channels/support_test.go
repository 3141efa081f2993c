package channels_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avessner/atelier/internal/githubcli"
	"github.com/avessner/atelier/internal/project"
)

const (
	testChannelProjectNameConstant   = "lantern"
	testChannelDisplayNameConstant   = "Lantern 🏮"
	testChannelTaglineConstant       = "A paper lantern with a live flame sensor"
	testChannelContentFragment       = "The lantern senses a real candle flame.\n"
	testChannelCommitMessageConstant = "Publish lantern updates"
)

func buildProjectFixture(testInstance *testing.T, status project.Status) *project.Record {
	testInstance.Helper()
	projectRoot := filepath.Join(testInstance.TempDir(), testChannelProjectNameConstant)

	contentDirectory := filepath.Join(projectRoot, project.ContentDirectoryName)
	require.NoError(testInstance, os.MkdirAll(contentDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(contentDirectory, project.ContentFragmentFileName), []byte(testChannelContentFragment), 0o644))

	for _, relativePath := range []string{
		"media/images/flame-sensor.png",
		"media/images/shell.jpg",
		"media-internal/images/secret.png",
	} {
		fullPath := filepath.Join(projectRoot, relativePath)
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(testInstance, os.WriteFile(fullPath, []byte("payload"), 0o644))
	}

	return &project.Record{
		CanonicalName: testChannelProjectNameConstant,
		DisplayName:   testChannelDisplayNameConstant,
		Status:        status,
		Tagline:       testChannelTaglineConstant,
		CreatedAt:     time.Date(2025, time.February, 10, 8, 0, 0, 0, time.UTC),
		Path:          projectRoot,
	}
}

// stubRenderer produces deterministic output keyed by template identifier so
// staged files can be asserted byte for byte.
type stubRenderer struct{}

func (renderer stubRenderer) Render(templateIdentifier string, renderContext map[string]any) (string, error) {
	switch templateIdentifier {
	case "website-roadmap":
		var builder strings.Builder
		sections, _ := renderContext["sections"].([]map[string]any)
		for _, section := range sections {
			fmt.Fprintf(&builder, "## %s\n", section["heading"])
			projects, _ := section["projects"].([]map[string]any)
			if len(projects) == 0 {
				fmt.Fprintf(&builder, "%s\n", section["empty_message"])
				continue
			}
			for _, projectEntry := range projects {
				fmt.Fprintf(&builder, "- %s\n", projectEntry["slug"])
			}
		}
		return builder.String(), nil
	case "pdf-cover":
		titles, _ := renderContext["project_titles"].([]string)
		return fmt.Sprintf("cover:%s:%s", renderContext["operator"], strings.Join(titles, ",")), nil
	default:
		return fmt.Sprintf("rendered:%s:%s\n%s", templateIdentifier, renderContext["canonical_name"], renderContext["content"]), nil
	}
}

type stubRecordStore struct {
	savedRecords []*project.Record
	saveError    error
}

func (store *stubRecordStore) SaveRecord(record *project.Record) error {
	if store.saveError != nil {
		return store.saveError
	}
	store.savedRecords = append(store.savedRecords, record)
	return nil
}

type stubGitController struct {
	worktreeClean bool
	currentBranch string
	pushError     error
	calls         []string
}

func (controller *stubGitController) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	controller.calls = append(controller.calls, "status:"+repositoryPath)
	return controller.worktreeClean, nil
}

func (controller *stubGitController) StageAll(executionContext context.Context, repositoryPath string) error {
	controller.calls = append(controller.calls, "add:"+repositoryPath)
	return nil
}

func (controller *stubGitController) CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error {
	controller.calls = append(controller.calls, "commit:"+commitMessage)
	controller.worktreeClean = true
	return nil
}

func (controller *stubGitController) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	controller.calls = append(controller.calls, fmt.Sprintf("push:%s:%s", remoteName, branchName))
	return controller.pushError
}

func (controller *stubGitController) CurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	if len(controller.currentBranch) == 0 {
		return "main", nil
	}
	return controller.currentBranch, nil
}

func (controller *stubGitController) AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	controller.calls = append(controller.calls, fmt.Sprintf("remote-add:%s:%s", remoteName, remoteURL))
	return nil
}

func (controller *stubGitController) callsWithPrefix(prefix string) []string {
	matching := make([]string, 0)
	for _, call := range controller.calls {
		if strings.HasPrefix(call, prefix) {
			matching = append(matching, call)
		}
	}
	return matching
}

type stubRepositoryService struct {
	existingRepositories []string
	existenceError       error
	createdRepositories  []string
	descriptions         map[string]string
	homepages            map[string]string
	createError          error
}

func (service *stubRepositoryService) RepositoryExists(executionContext context.Context, repository string) (bool, error) {
	if service.existenceError != nil {
		return false, service.existenceError
	}
	for _, existingRepository := range service.existingRepositories {
		if existingRepository == repository {
			return true, nil
		}
	}
	return false, nil
}

func (service *stubRepositoryService) CreateRepository(executionContext context.Context, repository string, options githubcli.RepositoryCreateOptions) error {
	if service.createError != nil {
		return service.createError
	}
	service.createdRepositories = append(service.createdRepositories, repository)
	return nil
}

func (service *stubRepositoryService) UpdateRepositoryDescription(executionContext context.Context, repository string, description string) error {
	if service.descriptions == nil {
		service.descriptions = map[string]string{}
	}
	service.descriptions[repository] = description
	return nil
}

func (service *stubRepositoryService) UpdateRepositoryHomepage(executionContext context.Context, repository string, homepageURL string) error {
	if service.homepages == nil {
		service.homepages = map[string]string{}
	}
	service.homepages[repository] = homepageURL
	return nil
}

type stubRegistryReader struct {
	records        []*project.Record
	discoveryError error
}

func (reader *stubRegistryReader) DiscoverRecords() ([]*project.Record, error) {
	return reader.records, reader.discoveryError
}
