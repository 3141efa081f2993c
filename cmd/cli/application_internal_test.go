package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewApplicationRegistersProjectCommands(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := map[string]bool{}
	for _, subcommand := range application.rootCommand.Commands() {
		registeredNames[subcommand.Name()] = true
	}

	for _, expectedName := range []string{"create", "list", "rename", "status", "delete", "stage", "publish"} {
		require.True(testInstance, registeredNames[expectedName], "command %s not registered", expectedName)
	}
}

func TestHumanReadableLoggingEnabled(testInstance *testing.T) {
	testCases := []struct {
		name            string
		logFormat       string
		expectedEnabled bool
	}{
		{name: "structured", logFormat: "structured", expectedEnabled: false},
		{name: "console", logFormat: "console", expectedEnabled: true},
		{name: "console_uppercase", logFormat: "CONSOLE", expectedEnabled: true},
		{name: "padded_console", logFormat: "  console  ", expectedEnabled: true},
		{name: "empty", logFormat: "", expectedEnabled: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			application := NewApplication()
			application.configuration.Common.LogFormat = testCase.logFormat
			require.Equal(testInstance, testCase.expectedEnabled, application.humanReadableLoggingEnabled())
		})
	}
}

func TestApplicationRunsListCommandWithConfigurationFile(testInstance *testing.T) {
	baseDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	configurationContent := fmt.Sprintf(
		"common:\n  log_level: error\n  log_format: structured\ntools:\n  projects:\n    base_directory: %s\n",
		baseDirectory,
	)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o644))

	application := NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(outputBuffer)
	application.rootCommand.SetArgs([]string{"list", "--config", configurationPath})

	require.NoError(testInstance, application.rootCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), "NAME")
	require.Equal(testInstance, baseDirectory, application.configuration.Tools.Projects.BaseDirectory)
}

func TestApplicationRootCommandPrintsHelpWithoutArguments(testInstance *testing.T) {
	application := NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(outputBuffer)
	application.rootCommand.SetArgs([]string{})

	require.NoError(testInstance, application.rootCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), "atelier")
}

func TestInterruptibleContextCancelsOnInterrupt(testInstance *testing.T) {
	executionContext, stopSignalHandling := interruptibleContext()
	defer stopSignalHandling()
	require.NoError(testInstance, executionContext.Err())

	require.NoError(testInstance, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case <-executionContext.Done():
	case <-time.After(5 * time.Second):
		testInstance.Fatal("context not canceled after interrupt")
	}
}

func TestEmbeddedDefaultConfigurationReturnsCopy(testInstance *testing.T) {
	firstCopy, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)
	require.NotEmpty(testInstance, firstCopy)

	firstCopy[0] = '#'
	secondCopy, _ := EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, firstCopy[0], secondCopy[0])
}
