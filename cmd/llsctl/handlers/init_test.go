package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamastack/llsctl/internal/config"
	"github.com/llamastack/llsctl/internal/config/wizard"
)

func setupInit(t *testing.T) {
	t.Helper()
	origWizard, origWrite, origExists := runWizard, writeConfig, fileExists
	origConfirm, origTerminal := confirmOverwrite, isTerminal
	t.Cleanup(func() {
		runWizard, writeConfig, fileExists = origWizard, origWrite, origExists
		confirmOverwrite, isTerminal = origConfirm, origTerminal
	})
	isTerminal = func() bool { return true }
	fileExists = func(string) bool { return false }
}

func TestInitRequiresTerminal(t *testing.T) {
	setupInit(t)
	isTerminal = func() bool { return false }

	err := Init(context.Background(), "out.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestInitWritesWizardResult(t *testing.T) {
	setupInit(t)

	runWizard = func(context.Context) (*wizard.Result, error) {
		return &wizard.Result{Namespace: "demo", VLLMURL: "https://vllm.example.com"}, nil
	}

	var written *config.Snapshot
	var path string
	writeConfig = func(snap *config.Snapshot, outputPath string) error {
		written, path = snap, outputPath
		return nil
	}

	require.NoError(t, Init(context.Background(), "out.yaml"))
	require.NotNil(t, written)
	assert.Equal(t, "demo", written.Namespace)
	assert.Equal(t, "out.yaml", path)
}

func TestInitDeclinedOverwrite(t *testing.T) {
	setupInit(t)
	fileExists = func(string) bool { return true }
	confirmOverwrite = func(string) (bool, error) { return false, nil }

	wizardRan := false
	runWizard = func(context.Context) (*wizard.Result, error) {
		wizardRan = true
		return &wizard.Result{}, nil
	}

	require.NoError(t, Init(context.Background(), "out.yaml"))
	assert.False(t, wizardRan)
}

func TestInitWizardCancelled(t *testing.T) {
	setupInit(t)

	runWizard = func(context.Context) (*wizard.Result, error) {
		return nil, errors.New("user aborted")
	}

	assert.Error(t, Init(context.Background(), "out.yaml"))
}
