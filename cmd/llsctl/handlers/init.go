package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/llamastack/llsctl/internal/config"
	"github.com/llamastack/llsctl/internal/config/wizard"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	runWizard        = wizard.Run
	writeConfig      = wizard.WriteConfig
	fileExists       = wizard.FileExists
	confirmOverwrite = wizard.ConfirmOverwrite

	isTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// Init runs the interactive wizard and writes the resulting configuration
// snapshot.
func Init(ctx context.Context, outputPath string) error {
	if !isTerminal() {
		return errors.New("init requires an interactive terminal; write the configuration file directly instead")
	}

	if outputPath == "" {
		outputPath = config.FindConfigFile("")
	}

	if fileExists(outputPath) {
		ok, err := confirmOverwrite(outputPath)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted; existing configuration left untouched.")
			return nil
		}
	}

	result, err := runWizard(ctx)
	if err != nil {
		return err
	}

	if err := writeConfig(result.Snapshot(), outputPath); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", outputPath)
	fmt.Println("Next: llsctl setup && llsctl provision")
	return nil
}
