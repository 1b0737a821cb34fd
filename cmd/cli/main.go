package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/knitgrid/internal/app"
	"github.com/vk/knitgrid/internal/cli"
	"github.com/vk/knitgrid/internal/config"
	"github.com/vk/knitgrid/internal/hcl"
	"github.com/vk/knitgrid/internal/tomlconf"
	"github.com/vk/knitgrid/internal/yamlconf"
)

// main is the entrypoint for the knitgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLoader wires every table file format into a single loader.
func newLoader() config.Loader {
	yamlParser := yamlconf.NewParser()
	return config.NewFileLoader(map[string]config.Parser{
		".hcl":  hcl.NewParser(),
		".toml": tomlconf.NewParser(),
		".yaml": yamlParser,
		".yml":  yamlParser,
	})
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	knitgridApp := app.NewApp(outW, appConfig, newLoader())
	_, err = knitgridApp.Run(context.Background())
	return err
}
