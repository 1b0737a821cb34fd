package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/knitgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// pathList collects a repeatable path flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*p = append(*p, part)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("knitgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
knitgrid - Converts layered palette bitmaps into a compressed machine program.

Usage:
  knitgrid [options] [INPUT_DIR]

Arguments:
  INPUT_DIR
    Directory holding the layer images (sema.bmp, shaxian.bmp, luola.bmp,
    dumu.bmp, zhenban.bmp, direction.bmp) and, unless -config is given,
    the lookup table files (.hcl, .toml, .yaml, .yml).

Options:
`)
		flagSet.PrintDefaults()
	}

	var configPaths pathList
	inputFlag := flagSet.String("input", "", "Directory holding the layer images.")
	iFlag := flagSet.String("i", "", "Directory holding the layer images (shorthand).")
	flagSet.Var(&configPaths, "config", "Lookup table file or directory. Repeatable or comma-separated.")
	outputFlag := flagSet.String("output", "output", "Directory the artifacts are written to.")
	maxPatternFlag := flagSet.Int("max-pattern", 0, "Longest repeated block the compressor looks for. 0 uses the default.")
	jsonFlag := flagSet.Bool("json", false, "Also write the compressed program as JSON.")
	archiveFlag := flagSet.Bool("archive", false, "Bundle the artifacts into run-<id>.tar.zst.")
	indexFlag := flagSet.String("index-db", "", "SQLite database recording every run. Empty disables it.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *inputFlag != "" {
		path = *inputFlag
	} else if *iFlag != "" {
		path = *iFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Input path determined.", "path", path)

	if path == "" {
		slog.Debug("No input path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		InputPath:       path,
		ConfigPaths:     configPaths,
		OutputPath:      *outputFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		MaxPatternLen:   *maxPatternFlag,
		JSON:            *jsonFlag,
		Archive:         *archiveFlag,
		IndexDB:         *indexFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
