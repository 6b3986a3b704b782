// Package cli parses command-line arguments into an application
// configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/gridci/internal/app"
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

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("gridci", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridci - a declarative CI pipeline orchestrator.

Usage:
  gridci [options] [WORKFLOW_PATH]

Arguments:
  WORKFLOW_PATH
    Path to a workflow definition file (.hcl, .yml or .yaml).

Options:
`)
		flagSet.PrintDefaults()
	}

	workflowFlag := flagSet.String("workflow", "", "Path to the workflow file.")
	wFlag := flagSet.String("w", "", "Path to the workflow file (shorthand).")
	formatFlag := flagSet.String("format", "auto", "Workflow format. Options: 'auto', 'hcl' or 'yaml'.")
	workdirFlag := flagSet.String("workdir", "", "Working directory for job steps. Defaults to the current directory.")
	workersFlag := flagSet.Int("workers", 4, "Maximum number of concurrently running jobs.")
	httpPortFlag := flagSet.Int("http-port", 0, "Port for the HTTP control server. 0 is disabled.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Overall run timeout. 0 is no limit.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *workflowFlag != "" {
		path = *workflowFlag
	} else if *wFlag != "" {
		path = *wFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
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

	if *timeoutFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid timeout: must not be negative"}
	}

	config, err := app.NewConfig(app.Config{
		WorkflowPath: path,
		Format:       strings.ToLower(*formatFlag),
		WorkDir:      *workdirFlag,
		Workers:      *workersFlag,
		HTTPPort:     *httpPortFlag,
		RunTimeout:   *timeoutFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
