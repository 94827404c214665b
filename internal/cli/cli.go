// Package cli parses command-line arguments, validates user input, and
// handles process-level concerns like exit codes. It translates CLI flags
// into the application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/fortloom/internal/app"
)

// ExitError is an error carrying a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app
// config, a boolean indicating the program should exit cleanly (help, or
// nothing to do), or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("fortloom", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
fortloom - a dependency-driven Fortran source transformation scheduler.

Usage:
  fortloom [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the scheduler config file (.hcl, .yaml or .yml).")
	pathFlag := flagSet.String("path", "", "Comma-separated source root directories to scan.")
	includeFlag := flagSet.String("include", "", "Comma-separated include files or directories parsed for derived types.")
	rootFlag := flagSet.String("root", "", "Comma-separated root routine names to start discovery from.")
	callgraphFlag := flagSet.String("callgraph", "", "Write a styled DOT call graph to this path after processing.")
	modeFlag := flagSet.String("mode", "", "Override the config's default processing mode.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	roots := splitCommaList(*pathFlag)
	seeds := splitCommaList(*rootFlag)
	if len(roots) == 0 || len(seeds) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat, err := app.ParseLogFormat(*logFormatFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if _, err := app.ParseLogLevel(*logLevelFlag); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	logLevel := strings.ToLower(*logLevelFlag)

	config, err := app.NewConfig(app.Config{
		ConfigPath:    *configFlag,
		SourceRoots:   roots,
		Includes:      splitCommaList(*includeFlag),
		RootRoutines:  seeds,
		CallGraphPath: *callgraphFlag,
		Mode:          *modeFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
