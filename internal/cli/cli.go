package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/graphvisgo/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("graphvisgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
graphvisgo - Live Mermaid diagrams from a text file of edges.

Usage:
  graphvisgo [options] EDGES_FILE

Arguments:
  EDGES_FILE
    Text file with one "LEFT->RIGHT" edge per line. It is watched for changes
    and the diagram is re-rendered after every edit.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to an optional HCL configuration file.")
	outputFlag := flagSet.String("output", "", "Path the rendered PNG is written to.")
	oFlag := flagSet.String("o", "", "Path the rendered PNG is written to (shorthand).")
	onceFlag := flagSet.Bool("once", false, "Render the file a single time and exit.")
	settleFlag := flagSet.Duration("settle", 0, "Quiet period before a render starts (default 300ms).")
	rendererFlag := flagSet.String("renderer", "", "Mermaid CLI executable (default \"mmdc\").")
	backgroundFlag := flagSet.String("background", "", "Diagram background: light, dark, transparent or white (default \"light\").")
	controlPortFlag := flagSet.Int("control-port", 0, "Port for the HTTP control API. 0 is disabled.")
	socketIOFlag := flagSet.String("socketio-url", "", "socket.io viewer URL, e.g. http://localhost:3000/socket.io/.")
	disableFlag := flagSet.String("disable", "", "Comma-separated vertex labels to disable once they appear in the graph.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No edges file provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "expected exactly one EDGES_FILE argument"}
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

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var overrides app.Overrides
	switch {
	case set["output"]:
		overrides.Output = outputFlag
	case set["o"]:
		overrides.Output = oFlag
	}
	if set["settle"] {
		if *settleFlag <= 0 {
			return nil, false, &ExitError{Code: 2, Message: "invalid settle: must be a positive duration"}
		}
		overrides.Settle = settleFlag
	}
	if set["renderer"] {
		overrides.Renderer = rendererFlag
	}
	if set["background"] {
		bg := strings.ToLower(*backgroundFlag)
		switch bg {
		case "light", "dark", "transparent", "white":
		default:
			return nil, false, &ExitError{Code: 2, Message: "invalid background: must be 'light', 'dark', 'transparent' or 'white'"}
		}
		overrides.Background = &bg
	}
	if set["control-port"] {
		if *controlPortFlag < 0 || *controlPortFlag > 65535 {
			return nil, false, &ExitError{Code: 2, Message: "invalid control-port: must be between 0 and 65535"}
		}
		overrides.ControlPort = controlPortFlag
	}
	if set["socketio-url"] {
		overrides.SocketIOURL = socketIOFlag
	}
	overrides.Disabled = splitLabels(*disableFlag)
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		EdgesPath:  flagSet.Arg(0),
		ConfigPath: *configFlag,
		Once:       *onceFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "edges_path", config.EdgesPath)
	return config, false, nil
}

func splitLabels(s string) []string {
	var labels []string
	for _, part := range strings.Split(s, ",") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}
