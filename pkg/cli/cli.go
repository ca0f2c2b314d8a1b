// Package cli provides the command-line interface for webpilot.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/webpilot/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "webpilot",
		Usage:   "Run declarative browser scenarios",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Runner configuration file",
				Value:   "config.yaml",
				EnvVars: []string{"WEBPILOT_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{"WEBPILOT_VERBOSE"},
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			validateCommand(),
		},
	}
}

// Main runs the CLI and returns a process exit code.
func Main(args []string) int {
	if err := NewApp().Run(args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func buildLogger(c *cli.Context) error {
	level := "info"
	if c.Bool("verbose") {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, Console: true})
	if err != nil {
		return err
	}
	appLog = log
	return nil
}

// parseEnvFlags turns repeated key=value flags with dotted keys into a
// nested base env mapping.
func parseEnvFlags(pairs []string) (map[string]any, error) {
	env := map[string]any{}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid env flag %q, want key=value", pair)
		}
		current := env
		segments := strings.Split(key, ".")
		for i, segment := range segments {
			if i == len(segments)-1 {
				current[segment] = value
				break
			}
			next, ok := current[segment].(map[string]any)
			if !ok {
				next = map[string]any{}
				current[segment] = next
			}
			current = next
		}
	}
	return env, nil
}
