package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/webpilot/pkg/scenario"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Parse and resolve a scenario without running it",
		ArgsUsage: "<scenario.yaml>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Base env override, dotted key=value (repeatable)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one scenario file")
			}
			baseEnv, err := parseEnvFlags(c.StringSlice("env"))
			if err != nil {
				return err
			}
			sc, err := scenario.Load(c.Args().First(), baseEnv)
			if err != nil {
				return err
			}
			fmt.Printf("OK: %d steps\n", len(sc.Flow))
			for i, step := range sc.Flow {
				fmt.Printf("  %d. %s\n", i+1, step.Describe())
			}
			return nil
		},
	}
}
