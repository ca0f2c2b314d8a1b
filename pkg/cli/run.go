package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/webpilot/pkg/browser"
	_ "github.com/devicelab-dev/webpilot/pkg/browser/fake" // registers the fake driver
	"github.com/devicelab-dev/webpilot/pkg/config"
	"github.com/devicelab-dev/webpilot/pkg/executor"
	"github.com/devicelab-dev/webpilot/pkg/oracle"
	"github.com/devicelab-dev/webpilot/pkg/report"
	"github.com/devicelab-dev/webpilot/pkg/scenario"
)

var appLog zerolog.Logger

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute a scenario file",
		ArgsUsage: "<scenario.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "driver",
				Aliases: []string{"d"},
				Usage:   "Page driver to use",
				Value:   "fake",
				EnvVars: []string{"WEBPILOT_DRIVER"},
			},
			&cli.StringSliceFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Base env override, dotted key=value (repeatable)",
			},
			&cli.StringFlag{
				Name:  "artifacts-dir",
				Usage: "Override the artifacts directory",
			},
			&cli.BoolFlag{
				Name:  "semantic",
				Usage: "Enable the language-model comparator for see steps",
			},
			&cli.BoolFlag{
				Name:  "html",
				Usage: "Also render the report as HTML",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one scenario file")
	}
	if err := buildLogger(c); err != nil {
		return err
	}

	settings, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if dir := c.String("artifacts-dir"); dir != "" {
		settings.ArtifactsDir = dir
	}

	baseEnv, err := parseEnvFlags(c.StringSlice("env"))
	if err != nil {
		return err
	}

	scenarioPath := c.Args().First()
	sc, err := scenario.Load(scenarioPath, baseEnv)
	if err != nil {
		return err
	}

	page, err := browser.Open(c.String("driver"), browser.Options{
		Headless:     settings.Headless,
		SlowMo:       time.Duration(settings.SlowMo) * time.Millisecond,
		RecordVideo:  settings.RecordVideo,
		CollectHAR:   settings.CollectHAR,
		ArtifactsDir: settings.ArtifactsDir,
	})
	if err != nil {
		return err
	}

	engine := executor.New(page, settings, appLog)
	if c.Bool("semantic") {
		engine.SetComparator(oracle.NewLLMComparator())
	}

	// A failed run may be re-run wholesale, per the configured scenario retry.
	var rep *report.RunReport
	for attempt := 0; attempt <= settings.Retry.Scenario; attempt++ {
		rep = engine.Run(c.Context, sc)
		if rep.Success() {
			break
		}
	}

	reportPath := filepath.Join(settings.ArtifactsDir, "report.json")
	if err := report.Save(rep, reportPath); err != nil {
		return err
	}
	appLog.Info().Str("report", reportPath).Msg("report written")

	if c.Bool("html") {
		htmlPath := filepath.Join(settings.ArtifactsDir, "report.html")
		if err := report.RenderHTML(rep, report.HTMLConfig{OutputPath: htmlPath, Title: scenarioPath}); err != nil {
			return err
		}
		appLog.Info().Str("report", htmlPath).Msg("html report written")
	}

	if !rep.Success() {
		return cli.Exit(fmt.Sprintf("scenario failed (%d/%d steps ran)", len(rep.Steps), len(sc.Flow)), 1)
	}
	fmt.Printf("PASSED %s (%d steps)\n", scenarioPath, len(rep.Steps))
	return nil
}
