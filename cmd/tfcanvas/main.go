// tfcanvas - diagram-to-Terraform compiler CLI
//
// Usage:
//   tfcanvas compile --diagram diagram.json [--out main.tf]
//   tfcanvas validate --diagram diagram.json [--policies policies]
//   tfcanvas serve
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"terraform-canvas/api"
	"terraform-canvas/compiler"
	"terraform-canvas/compiler/lint"
	"terraform-canvas/pkg/diagram"
)

var (
	version = "dev"
	commit  = "none"
)

// Exit codes for CI integration.
const (
	ExitSuccess      = 0
	ExitLintDeny     = 1
	ExitLintWarn     = 2
	ExitInvalidInput = 10
	ExitCompileError = 11
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.App{
		Name:    "tfcanvas",
		Usage:   "Compile cloud architecture diagrams into Terraform",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"TFCANVAS_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			compileCommand(),
			validateCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:  "compile",
		Usage: "Compile a diagram JSON file to Terraform",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "diagram",
				Aliases:  []string{"d"},
				Usage:    "Path to diagram JSON exported from the editor",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "main.tf",
				Usage:   "Output file path (- for stdout)",
			},
		},
		Action: func(c *cli.Context) error {
			d, err := loadDiagram(c.String("diagram"))
			if err != nil {
				return cli.Exit(err.Error(), ExitInvalidInput)
			}
			log.Info().Int("nodes", len(d.Nodes)).Int("edges", len(d.Edges)).Msg("Diagram loaded")

			text, err := compiler.New().Compile(d)
			if err != nil {
				return cli.Exit(fmt.Sprintf("compilation failed: %v", err), ExitCompileError)
			}

			out := c.String("out")
			if out == "-" {
				fmt.Print(text)
				return nil
			}
			if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
				return cli.Exit(fmt.Sprintf("failed to write %s: %v", out, err), ExitCompileError)
			}
			log.Info().Str("file", out).Msg("Terraform written")
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check diagram connections and evaluate lint policies",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "diagram",
				Aliases:  []string{"d"},
				Usage:    "Path to diagram JSON exported from the editor",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "policies",
				Usage: "Directory of rego lint rules (optional)",
			},
		},
		Action: func(c *cli.Context) error {
			d, err := loadDiagram(c.String("diagram"))
			if err != nil {
				return cli.Exit(err.Error(), ExitInvalidInput)
			}

			comp := compiler.New()
			warnings := comp.Validate(d)
			for _, w := range warnings {
				log.Warn().Str("edge", w.EdgeID).Msg(w.Message)
			}

			exitCode := ExitSuccess
			if len(warnings) > 0 {
				exitCode = ExitLintWarn
			}

			if dir := c.String("policies"); dir != "" {
				linter := lint.NewLinter(dir)
				result, err := linter.Evaluate(c.Context, d, comp.Records(d))
				if err != nil {
					return cli.Exit(fmt.Sprintf("lint evaluation failed: %v", err), ExitCompileError)
				}
				for _, w := range result.Warnings {
					log.Warn().Msg(w)
				}
				for _, denial := range result.Denials {
					log.Error().Msg(denial)
				}
				if !result.Passed {
					exitCode = ExitLintDeny
				} else if len(result.Warnings) > 0 && exitCode == ExitSuccess {
					exitCode = ExitLintWarn
				}
			}

			if exitCode == ExitSuccess {
				log.Info().Msg("Diagram is valid")
				return nil
			}
			return cli.Exit("", exitCode)
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the compile HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := api.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return api.NewServer(cfg).ListenAndServe()
		},
	}
}

func loadDiagram(path string) (*diagram.Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram: %w", err)
	}
	return diagram.Parse(data)
}
