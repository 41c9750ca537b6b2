// Package main provides the semschema binary entry point.
// Semschema closes RDFS/OWL schemas and generates Go types for their
// classes.
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/c360studio/semschema/codegen"
	"github.com/c360studio/semschema/config"
	"github.com/c360studio/semschema/export"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semschema"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

// schemaFlags select schema sources and override their settings.
type schemaFlags struct {
	format     string
	base       string
	noReasoner bool
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Schema closure and Go code generation",
		Long: `Semschema ingests RDFS/OWL schemas, materializes their implicit
class and property relationships, collapses equivalent classes and
generates one Go type per distinct class.

Schemas are read from the arguments or from the schemas section of
semschema.yaml in the current directory or a parent.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		generateCmd(g),
		validateCmd(g),
		closureCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func generateCmd(g *globalFlags) *cobra.Command {
	var (
		sf        schemaFlags
		out       string
		namespace string
		mapping   string
		workers   int
		watchMode bool
	)

	cmd := &cobra.Command{
		Use:   "generate [schema files, globs or URLs...]",
		Short: "Generate Go types for every distinct class",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, g, &sf, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.Output.Dir = out
			}
			if cmd.Flags().Changed("namespace") {
				cfg.Codegen.BaseNamespace = namespace
			}
			if cmd.Flags().Changed("mapping") {
				cfg.Codegen.Mapping = codegen.Mapping(mapping)
			}
			if cmd.Flags().Changed("workers") {
				cfg.Codegen.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx := cmd.Context()
			app := NewApp(cfg, logger)
			defer app.Close(context.WithoutCancel(ctx))

			report, err := app.Generate(ctx)
			if err != nil && !watchMode {
				return err
			}
			if err != nil {
				logger.Error("Generation failed", "error", err)
			} else {
				printReport(cmd.OutOrStdout(), report)
			}

			if watchMode {
				if err := watch(ctx, app, logger); err != nil && !stderrors.Is(err, context.Canceled) {
					return err
				}
			}
			return nil
		},
	}

	addSchemaFlags(cmd, &sf)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (default from config: gen)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Base Go import path for generated packages")
	cmd.Flags().StringVar(&mapping, "mapping", "", "IRI to package mapping (reverse-host, host-path, flat)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Classes written concurrently")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Regenerate when schema files change")
	return cmd
}

func validateCmd(g *globalFlags) *cobra.Command {
	var sf schemaFlags

	cmd := &cobra.Command{
		Use:   "validate [schema files, globs or URLs...]",
		Short: "Check schemas for consistency without building",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, g, &sf, args)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			report, err := NewApp(cfg, logger).Validate(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("schema is inconsistent: %d violation(s)", len(report.Errors()))
			}
			return nil
		},
	}

	addSchemaFlags(cmd, &sf)
	return cmd
}

func closureCmd(g *globalFlags) *cobra.Command {
	var (
		sf     schemaFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "closure [schema files, globs or URLs...]",
		Short: "Build the closed schema and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, g, &sf, args)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				w = file
			}

			ctx := cmd.Context()
			app := NewApp(cfg, logger)
			defer app.Close(context.WithoutCancel(ctx))
			return app.Closure(ctx, w, f)
		},
	}

	addSchemaFlags(cmd, &sf)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatTurtle), "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file (- for stdout)")
	return cmd
}

func addSchemaFlags(cmd *cobra.Command, sf *schemaFlags) {
	cmd.Flags().StringVar(&sf.format, "input-format", "", "Input format for argument sources (RDF/XML, N-TRIPLE, TURTLE, N3)")
	cmd.Flags().StringVar(&sf.base, "base-iri", "", "Base IRI for argument sources")
	cmd.Flags().BoolVar(&sf.noReasoner, "no-reasoner", false, "Skip the consistency check")
}

// setup configures logging, loads configuration and applies the schema
// arguments.
func setup(cmd *cobra.Command, g *globalFlags, sf *schemaFlags, args []string) (*config.Config, *slog.Logger, error) {
	logger := newLogger(cmd.ErrOrStderr(), g.logLevel)
	slog.SetDefault(logger)

	cfg, err := loadConfig(g.configPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if len(args) > 0 {
		cfg.Schemas = sourcesFromArgs(args, sf.base, sf.format)
	}
	if sf.noReasoner {
		disabled := false
		cfg.Reasoner.Enabled = &disabled
	}
	return cfg, logger, nil
}

func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.NewLoader(logger).Load()
}

// sourcesFromArgs turns command line arguments into schema sources. http(s)
// arguments are URLs; everything else is a path or glob.
func sourcesFromArgs(args []string, base, format string) []config.SchemaSource {
	sources := make([]config.SchemaSource, 0, len(args))
	for _, arg := range args {
		src := config.SchemaSource{Base: base, Format: format}
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			src.URL = arg
		} else {
			src.Path = arg
		}
		sources = append(sources, src)
	}
	return sources
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printReport(w io.Writer, report *codegen.Report) {
	fmt.Fprintf(w, "Generated %d classes (%d files) in %s\n", report.Classes, len(report.Files), report.BaseDir)
	if report.BaseNamespace != "" {
		fmt.Fprintf(w, "Package base: %s\n", report.BaseNamespace)
	}
}
