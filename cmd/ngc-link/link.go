package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ngc-linker/internal/config"
)

// errDiagnostics makes the command exit non-zero once every file has been
// written
var errDiagnostics = errors.New("some declarations could not be linked")

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
	}
}

func linkCmd(v *viper.Viper, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link [files or directories...]",
		Short: "Link the partial declarations of JavaScript files",
		Long: `Link replaces every $ngDeclareComponent call with its compiled definition.

Directories are searched recursively for files with one of the configured
extensions. Files are rewritten in place unless --out-dir is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())
			return runLink(cmd, args, cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringP("out-dir", "o", "", "write linked files under this directory instead of in place")
	flags.IntP("jobs", "j", config.DefaultJobs, "number of files linked concurrently")
	flags.Bool("source-map", false, "write a source map next to every linked file")
	flags.Bool("diff", false, "print a diff of the changes without writing files")
	flags.String("report", "", "write a YAML report of the run to this file, - for stdout")
	flags.String("language", config.DefaultLanguage, "grammar of the input: auto, javascript or typescript")
	flags.StringSlice("ext", config.DefaultExtensions, "extensions of the files linked in directories")
	flags.String("max-file-size", config.DefaultMaxFileSize, "skip files larger than this")

	bindFlag(v, "link.out_dir", flags.Lookup("out-dir"))
	bindFlag(v, "link.jobs", flags.Lookup("jobs"))
	bindFlag(v, "link.source_map", flags.Lookup("source-map"))
	bindFlag(v, "link.diff", flags.Lookup("diff"))
	bindFlag(v, "link.report", flags.Lookup("report"))
	bindFlag(v, "link.language", flags.Lookup("language"))
	bindFlag(v, "link.extensions", flags.Lookup("ext"))
	bindFlag(v, "link.max_file_size", flags.Lookup("max-file-size"))
	return cmd
}

func runLink(cmd *cobra.Command, args []string, cfg *config.Config, logger *slog.Logger) error {
	started := time.Now()
	sources, err := collectSources(args, &cfg.Link)
	if err != nil {
		return err
	}
	logger.Debug("collected sources", "count", len(sources))

	results, err := linkAll(cmd.Context(), sources, &cfg.Link, logger)
	if err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	for _, res := range results {
		printDiagnostics(stderr, res)
		if cfg.Link.Diff {
			printDiff(stdout, res)
			continue
		}
		if err := writeResult(res, cfg.Link.OutDir); err != nil {
			return err
		}
	}

	rep := newReport(results, time.Since(started))
	printSummary(stderr, rep)
	if cfg.Link.Report != "" {
		if err := writeReport(cfg.Link.Report, stdout, rep); err != nil {
			return err
		}
	}
	if rep.Failed > 0 {
		return errDiagnostics
	}
	return nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
