package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"ngc-linker/internal/config"
	"ngc-linker/packages/compiler-cli/linker/treesitter"
)

// source is an input file. Rel is its path below the argument it was found
// through, used to mirror the layout in the output directory.
type source struct {
	Path string
	Rel  string
}

// fileResult is the outcome of linking one source
type fileResult struct {
	source
	Input  []byte
	Result *treesitter.Result
	// Skipped explains why the file was not linked
	Skipped string
	// Err is a syntax error of the file
	Err error
}

// collectSources expands the arguments into files. Directories are walked
// recursively, skipping hidden directories; named files are always taken.
func collectSources(args []string, cfg *config.LinkConfig) ([]source, error) {
	var sources []source
	seen := map[string]bool{}
	add := func(path, rel string) {
		if !seen[path] {
			seen[path] = true
			sources = append(sources, source{Path: path, Rel: rel})
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg, filepath.Base(arg))
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !cfg.HasExtension(path) {
				return nil
			}
			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}
			add(path, rel)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
	}
	return sources, nil
}

func languageOf(cfg *config.LinkConfig, path string) treesitter.Language {
	switch cfg.Language {
	case "javascript":
		return treesitter.LanguageJavaScript
	case "typescript":
		return treesitter.LanguageTypeScript
	}
	return treesitter.LanguageForPath(path)
}

// linkAll links sources with up to cfg.Jobs files in flight. Results keep
// the order of sources. The first I/O error cancels the remaining files.
func linkAll(ctx context.Context, sources []source, cfg *config.LinkConfig, logger *slog.Logger) ([]*fileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*fileResult, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)

	for i, src := range sources {
		g.Go(func() error {
			res, err := linkFile(ctx, src, cfg, logger)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func linkFile(ctx context.Context, src source, cfg *config.LinkConfig, logger *slog.Logger) (*fileResult, error) {
	res := &fileResult{source: src}
	info, err := os.Stat(src.Path)
	if err != nil {
		return nil, err
	}
	if uint64(info.Size()) > cfg.MaxFileBytes {
		res.Skipped = fmt.Sprintf("larger than %s", humanize.Bytes(cfg.MaxFileBytes))
		logger.Info("skipped file", "file", src.Path, "size", humanize.Bytes(uint64(info.Size())))
		return res, nil
	}

	res.Input, err = os.ReadFile(src.Path)
	if err != nil {
		return nil, err
	}
	res.Result, err = treesitter.LinkSource(ctx, src.Path, res.Input, treesitter.Options{
		SourceMap: cfg.SourceMap,
		Language:  languageOf(cfg, src.Path),
		Logger:    logger,
	})
	if errors.Is(err, treesitter.ErrSyntax) {
		res.Result, res.Err = nil, err
		logger.Warn("cannot parse file", "file", src.Path, "error", err)
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("linking %s: %w", src.Path, err)
	}
	return res, nil
}

// changed reports whether linking rewrote any declaration
func (r *fileResult) changed() bool {
	return r.Result != nil && r.Result.Linked > 0
}
