package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"
)

// outputPath is where a linked source is written
func outputPath(src source, outDir string) string {
	if outDir == "" {
		return src.Path
	}
	return filepath.Join(outDir, src.Rel)
}

// writeResult writes a linked file and its source map. Files without linked
// declarations are copied to outDir unchanged and never rewritten in place.
func writeResult(res *fileResult, outDir string) error {
	if res.Input == nil || (!res.changed() && outDir == "") {
		return nil
	}
	path := outputPath(res.source, outDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if !res.changed() {
		return writeFile(path, res.Input)
	}

	code := res.Result.Code
	if res.Result.SourceMap != nil {
		mapPath := path + ".map"
		data, err := json.Marshal(res.Result.SourceMap)
		if err != nil {
			return fmt.Errorf("encoding source map of %s: %w", res.Path, err)
		}
		if err := writeFile(mapPath, data); err != nil {
			return err
		}
		code = strings.TrimRight(code, "\n") + "\n//# sourceMappingURL=" + filepath.Base(mapPath) + "\n"
	}
	return writeFile(path, []byte(code))
}

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	markerColor = color.New(color.FgYellow)
	addColor    = color.New(color.FgGreen)
	removeColor = color.New(color.FgRed)
	headerColor = color.New(color.Bold)
)

func printDiagnostics(w io.Writer, res *fileResult) {
	if res.Err != nil {
		errorColor.Fprintf(w, "error: %v\n", res.Err)
	}
	if res.Result == nil {
		return
	}
	for _, d := range res.Result.Diagnostics {
		errorColor.Fprintf(w, "%s\n", d)
		for _, line := range strings.Split(d.CodeFrame, "\n") {
			if strings.HasPrefix(line, ">") || strings.HasSuffix(line, "^") {
				markerColor.Fprintln(w, line)
			} else {
				fmt.Fprintln(w, line)
			}
		}
		fmt.Fprintln(w)
	}
}

// printDiff writes a line diff between a source and its linked code
func printDiff(w io.Writer, res *fileResult) {
	if !res.changed() {
		return
	}
	dmp := diffmatchpatch.New()
	before, after, lines := dmp.DiffLinesToChars(string(res.Input), res.Result.Code)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(before, after, false), lines)

	headerColor.Fprintf(w, "--- %s\n+++ %s (linked)\n", res.Path, res.Path)
	for _, d := range diffs {
		var prefix string
		var c *color.Color
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, c = "+", addColor
		case diffmatchpatch.DiffDelete:
			prefix, c = "-", removeColor
		default:
			continue
		}
		for _, line := range strings.SplitAfter(strings.TrimSuffix(d.Text, "\n"), "\n") {
			c.Fprintf(w, "%s%s\n", prefix, strings.TrimSuffix(line, "\n"))
		}
	}
}

// report summarizes a run
type report struct {
	Files    []fileReport `yaml:"files"`
	Linked   int          `yaml:"linked"`
	Failed   int          `yaml:"failed"`
	Input    string       `yaml:"input_size"`
	Output   string       `yaml:"output_size"`
	Duration string       `yaml:"duration"`
}

type fileReport struct {
	Path        string   `yaml:"path"`
	Linked      int      `yaml:"linked"`
	Skipped     string   `yaml:"skipped,omitempty"`
	Error       string   `yaml:"error,omitempty"`
	Diagnostics []string `yaml:"diagnostics,omitempty"`
}

func newReport(results []*fileResult, elapsed time.Duration) *report {
	rep := &report{Duration: elapsed.Round(time.Millisecond).String()}
	var inputSize, outputSize uint64
	for _, res := range results {
		file := fileReport{Path: res.Path, Skipped: res.Skipped}
		inputSize += uint64(len(res.Input))
		if res.Err != nil {
			file.Error = res.Err.Error()
			rep.Failed++
		}
		if res.Result != nil {
			file.Linked = res.Result.Linked
			rep.Linked += res.Result.Linked
			outputSize += uint64(len(res.Result.Code))
			for _, d := range res.Result.Diagnostics {
				file.Diagnostics = append(file.Diagnostics, d.String())
			}
			rep.Failed += len(res.Result.Diagnostics)
		} else {
			outputSize += uint64(len(res.Input))
		}
		rep.Files = append(rep.Files, file)
	}
	rep.Input = humanize.Bytes(inputSize)
	rep.Output = humanize.Bytes(outputSize)
	return rep
}

func printSummary(w io.Writer, rep *report) {
	fmt.Fprintf(w, "linked %d %s in %d %s (%s -> %s) in %s\n",
		rep.Linked, plural(rep.Linked, "declaration"),
		len(rep.Files), plural(len(rep.Files), "file"),
		rep.Input, rep.Output, rep.Duration)
	if rep.Failed > 0 {
		errorColor.Fprintf(w, "%d %s reported\n", rep.Failed, plural(rep.Failed, "problem"))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// writeReport encodes rep as YAML into path, or stdout for "-"
func writeReport(path string, stdout io.Writer, rep *report) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	return writeFile(path, data)
}
