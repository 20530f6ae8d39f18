package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"ngc-linker/internal/config"
)

// copyTestdata copies testdata/app into a fresh directory
func copyTestdata(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join("testdata", "app")
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	require.NoError(t, err)
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	// no .ngc-link.yaml is picked up from the package directory
	t.Chdir(t.TempDir())
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "ngc-link 0.0.0-dev (commit: unknown"), stdout)
	assert.Contains(t, stdout, "declaration version: 1")
}

func TestLink(t *testing.T) {
	t.Run("should link files in place and report failures", func(t *testing.T) {
		dir := copyTestdata(t)
		before := readFile(t, filepath.Join(dir, "nested", "broken.js"))

		_, stderr, err := execute(t, "link", dir)
		require.ErrorIs(t, err, errDiagnostics)

		linked := readFile(t, filepath.Join(dir, "greeting.js"))
		assert.NotContains(t, linked, "$ngDeclareComponent")
		assert.Contains(t, linked, "i0.ɵɵdefineComponent({")
		assert.Contains(t, linked, "function GreetingComponent_p_2_Template(rf, ctx) {")

		assert.Equal(t, before, readFile(t, filepath.Join(dir, "nested", "broken.js")))
		assert.Contains(t, stderr, "broken.js:6:12: ")
		assert.Contains(t, stderr, "> 6 |   version: 2,")
		assert.Contains(t, stderr, "linked 1 declaration in 3 files")
		assert.Contains(t, stderr, "1 problem reported")
	})

	t.Run("should mirror sources into the output directory", func(t *testing.T) {
		dir := copyTestdata(t)
		outDir := filepath.Join(t.TempDir(), "out")
		greeting := filepath.Join(dir, "greeting.js")
		before := readFile(t, greeting)

		_, _, err := execute(t, "link", "--out-dir", outDir, "--source-map", "-j", "1", dir)
		require.ErrorIs(t, err, errDiagnostics)

		assert.Equal(t, before, readFile(t, greeting))
		linked := readFile(t, filepath.Join(outDir, "greeting.js"))
		assert.True(t, strings.HasSuffix(linked, "\n//# sourceMappingURL=greeting.js.map\n"))
		assert.Equal(t, readFile(t, filepath.Join(dir, "nested", "plain.js")), readFile(t, filepath.Join(outDir, "nested", "plain.js")))
		assert.NoFileExists(t, filepath.Join(outDir, "styles.css"))

		var sourceMap struct {
			Version int      `json:"version"`
			Sources []string `json:"sources"`
		}
		require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(outDir, "greeting.js.map"))), &sourceMap))
		assert.Equal(t, 3, sourceMap.Version)
		assert.Contains(t, sourceMap.Sources, greeting)
	})

	t.Run("should print a diff without writing files", func(t *testing.T) {
		dir := copyTestdata(t)
		greeting := filepath.Join(dir, "greeting.js")
		before := readFile(t, greeting)

		stdout, _, err := execute(t, "link", "--diff", greeting)
		require.NoError(t, err)
		assert.Equal(t, before, readFile(t, greeting))
		assert.Contains(t, stdout, "--- "+greeting)
		assert.Contains(t, stdout, "-GreetingComponent.ɵcmp = i0.$ngDeclareComponent({")
		assert.Contains(t, stdout, "+GreetingComponent.ɵcmp = i0.ɵɵdefineComponent({")
	})

	t.Run("should write a yaml report", func(t *testing.T) {
		dir := copyTestdata(t)
		stdout, _, err := execute(t, "link", "--diff", "--report", "-", filepath.Join(dir, "nested"))
		require.ErrorIs(t, err, errDiagnostics)

		var rep report
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &rep))
		assert.Equal(t, 0, rep.Linked)
		assert.Equal(t, 1, rep.Failed)
		require.Len(t, rep.Files, 2)
		assert.Equal(t, filepath.Join(dir, "nested", "broken.js"), rep.Files[0].Path)
		require.Len(t, rep.Files[0].Diagnostics, 1)
		assert.Contains(t, rep.Files[0].Diagnostics[0], "Expected metadata version to be 1.")
		assert.Empty(t, rep.Files[1].Diagnostics)
	})

	t.Run("should skip files over the size limit", func(t *testing.T) {
		dir := copyTestdata(t)
		greeting := filepath.Join(dir, "greeting.js")
		before := readFile(t, greeting)

		stdout, _, err := execute(t, "link", "--max-file-size", "100B", "--report", "-", greeting)
		require.NoError(t, err)
		assert.Equal(t, before, readFile(t, greeting))
		assert.Contains(t, stdout, "skipped: larger than 100 B")
	})

	t.Run("should report files that cannot be parsed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.js")
		require.NoError(t, os.WriteFile(path, []byte("const = ;\n"), 0o644))

		_, stderr, err := execute(t, "link", path)
		require.ErrorIs(t, err, errDiagnostics)
		assert.Contains(t, stderr, "error: "+path+":1:")
	})

	t.Run("should read settings from the config file", func(t *testing.T) {
		dir := copyTestdata(t)
		cfgPath := filepath.Join(t.TempDir(), "link.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("link:\n  extensions: [\".css\"]\n"), 0o644))

		_, stderr, err := execute(t, "link", "--config", cfgPath, dir)
		require.NoError(t, err)
		assert.Contains(t, stderr, "linked 0 declarations in 1 file")
	})

	t.Run("should reject invalid settings", func(t *testing.T) {
		_, _, err := execute(t, "link", "--jobs", "0", copyTestdata(t))
		assert.ErrorIs(t, err, config.ErrInvalidJobs)
	})

	t.Run("should fail on missing inputs", func(t *testing.T) {
		_, _, err := execute(t, "link", filepath.Join(t.TempDir(), "missing.js"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
