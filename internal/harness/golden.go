package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is the directory, relative to a scenario file, holding its
// golden keymap.
const GoldenDir = "golden"

// GoldenPath returns the golden file path for a scenario file:
// dir/golden/name.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	name := strings.TrimSuffix(filepath.Base(scenarioFile), filepath.Ext(scenarioFile))
	return filepath.Join(dir, GoldenDir, name+".golden")
}

// CompareGolden reports whether the result's keymap matches the golden
// file at path. A missing golden file is not an error; the second return
// value reports whether it existed.
func CompareGolden(path string, result *Result) (match, exists bool, err error) {
	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("read golden file: %w", err)
	}
	return bytes.Equal(want, []byte(result.Source())), true, nil
}

// UpdateGolden writes the result's keymap to path.
func UpdateGolden(path string, result *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(result.Source()), 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

// RunWithGolden executes a scenario and compares its keymap.c against
// fixtureDir/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the keymap doesn't match the golden file.
func RunWithGolden(t *testing.T, fixtureDir string, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, fixtureDir, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's keymap.c against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, fixtureDir, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(fixtureDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(result.Source()))
}
