package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Platform selects the label vocabulary. Empty means generic.
	Platform string `yaml:"platform,omitempty"`

	// Keyboard is the identifier used for compiled artifacts.
	Keyboard string `yaml:"keyboard,omitempty"`

	// Preset names a built-in starting layout. Mutually exclusive with
	// Dimensions and Layers.
	Preset string `yaml:"preset,omitempty"`

	// Dimensions and Layers spell the layout out cell by cell.
	Dimensions *Dimensions  `yaml:"dimensions,omitempty"`
	Layers     [][][]*Cell `yaml:"layers,omitempty"`

	// Edits are applied in order before compiling.
	Edits []Edit `yaml:"edits,omitempty"`

	// Expect is compared against the compiled output.
	Expect *Expect `yaml:"expect,omitempty"`

	// Assertions validate details of the compiled output.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Dimensions is the grid size of an inline layout.
type Dimensions struct {
	Rows    int `yaml:"rows"`
	Columns int `yaml:"columns"`
}

// Cell is one inline layout cell. A nil *Cell is a skipped position.
type Cell struct {
	Value *string `yaml:"value"`
	Span  int     `yaml:"span"`
}

// UnmarshalYAML accepts a bare label or a {value, span} mapping.
// A bare empty string is the Blank placeholder.
func (c *Cell) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			s = layout.Blank
		}
		c.Value, c.Span = &s, 1
		return nil
	}

	type plain Cell
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	if p.Span < 1 {
		p.Span = 1
	}
	*c = Cell(p)
	return nil
}

// Edit is one editing step.
type Edit struct {
	// Op is one of the Op* constants.
	Op    string `yaml:"op"`
	Layer int    `yaml:"layer,omitempty"`
	Row   int    `yaml:"row,omitempty"`
	Col   int    `yaml:"col,omitempty"`
	Label string `yaml:"label,omitempty"`
}

// Edit operations.
const (
	OpSet          = "set"
	OpClear        = "clear"
	OpSkip         = "skip"
	OpAddLayer     = "add_layer"
	OpRemoveLayer  = "remove_layer"
	OpAddRow       = "add_row"
	OpRemoveRow    = "remove_row"
	OpAddColumn    = "add_column"
	OpRemoveColumn = "remove_column"
)

// Expect specifies expected compiled output.
type Expect struct {
	// Flat is the row-major token list of each layer.
	Flat [][]string `yaml:"flat,omitempty"`

	// Dimensions is the grid size after edits.
	Dimensions *Dimensions `yaml:"dimensions,omitempty"`

	// Layers is the layer count after edits.
	Layers int `yaml:"layers,omitempty"`
}

// Assertion validates one detail of the result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Position and token (token_at).
	Layer int    `yaml:"layer,omitempty"`
	Row   int    `yaml:"row,omitempty"`
	Col   int    `yaml:"col,omitempty"`
	Token string `yaml:"token,omitempty"`

	// Count is the expected number of occurrences (token_count, lint).
	Count int `yaml:"count"`

	// Kind is the lint diagnostic kind (lint).
	Kind string `yaml:"kind,omitempty"`

	// Path and Text select an artifact and a substring (artifact_contains).
	Path string `yaml:"path,omitempty"`
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertTokenAt          = "token_at"
	AssertTokenCount       = "token_count"
	AssertLint             = "lint"
	AssertRoundTrip        = "round_trip"
	AssertArtifactContains = "artifact_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, in lexical
// order. A non-empty filter is a glob matched against the file name
// without extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := keycode.ParsePlatform(s.Platform); err != nil {
		return err
	}

	inline := s.Dimensions != nil || len(s.Layers) > 0
	switch {
	case s.Preset != "" && inline:
		return fmt.Errorf("preset and dimensions/layers are mutually exclusive")
	case s.Preset == "" && (s.Dimensions == nil || len(s.Layers) == 0):
		return fmt.Errorf("either preset or both dimensions and layers are required")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	for i, e := range s.Edits {
		if err := validateEdit(i, e); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

func validateEdit(index int, e Edit) error {
	switch e.Op {
	case OpSet:
		if e.Label == "" {
			return fmt.Errorf("edits[%d]: label is required for set", index)
		}
	case OpClear, OpSkip, OpAddLayer, OpRemoveLayer, OpAddRow, OpRemoveRow, OpAddColumn, OpRemoveColumn:
	case "":
		return fmt.Errorf("edits[%d]: op is required", index)
	default:
		return fmt.Errorf("edits[%d]: unknown op %q", index, e.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTokenAt:
		if a.Token == "" {
			return fmt.Errorf("assertions[%d]: token is required for token_at", index)
		}
	case AssertTokenCount:
		if a.Token == "" {
			return fmt.Errorf("assertions[%d]: token is required for token_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for token_count", index)
		}
	case AssertLint:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for lint", index)
		}
	case AssertRoundTrip:
	case AssertArtifactContains:
		if a.Path == "" || a.Text == "" {
			return fmt.Errorf("assertions[%d]: path and text are required for artifact_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// buildLayout returns the starting layout, before edits.
func (s *Scenario) buildLayout(loadPreset func(string) (*layout.Layout, error)) (*layout.Layout, error) {
	if s.Preset != "" {
		return loadPreset(s.Preset)
	}

	l := &layout.Layout{
		Dimensions: layout.Dimensions{Rows: s.Dimensions.Rows, Columns: s.Dimensions.Columns},
		Layers:     make([]layout.Layer, len(s.Layers)),
	}
	for i, layer := range s.Layers {
		rows := make(layout.Layer, len(layer))
		for r, row := range layer {
			cells := make(layout.Row, len(row))
			for c, cell := range row {
				if cell != nil {
					cells[c] = &layout.KeyCell{Value: cell.Value, Span: cell.Span}
				}
			}
			rows[r] = cells
		}
		l.Layers[i] = rows
	}
	return l, nil
}
