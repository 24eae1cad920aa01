package harness

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/keygrid/internal/codec"
	"github.com/roach88/keygrid/internal/firmware"
	"github.com/roach88/keygrid/internal/keycode"
)

// AssertionError is returned when an expectation or assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func checkExpect(e *Expect, r *Result) []error {
	var errs []error

	if e.Flat != nil {
		got := make([][]string, len(r.Flat))
		for i, layer := range r.Flat {
			got[i] = make([]string, len(layer))
			for j, tok := range layer {
				got[i][j] = string(tok)
			}
		}
		if diff := cmp.Diff(e.Flat, got); diff != "" {
			errs = append(errs, &AssertionError{
				Type:     "flat",
				Expected: fmt.Sprintf("%v", e.Flat),
				Actual:   fmt.Sprintf("%v\n  Diff (-want +got):\n%s", got, diff),
			})
		}
	}

	if e.Dimensions != nil {
		d := r.Layout.Dimensions
		if d.Rows != e.Dimensions.Rows || d.Columns != e.Dimensions.Columns {
			errs = append(errs, &AssertionError{
				Type:     "dimensions",
				Expected: fmt.Sprintf("%dx%d", e.Dimensions.Rows, e.Dimensions.Columns),
				Actual:   fmt.Sprintf("%dx%d", d.Rows, d.Columns),
			})
		}
	}

	if e.Layers > 0 && len(r.Layout.Layers) != e.Layers {
		errs = append(errs, &AssertionError{
			Type:     "layers",
			Expected: fmt.Sprintf("%d layers", e.Layers),
			Actual:   fmt.Sprintf("%d layers", len(r.Layout.Layers)),
		})
	}

	return errs
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertTokenAt:
		return assertTokenAt(r, a)
	case AssertTokenCount:
		return assertTokenCount(r, a)
	case AssertLint:
		return assertLint(r, a)
	case AssertRoundTrip:
		return assertRoundTrip(r)
	case AssertArtifactContains:
		return assertArtifactContains(r, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertTokenAt(r *Result, a Assertion) error {
	layers := r.Keymap.Layers
	if a.Layer < 0 || a.Layer >= len(layers) ||
		a.Row < 0 || a.Row >= len(layers[a.Layer]) ||
		a.Col < 0 || a.Col >= len(layers[a.Layer][a.Row]) {
		return &AssertionError{
			Type:     AssertTokenAt,
			Expected: fmt.Sprintf("%s at layer %d row %d col %d", a.Token, a.Layer, a.Row, a.Col),
			Actual:   "position out of range",
		}
	}

	got := layers[a.Layer][a.Row][a.Col]
	if got != keycode.Token(a.Token) {
		return &AssertionError{
			Type:     AssertTokenAt,
			Expected: fmt.Sprintf("%s at layer %d row %d col %d", a.Token, a.Layer, a.Row, a.Col),
			Actual:   string(got),
		}
	}
	return nil
}

func assertTokenCount(r *Result, a Assertion) error {
	count := 0
	for _, layer := range r.Flat {
		for _, tok := range layer {
			if tok == keycode.Token(a.Token) {
				count++
			}
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTokenCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Token),
			Actual:   fmt.Sprintf("%d occurrences", count),
		}
	}
	return nil
}

func assertLint(r *Result, a Assertion) error {
	count := 0
	for _, d := range r.Lint {
		if d.Kind == a.Kind {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertLint,
			Expected: fmt.Sprintf("%d %s diagnostics", a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d diagnostics: %v", count, r.Lint),
		}
	}
	return nil
}

// assertRoundTrip checks that the layout survives serialization.
func assertRoundTrip(r *Result) error {
	data, err := codec.Serialize(r.Layout, codec.Metadata{})
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	back, res := codec.Decode(data)
	if res.Fallback {
		return &AssertionError{
			Type:     AssertRoundTrip,
			Expected: "document decodes",
			Actual:   "fell back to default: " + res.Reason,
		}
	}
	if !back.Equal(r.Layout) {
		return &AssertionError{
			Type:     AssertRoundTrip,
			Expected: "identical layout after decode",
			Actual:   fmt.Sprintf("layouts differ\n%s", data),
		}
	}
	return nil
}

func assertArtifactContains(r *Result, a Assertion) error {
	files, err := firmware.Artifacts(r.Layout, r.Keyboard, r.Platform)
	if err != nil {
		return fmt.Errorf("generate artifacts: %w", err)
	}

	for _, f := range files {
		if !strings.HasSuffix(f.Path, "/"+a.Path) {
			continue
		}
		if strings.Contains(string(f.Data), a.Text) {
			return nil
		}
		return &AssertionError{
			Type:     AssertArtifactContains,
			Expected: fmt.Sprintf("%s contains %q", a.Path, a.Text),
			Actual:   "text not found",
		}
	}

	return &AssertionError{
		Type:     AssertArtifactContains,
		Expected: fmt.Sprintf("artifact %s", a.Path),
		Actual:   "no such artifact",
	}
}
