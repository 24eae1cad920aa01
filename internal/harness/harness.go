package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/keygrid/internal/compiler"
	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
	"github.com/roach88/keygrid/internal/preset"
)

// Harness runs scenarios.
type Harness struct {
	presets func(string) (*layout.Layout, error)
	logger  *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithPresets replaces the built-in preset catalog.
func WithPresets(c *preset.Catalog) Option {
	return func(h *Harness) {
		h.presets = c.Load
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		presets: preset.Load,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Result is the outcome of one scenario.
type Result struct {
	Pass   bool                `json:"pass"`
	Flat   [][]keycode.Token   `json:"flat,omitempty"`
	Lint   []compiler.Diagnostic `json:"lint,omitempty"`
	Errors []string            `json:"errors,omitempty"`

	Platform keycode.Platform `json:"-"`
	Keyboard string           `json:"-"`
	Layout   *layout.Layout   `json:"-"`
	Keymap   *compiler.Keymap `json:"-"`
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err error) {
	r.Pass = false
	r.Errors = append(r.Errors, err.Error())
}

// Source returns the compiled keymap.c.
func (r *Result) Source() string {
	if r.Keymap == nil {
		return ""
	}
	return r.Keymap.Source()
}

// Run executes a scenario with the default Harness.
func Run(s *Scenario) (*Result, error) {
	return New().Run(s)
}

// Run builds the scenario's layout, applies its edits, compiles it and
// evaluates expectations and assertions.
//
// The returned error covers scenarios that cannot be executed at all
// (unknown preset, out-of-range edit, malformed grid). Failed
// expectations are reported in Result.Errors.
func (h *Harness) Run(s *Scenario) (*Result, error) {
	p, err := keycode.ParsePlatform(s.Platform)
	if err != nil {
		return nil, err
	}

	l, err := s.buildLayout(h.presets)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	for i, e := range s.Edits {
		l, err = applyEdit(l, e)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: edits[%d] %s: %w", s.Name, i, e.Op, err)
		}
	}

	km, err := compiler.Compile(l, s.Keyboard, p)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	result := &Result{
		Pass:     true,
		Flat:     km.Flat(),
		Lint:     compiler.Lint(l, p),
		Platform: p,
		Keyboard: s.Keyboard,
		Layout:   l,
		Keymap:   km,
	}

	if s.Expect != nil {
		for _, err := range checkExpect(s.Expect, result) {
			result.AddError(err)
		}
	}

	for i, a := range s.Assertions {
		if err := evaluate(result, a); err != nil {
			result.AddError(fmt.Errorf("assertions[%d]: %w", i, err))
		}
	}

	h.logger.Debug("scenario complete",
		"name", s.Name,
		"platform", p.String(),
		"layers", len(l.Layers),
		"pass", result.Pass,
	)

	return result, nil
}

func applyEdit(l *layout.Layout, e Edit) (*layout.Layout, error) {
	switch e.Op {
	case OpSet:
		return l.SetLabel(e.Layer, e.Row, e.Col, e.Label)
	case OpClear:
		return l.ClearCell(e.Layer, e.Row, e.Col)
	case OpSkip:
		return l.SkipCell(e.Layer, e.Row, e.Col)
	case OpAddLayer:
		return l.AddLayer(), nil
	case OpRemoveLayer:
		return l.RemoveLayer(), nil
	case OpAddRow:
		return l.AddRow(), nil
	case OpRemoveRow:
		return l.RemoveRow(), nil
	case OpAddColumn:
		return l.AddColumn(), nil
	case OpRemoveColumn:
		return l.RemoveColumn(), nil
	default:
		return nil, fmt.Errorf("unknown op %q", e.Op)
	}
}
