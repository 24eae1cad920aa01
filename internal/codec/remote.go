package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/roach88/keygrid/internal/layout"
)

// SaveRequest is the body of a remote save.
type SaveRequest struct {
	KeyboardLayout *layout.Layout `json:"keyboard_layout"`
	UserID         string         `json:"user_id"`
	KeyboardName   string         `json:"keyboard_name"`
}

// LoadResponse is the body returned by a remote load. KeyboardLayout
// accepts either a full layout object or a bare layer array, which older
// deployments of the save service return.
type LoadResponse struct {
	KeyboardLayout *layout.Layout `json:"-"`
	KeyboardName   string         `json:"keyboard_name"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *LoadResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		KeyboardLayout json.RawMessage `json:"keyboard_layout"`
		KeyboardName   string          `json:"keyboard_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.KeyboardName = raw.KeyboardName
	r.KeyboardLayout = nil

	body := bytes.TrimSpace(raw.KeyboardLayout)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}

	switch body[0] {
	case '{':
		var l layout.Layout
		if err := json.Unmarshal(body, &l); err != nil {
			return fmt.Errorf("keyboard_layout: %w", err)
		}
		r.KeyboardLayout = &l
	case '[':
		var layers []layout.Layer
		if err := json.Unmarshal(body, &layers); err != nil {
			return fmt.Errorf("keyboard_layout: %w", err)
		}
		r.KeyboardLayout = layout.FromLayers(layers)
	default:
		return fmt.Errorf("keyboard_layout: unexpected %q", body[:1])
	}
	return nil
}

// MarshalJSON writes the layout in object form.
func (r LoadResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		KeyboardLayout *layout.Layout `json:"keyboard_layout"`
		KeyboardName   string         `json:"keyboard_name"`
	}{r.KeyboardLayout, r.KeyboardName})
}

// DecodeLoadResponse parses a remote load body, tolerating comments and
// trailing commas.
func DecodeLoadResponse(data []byte) (*LoadResponse, error) {
	var resp LoadResponse
	if err := json.Unmarshal(jsonc.ToJSON(data), &resp); err != nil {
		return nil, fmt.Errorf("decode load response: %w", err)
	}
	return &resp, nil
}
