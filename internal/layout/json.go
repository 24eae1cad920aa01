package layout

import "encoding/json"

// UnmarshalJSON accepts both the object form {"value": ..., "span": ...}
// and the bare-string cells written by early editor builds. A missing or
// non-positive span decodes as 1.
func (c *KeyCell) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		c.Span = 1
		c.Value = nil
		if label != "" {
			c.Value = &label
		}
		return nil
	}

	type plain KeyCell
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Span < 1 {
		p.Span = 1
	}
	*c = KeyCell(p)
	return nil
}
