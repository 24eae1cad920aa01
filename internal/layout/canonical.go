package layout

import (
	"bytes"
	"encoding/json"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces a canonical JSON encoding of the layout for
// fingerprinting. Object keys are sorted, strings are NFC normalized and
// HTML characters are not escaped. Skipped cells and unassigned values
// encode as null.
//
// Two layouts that are Equal always produce identical bytes.
func (l *Layout) MarshalCanonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"dimensions":{"columns":`)
	buf.WriteString(strconv.Itoa(l.Dimensions.Columns))
	buf.WriteString(`,"rows":`)
	buf.WriteString(strconv.Itoa(l.Dimensions.Rows))
	buf.WriteString(`},"layers":[`)
	for i, layer := range l.Layers {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for r, row := range layer {
			if r > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('[')
			for c, cell := range row {
				if c > 0 {
					buf.WriteByte(',')
				}
				if err := writeCanonicalCell(&buf, cell); err != nil {
					return nil, err
				}
			}
			buf.WriteByte(']')
		}
		buf.WriteByte(']')
	}
	buf.WriteString(`]}`)
	return buf.Bytes(), nil
}

func writeCanonicalCell(buf *bytes.Buffer, cell *KeyCell) error {
	if cell == nil {
		buf.WriteString("null")
		return nil
	}
	buf.WriteString(`{"span":`)
	buf.WriteString(strconv.Itoa(cell.Span))
	buf.WriteString(`,"value":`)
	if cell.Value == nil {
		buf.WriteString("null")
	} else {
		s, err := marshalCanonicalString(*cell.Value)
		if err != nil {
			return err
		}
		buf.Write(s)
	}
	buf.WriteByte('}')
	return nil
}

// marshalCanonicalString encodes s as a JSON string after NFC
// normalization, without HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	// json.Encoder adds a trailing newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
