package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/roach88/keygrid/internal/layout"
)

// CurrentVersion is the only document version Serialize writes and
// Decode accepts.
const CurrentVersion = "1.0"

// Fallback reasons reported in Result.Reason.
const (
	ReasonMalformed     = "malformed document"
	ReasonMissingLayers = "missing layers"
	ReasonVersion       = "unrecognized version"
	ReasonShape         = "invalid shape"
)

// Metadata is the optional header of a persisted layout. The version is
// not part of it: every document is written at CurrentVersion.
type Metadata struct {
	LastModified time.Time
}

// Document is the on-disk form of a layout.
type Document struct {
	Version      string            `json:"version,omitempty"`
	LastModified string            `json:"lastModified,omitempty"`
	Dimensions   layout.Dimensions `json:"dimensions"`
	Layers       []layout.Layer    `json:"layers"`
}

// Result describes how a document was decoded.
type Result struct {
	Fallback     bool
	Reason       string
	Version      string
	LastModified time.Time
}

// Serialize encodes l with metadata m as an indented JSON document.
// The document is stamped with CurrentVersion; a zero LastModified is
// omitted.
func Serialize(l *layout.Layout, m Metadata) ([]byte, error) {
	if l == nil {
		return nil, fmt.Errorf("serialize: nil layout")
	}

	doc := Document{
		Version:    CurrentVersion,
		Dimensions: l.Dimensions,
		Layers:     l.Layers,
	}
	if !m.LastModified.IsZero() {
		doc.LastModified = m.LastModified.UTC().Format(time.RFC3339)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a persisted document. It never fails: on any rejected
// input it returns layout.Default() with Result.Fallback set.
func Decode(data []byte) (*layout.Layout, Result) {
	var doc Document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return fallback(ReasonMalformed + ": " + err.Error())
	}

	res := Result{Version: doc.Version}
	if doc.LastModified != "" {
		if ts, err := time.Parse(time.RFC3339, doc.LastModified); err == nil {
			res.LastModified = ts.UTC()
		}
	}

	if doc.Layers == nil {
		return fallbackWith(res, ReasonMissingLayers)
	}
	if doc.Version != CurrentVersion {
		return fallbackWith(res, fmt.Sprintf("%s %q", ReasonVersion, doc.Version))
	}

	l := &layout.Layout{Dimensions: doc.Dimensions, Layers: doc.Layers}
	if err := l.Rectangular(); err != nil {
		return fallbackWith(res, ReasonShape+": "+err.Error())
	}
	return l, res
}

// Deserialize is Decode without the Result.
func Deserialize(data []byte) *layout.Layout {
	l, _ := Decode(data)
	return l
}

func fallback(reason string) (*layout.Layout, Result) {
	return fallbackWith(Result{}, reason)
}

func fallbackWith(res Result, reason string) (*layout.Layout, Result) {
	res.Fallback = true
	res.Reason = reason
	return layout.Default(), res
}
