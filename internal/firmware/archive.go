package firmware

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/roach88/keygrid/internal/keycode"
	"github.com/roach88/keygrid/internal/layout"
)

var (
	// ErrEntryExists is returned when two artifacts resolve to the same
	// archive path.
	ErrEntryExists = errors.New("archive entry already exists")

	// ErrInvalidKeyboard is returned for keyboard identifiers that would
	// escape the archive root.
	ErrInvalidKeyboard = errors.New("invalid keyboard identifier")
)

// PackageError reports a failed export step. Export did not complete
// when a PackageError is returned.
type PackageError struct {
	Op   string
	Path string
	Err  error
}

func (e *PackageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("package %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("package %s: %v", e.Op, e.Err)
}

func (e *PackageError) Unwrap() error {
	return e.Err
}

// WriteArchive writes artifacts to w as a deflated zip. Each file is
// preceded by entries for any of its parent directories not yet written.
// Entries are written in order with zero modification times so identical
// inputs produce identical bytes.
func WriteArchive(w io.Writer, artifacts []Artifact) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]bool, len(artifacts))
	dirs := make(map[string]bool)

	for _, a := range artifacts {
		if seen[a.Path] {
			zw.Close()
			return &PackageError{Op: "create entry", Path: a.Path, Err: ErrEntryExists}
		}
		seen[a.Path] = true

		for _, dir := range parentDirs(a.Path) {
			if dirs[dir] {
				continue
			}
			dirs[dir] = true
			if _, err := zw.CreateHeader(&zip.FileHeader{Name: dir, Method: zip.Store}); err != nil {
				zw.Close()
				return &PackageError{Op: "create directory", Path: dir, Err: err}
			}
		}

		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:   a.Path,
			Method: zip.Deflate,
		})
		if err != nil {
			zw.Close()
			return &PackageError{Op: "create entry", Path: a.Path, Err: err}
		}
		if _, err := f.Write(a.Data); err != nil {
			zw.Close()
			return &PackageError{Op: "write entry", Path: a.Path, Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return &PackageError{Op: "finalize archive", Err: err}
	}
	return nil
}

// parentDirs returns the directory entry names above p, outermost first,
// each with a trailing slash.
func parentDirs(p string) []string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return nil
	}
	parts := strings.Split(dir, "/")
	out := make([]string, len(parts))
	for i := range parts {
		out[i] = strings.Join(parts[:i+1], "/") + "/"
	}
	return out
}

// Build generates every artifact for l and writes the archive to w.
func Build(w io.Writer, l *layout.Layout, keyboard string, p keycode.Platform) error {
	artifacts, err := Artifacts(l, keyboard, p)
	if err != nil {
		return err
	}
	return WriteArchive(w, artifacts)
}
