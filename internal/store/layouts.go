package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/keygrid/internal/codec"
	"github.com/roach88/keygrid/internal/layout"
)

var (
	// ErrNotFound is returned for unknown layout names and revision IDs.
	ErrNotFound = errors.New("not found")

	// ErrInvalidName is returned for an empty layout name.
	ErrInvalidName = errors.New("layout name must not be empty")
)

// Revision describes one saved version of a layout.
type Revision struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Seq         int64     `json:"seq"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary describes a layout name and its latest revision.
type Summary struct {
	Name      string   `json:"name"`
	Revisions int64    `json:"revisions"`
	Latest    Revision `json:"latest"`
}

// SaveLayout appends l as the newest revision of name. If the latest
// revision already holds identical content (same fingerprint, so
// layout.Equal, labels compared in NFC), it is returned with
// inserted=false and nothing is written.
//
// Layouts that violate the shape invariants are refused.
func (s *Store) SaveLayout(ctx context.Context, name string, l *layout.Layout) (Revision, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Revision{}, false, ErrInvalidName
	}
	if l == nil {
		return Revision{}, false, fmt.Errorf("save layout %q: nil layout", name)
	}
	if err := l.Rectangular(); err != nil {
		return Revision{}, false, fmt.Errorf("save layout %q: %w", name, err)
	}

	fp, err := l.Fingerprint()
	if err != nil {
		return Revision{}, false, fmt.Errorf("save layout %q: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, false, fmt.Errorf("save layout %q: begin: %w", name, err)
	}
	defer tx.Rollback()

	latest, err := latestRevision(ctx, tx, name)
	switch {
	case err == nil && latest.Fingerprint == fp:
		s.logger.Debug("layout unchanged", "name", name, "revision", latest.ID, "seq", latest.Seq)
		return latest, false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return Revision{}, false, fmt.Errorf("save layout %q: %w", name, err)
	}

	now := s.now().UTC()
	doc, err := codec.Serialize(l, codec.Metadata{LastModified: now})
	if err != nil {
		return Revision{}, false, fmt.Errorf("save layout %q: %w", name, err)
	}

	rev := Revision{
		ID:          s.ids.Generate(),
		Name:        name,
		Seq:         latest.Seq + 1,
		Fingerprint: fp,
		CreatedAt:   now,
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO layouts (name, created_at)
		VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, formatTime(now)); err != nil {
		return Revision{}, false, fmt.Errorf("save layout %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (id, layout_name, seq, fingerprint, document, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rev.ID, rev.Name, rev.Seq, rev.Fingerprint, string(doc), formatTime(now)); err != nil {
		return Revision{}, false, fmt.Errorf("save layout %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return Revision{}, false, fmt.Errorf("save layout %q: commit: %w", name, err)
	}

	s.logger.Info("layout saved", "name", name, "revision", rev.ID, "seq", rev.Seq)
	return rev, true, nil
}

// LoadLayout returns the latest revision of name.
func (s *Store) LoadLayout(ctx context.Context, name string) (*layout.Layout, Revision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, layout_name, seq, fingerprint, created_at, document
		FROM revisions
		WHERE layout_name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, strings.TrimSpace(name))
	return s.scanDocument(row, "layout "+name)
}

// LoadRevision returns the revision with the given ID.
func (s *Store) LoadRevision(ctx context.Context, id string) (*layout.Layout, Revision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, layout_name, seq, fingerprint, created_at, document
		FROM revisions
		WHERE id = ?
	`, id)
	return s.scanDocument(row, "revision "+id)
}

// ListLayouts returns every layout name with its latest revision,
// ordered by name.
func (s *Store) ListLayouts(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.layout_name, r.seq, r.fingerprint, r.created_at, c.n
		FROM revisions r
		JOIN (
			SELECT layout_name, MAX(seq) AS max_seq, COUNT(*) AS n
			FROM revisions
			GROUP BY layout_name
		) c ON c.layout_name = r.layout_name AND c.max_seq = r.seq
		ORDER BY r.layout_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			created string
		)
		if err := rows.Scan(&sum.Latest.ID, &sum.Latest.Name, &sum.Latest.Seq, &sum.Latest.Fingerprint, &created, &sum.Revisions); err != nil {
			return nil, fmt.Errorf("scan layout: %w", err)
		}
		if sum.Latest.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("scan layout: %w", err)
		}
		sum.Name = sum.Latest.Name
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate layouts: %w", err)
	}
	return summaries, nil
}

// History returns every revision of name, oldest first.
func (s *Store) History(ctx context.Context, name string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, layout_name, seq, fingerprint, created_at
		FROM revisions
		WHERE layout_name = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("history %q: %w", name, err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	if len(revs) == 0 {
		return nil, fmt.Errorf("history %q: %w", name, ErrNotFound)
	}
	return revs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func latestRevision(ctx context.Context, q queryRower, name string) (Revision, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, layout_name, seq, fingerprint, created_at
		FROM revisions
		WHERE layout_name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name)
	rev, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, ErrNotFound
	}
	return rev, err
}

func scanRevision(row scanner) (Revision, error) {
	var (
		rev     Revision
		created string
	)
	if err := row.Scan(&rev.ID, &rev.Name, &rev.Seq, &rev.Fingerprint, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Revision{}, err
		}
		return Revision{}, fmt.Errorf("scan revision: %w", err)
	}
	ts, err := parseTime(created)
	if err != nil {
		return Revision{}, fmt.Errorf("scan revision: %w", err)
	}
	rev.CreatedAt = ts
	return rev, nil
}

// scanDocument reads a revision row with its document and decodes the
// layout leniently. A document that fails to decode yields the default
// layout and a warning.
func (s *Store) scanDocument(row *sql.Row, what string) (*layout.Layout, Revision, error) {
	var (
		rev     Revision
		created string
		doc     string
	)
	if err := row.Scan(&rev.ID, &rev.Name, &rev.Seq, &rev.Fingerprint, &created, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, Revision{}, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, Revision{}, fmt.Errorf("load %s: %w", what, err)
	}
	ts, err := parseTime(created)
	if err != nil {
		return nil, Revision{}, fmt.Errorf("load %s: %w", what, err)
	}
	rev.CreatedAt = ts

	l, res := codec.Decode([]byte(doc))
	if res.Fallback {
		s.logger.Warn("stored document unreadable, using default layout",
			"name", rev.Name, "revision", rev.ID, "reason", res.Reason)
	}
	return l, rev, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
