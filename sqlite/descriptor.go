package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/adamsdoc"
)

// Compile-time interface verification.
var _ adamsdoc.DescriptorStore = (*DescriptorService)(nil)

// DescriptorService implements adamsdoc.DescriptorStore using SQLite.
type DescriptorService struct {
	db *DB
}

// NewDescriptorService creates a new DescriptorService.
func NewDescriptorService(db *DB) *DescriptorService {
	return &DescriptorService{db: db}
}

// normalizeQuery lowercases a query and collapses its whitespace so that
// equivalent searches share one history.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// SaveDescriptors upserts docs and links them to query in one transaction.
// Known descriptors keep their first-seen time; their fields are refreshed.
func (s *DescriptorService) SaveDescriptors(ctx context.Context, query string, docs []*adamsdoc.Descriptor) error {
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	if len(docs) == 0 {
		return nil
	}

	now := s.db.now().Format(time.RFC3339)
	q := normalizeQuery(query)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range docs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO descriptors (id, title, date_added, document_date, source_url, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				date_added = excluded.date_added,
				document_date = excluded.document_date,
				source_url = excluded.source_url,
				last_seen = excluded.last_seen
		`, d.ID, d.Title, d.DateAdded, d.DocumentDate, d.SourceURL, now, now); err != nil {
			return err
		}

		if q == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO descriptor_queries (query, descriptor_id, found_at)
			VALUES (?, ?, ?)
			ON CONFLICT(query, descriptor_id) DO UPDATE SET found_at = excluded.found_at
		`, q, d.ID, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindDescriptorByID retrieves a descriptor by accession number.
func (s *DescriptorService) FindDescriptorByID(ctx context.Context, id string) (*adamsdoc.Descriptor, error) {
	var d adamsdoc.Descriptor
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, date_added, document_date, source_url
		FROM descriptors
		WHERE id = ?
	`, id).Scan(&d.ID, &d.Title, &d.DateAdded, &d.DocumentDate, &d.SourceURL)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, adamsdoc.Errorf(adamsdoc.ENOTFOUND, "descriptor %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindDescriptors retrieves descriptors matching the filter, most recently
// seen first.
func (s *DescriptorService) FindDescriptors(ctx context.Context, filter adamsdoc.DescriptorFilter) ([]*adamsdoc.Descriptor, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT d.id, d.title, d.date_added, d.document_date, d.source_url FROM descriptors d")
	if filter.Query != nil {
		query.WriteString(" JOIN descriptor_queries q ON q.descriptor_id = d.id AND q.query = ?")
		args = append(args, normalizeQuery(*filter.Query))
	}
	query.WriteString(" WHERE 1=1")

	if filter.Since != nil {
		query.WriteString(" AND d.last_seen >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}

	query.WriteString(" ORDER BY d.last_seen DESC, d.id ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*adamsdoc.Descriptor{}
	for rows.Next() {
		var d adamsdoc.Descriptor
		if err := rows.Scan(&d.ID, &d.Title, &d.DateAdded, &d.DocumentDate, &d.SourceURL); err != nil {
			return nil, err
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}
