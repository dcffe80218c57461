// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/kanistone/stonecms/internal/model"
)

const contentColumns = `id, page_name, section_key, language, content, title,
	media_url, section_type, is_published, created_at, updated_at`

func scanContentSection(row interface{ Scan(...any) error }) (model.ContentSection, error) {
	var s model.ContentSection
	err := row.Scan(&s.ID, &s.PageName, &s.SectionKey, &s.Language, &s.Content,
		&s.Title, &s.MediaURL, &s.SectionType, &s.IsPublished,
		&s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListContentSections returns every content row, ordered by page and section.
func (q *Queries) ListContentSections(ctx context.Context) ([]model.ContentSection, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM content_sections
		 ORDER BY page_name, section_key, language`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.ContentSection
	for rows.Next() {
		s, err := scanContentSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// ListContentSectionsByPageParams filters the content listing.
// Empty fields are not applied.
type ListContentSectionsByPageParams struct {
	PageName string
	Language string
}

// ListContentSectionsByPage returns content rows for one page and/or language.
func (q *Queries) ListContentSectionsByPage(ctx context.Context, arg ListContentSectionsByPageParams) ([]model.ContentSection, error) {
	query := `SELECT ` + contentColumns + ` FROM content_sections WHERE 1=1`
	var args []any
	if arg.PageName != "" {
		query += ` AND page_name = ?`
		args = append(args, arg.PageName)
	}
	if arg.Language != "" {
		query += ` AND language = ?`
		args = append(args, arg.Language)
	}
	query += ` ORDER BY page_name, section_key, language`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.ContentSection
	for rows.Next() {
		s, err := scanContentSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// GetContentSectionByID fetches one content row by primary key.
func (q *Queries) GetContentSectionByID(ctx context.Context, id int64) (model.ContentSection, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_sections WHERE id = ?`, id)
	return scanContentSection(row)
}

// GetContentSectionByKey fetches the row for a (page, section, language) triple.
func (q *Queries) GetContentSectionByKey(ctx context.Context, key model.ContentKey) (model.ContentSection, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_sections
		 WHERE page_name = ? AND section_key = ? AND language = ?`,
		key.Page, key.Section, key.Language)
	return scanContentSection(row)
}

// CountContentSectionsByKey returns how many rows exist for a key.
// The unique index keeps this at 0 or 1.
func (q *Queries) CountContentSectionsByKey(ctx context.Context, key model.ContentKey) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM content_sections
		 WHERE page_name = ? AND section_key = ? AND language = ?`,
		key.Page, key.Section, key.Language).Scan(&n)
	return n, err
}

// CreateContentSectionParams holds the fields for CreateContentSection.
type CreateContentSectionParams struct {
	PageName    string
	SectionKey  string
	Language    string
	Content     string
	Title       string
	MediaURL    string
	SectionType string
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateContentSection inserts a new content row and returns it.
// Fails on the unique (page_name, section_key, language) index if the key exists.
func (q *Queries) CreateContentSection(ctx context.Context, arg CreateContentSectionParams) (model.ContentSection, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO content_sections
		 (page_name, section_key, language, content, title, media_url, section_type, is_published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.PageName, arg.SectionKey, arg.Language, arg.Content, arg.Title,
		arg.MediaURL, arg.SectionType, arg.IsPublished, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.ContentSection{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ContentSection{}, err
	}
	return q.GetContentSectionByID(ctx, id)
}

// UpdateContentSectionParams holds the full post-merge field set for
// UpdateContentSection. Handlers merge partial PATCH input into the
// existing row before calling this.
type UpdateContentSectionParams struct {
	Content     string
	Title       string
	MediaURL    string
	SectionType string
	IsPublished bool
	UpdatedAt   time.Time
	ID          int64
}

// UpdateContentSection updates a content row in place and returns it.
func (q *Queries) UpdateContentSection(ctx context.Context, arg UpdateContentSectionParams) (model.ContentSection, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE content_sections
		 SET content = ?, title = ?, media_url = ?, section_type = ?, is_published = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Content, arg.Title, arg.MediaURL, arg.SectionType, arg.IsPublished,
		arg.UpdatedAt, arg.ID)
	if err != nil {
		return model.ContentSection{}, err
	}
	return q.GetContentSectionByID(ctx, arg.ID)
}
