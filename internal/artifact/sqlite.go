// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSource reads artifacts from the extractor database's policies
// table. The database is opened read-only.
type SQLiteSource struct {
	Path string
}

const selectPolicies = `SELECT rowid, title, COALESCE(source_path, ''),
	COALESCE(title_variants, ''), COALESCE(issuing_authority, ''),
	COALESCE(status, ''), COALESCE(law_level, ''), COALESCE(doc_no, ''),
	COALESCE(issued_at, ''), COALESCE(effective_at, ''),
	COALESCE(text, ''), COALESCE(breakpoints, '')
	FROM policies ORDER BY rowid`

// Load reads every row of the policies table.
func (s SQLiteSource) Load(ctx context.Context) (LoadResult, error) {
	// mode=ro creates nothing, but sqlite reports a missing file lazily.
	if _, err := os.Stat(s.Path); err != nil {
		return LoadResult{}, fmt.Errorf("opening database: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+s.Path+"?mode=ro&_query_only=true")
	if err != nil {
		return LoadResult{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectPolicies)
	if err != nil {
		return LoadResult{}, fmt.Errorf("querying policies: %w", err)
	}
	defer rows.Close()

	var res LoadResult
	for rows.Next() {
		var (
			rowID                 int64
			title                 sql.NullString
			variants, breakpoints string
			r                     record
		)
		if err := rows.Scan(&rowID, &title, &r.SourcePath, &variants,
			&r.IssuingAuthority, &r.Status, &r.LawLevel, &r.DocNo,
			&r.IssuedAt, &r.EffectiveAt, &r.Text, &breakpoints); err != nil {
			return res, fmt.Errorf("scanning policy row: %w", err)
		}
		r.Title = title.String

		loc := fmt.Sprintf("%s#%d", s.Path, rowID)
		if err := decodeColumn(variants, &r.TitleVariants); err != nil {
			res.Warnings = append(res.Warnings, LoadWarning{Location: loc, Err: fmt.Errorf("title_variants: %w", err)})
			continue
		}
		if err := decodeColumn(breakpoints, &r.Breakpoints); err != nil {
			res.Warnings = append(res.Warnings, LoadWarning{Location: loc, Err: fmt.Errorf("breakpoints: %w", err)})
			continue
		}
		a, err := r.artifact()
		if err != nil {
			res.Warnings = append(res.Warnings, LoadWarning{Location: loc, Err: err})
			continue
		}
		res.Artifacts = append(res.Artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("reading policies: %w", err)
	}
	return res, nil
}

// decodeColumn unmarshals a JSON-encoded column; empty columns are left unset.
func decodeColumn(data string, v any) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}
