package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Analysis is one persisted diagnosis result. Errors are stored as the
// record's JSON to keep the schema stable while the error shape evolves.
type Analysis struct {
	ID             int64
	SessionID      string
	ImageID        string
	SerialNumber   string
	FormID         string
	QuestionID     string
	ImageURL       string
	IsRealPhoto    *bool
	Category       string
	ErrorsJSON     string
	PartCategories string // comma-joined, canonical order
	Narrative      string
	Status         string // "done" or "failed"
	CreatedAt      time.Time
}

// AnalysisRepo persists diagnosis results.
type AnalysisRepo interface {
	Save(ctx context.Context, a Analysis) error
	BySession(ctx context.Context, sessionID string) (*Analysis, error)
	Recent(ctx context.Context, limit int) ([]Analysis, error)
}

type analysisRepo struct {
	db *sql.DB
}

func (r *analysisRepo) Save(ctx context.Context, a Analysis) error {
	var isReal any
	if a.IsRealPhoto != nil {
		isReal = *a.IsRealPhoto
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analyses
			(session_id, image_id, serial_number, form_id, question_id, image_url,
			 is_real_photo, category, errors_json, part_categories, narrative, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.ImageID, a.SerialNumber, a.FormID, a.QuestionID, a.ImageURL,
		isReal, a.Category, a.ErrorsJSON, a.PartCategories, a.Narrative, a.Status,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (r *analysisRepo) BySession(ctx context.Context, sessionID string) (*Analysis, error) {
	row := r.db.QueryRowContext(ctx, selectAnalysis+` WHERE session_id = ? ORDER BY id DESC LIMIT 1`, sessionID)
	a, err := scanAnalysis(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no analysis for session %s", sessionID)
		}
		return nil, err
	}
	return a, nil
}

func (r *analysisRepo) Recent(ctx context.Context, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, selectAnalysis+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

const selectAnalysis = `SELECT id, session_id, image_id,
	COALESCE(serial_number, ''), COALESCE(form_id, ''), COALESCE(question_id, ''),
	COALESCE(image_url, ''), is_real_photo, COALESCE(category, ''),
	COALESCE(errors_json, ''), COALESCE(part_categories, ''), COALESCE(narrative, ''),
	status, created_at
	FROM analyses`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*Analysis, error) {
	var a Analysis
	var isReal sql.NullBool
	if err := row.Scan(&a.ID, &a.SessionID, &a.ImageID,
		&a.SerialNumber, &a.FormID, &a.QuestionID,
		&a.ImageURL, &isReal, &a.Category,
		&a.ErrorsJSON, &a.PartCategories, &a.Narrative,
		&a.Status, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan analysis: %w", err)
	}
	if isReal.Valid {
		b := isReal.Bool
		a.IsRealPhoto = &b
	}
	return &a, nil
}
