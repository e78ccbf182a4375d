package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LLMEvent records one model invocation: what was asked, what came back,
// how long it took and whether it succeeded.
type LLMEvent struct {
	ID           int64
	Provider     string
	Model        string
	Stage        string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
	Timestamp    time.Time
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit int    // max results (0 = 50)
	Stage string // filter by stage label ("" = all)
}

// EventRepo appends and queries LLM request events.
type EventRepo interface {
	AppendLLMEvent(ctx context.Context, e LLMEvent) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)
}

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendLLMEvent(ctx context.Context, e LLMEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO llm_events
			(provider, model, stage, input_tokens, output_tokens, latency_ms, success, error_message, request_body, response_body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Provider, e.Model, e.Stage, e.InputTokens, e.OutputTokens,
		e.LatencyMs, e.Success, e.ErrorMessage, e.RequestBody, e.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("append LLM event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, provider, model, stage, input_tokens, output_tokens,
			latency_ms, success, COALESCE(error_message, ''), created_at
		FROM llm_events`
	args := []any{}
	if opts.Stage != "" {
		query += ` WHERE stage = ?`
		args = append(args, opts.Stage)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		var e LLMEvent
		if err := rows.Scan(&e.ID, &e.Provider, &e.Model, &e.Stage,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
			&e.ErrorMessage, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, provider, model, stage, input_tokens, output_tokens,
			latency_ms, success, COALESCE(error_message, ''),
			COALESCE(request_body, ''), COALESCE(response_body, ''), created_at
		 FROM llm_events WHERE id = ?`, id)

	var e LLMEvent
	if err := row.Scan(&e.ID, &e.Provider, &e.Model, &e.Stage,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody, &e.Timestamp); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("LLM event %d not found", id)
		}
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return &e, nil
}
