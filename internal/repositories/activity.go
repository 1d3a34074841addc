package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/shared"
)

// ActivityRepository persists [models.Activity] entries.
type ActivityRepository struct {
	db *sql.DB
}

// TaskSummary counts the recorded activity of one task.
type TaskSummary struct {
	Task     string    `json:"task"`
	Count    int       `json:"count"`
	Failures int       `json:"failures"`
	LastSeen time.Time `json:"last_seen"`
}

// NewActivityRepository creates a new [ActivityRepository] with the given database connection
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record inserts a with a generated ID and sequence.
func (r *ActivityRepository) Record(ctx context.Context, a *models.Activity) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(ctx, r.db, "activity")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if a.ID == "" {
		a.ID = shared.GenerateID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.Sequence = sequence

	query := `
		INSERT INTO activity (id, sequence, task, action, message, ok, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query, a.ID, a.Sequence, a.Task, string(a.Action), a.Message, a.OK, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	return nil
}

// Get retrieves an entry by ID.
func (r *ActivityRepository) Get(ctx context.Context, id string) (*models.Activity, error) {
	query := `
		SELECT id, sequence, task, action, message, ok, created_at
		FROM activity
		WHERE id = ?
	`

	a, err := scanActivity(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: activity %s", shared.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	return a, nil
}

// List returns the entries of task, newest first. A non-positive limit returns every entry.
func (r *ActivityRepository) List(ctx context.Context, task string, limit int) ([]*models.Activity, error) {
	query := `
		SELECT id, sequence, task, action, message, ok, created_at
		FROM activity
		WHERE task = ?
		ORDER BY sequence DESC
	`
	args := []any{task}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	entries := []*models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		entries = append(entries, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity: %w", err)
	}

	return entries, nil
}

// Tasks summarizes the recorded activity per task, most recently active first.
func (r *ActivityRepository) Tasks(ctx context.Context) ([]TaskSummary, error) {
	query := `
		SELECT task, COUNT(*), SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), MAX(sequence)
		FROM activity
		GROUP BY task
		ORDER BY MAX(sequence) DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var (
		summaries []TaskSummary
		lastSeq   []int
	)
	for rows.Next() {
		var (
			s   TaskSummary
			seq int
		)
		if err := rows.Scan(&s.Task, &s.Count, &s.Failures, &seq); err != nil {
			return nil, fmt.Errorf("failed to scan task summary: %w", err)
		}
		summaries = append(summaries, s)
		lastSeq = append(lastSeq, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	rows.Close()

	for i, seq := range lastSeq {
		var createdAt time.Time
		err := r.db.QueryRowContext(ctx, "SELECT created_at FROM activity WHERE sequence = ?", seq).Scan(&createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to query last activity: %w", err)
		}
		summaries[i].LastSeen = createdAt
	}

	return summaries, nil
}

// DeleteTask removes every entry of task and returns how many were removed.
func (r *ActivityRepository) DeleteTask(ctx context.Context, task string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM activity WHERE task = ?", task)
	if err != nil {
		return 0, fmt.Errorf("failed to delete activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(s scanner) (*models.Activity, error) {
	var (
		a      models.Activity
		action string
	)
	if err := s.Scan(&a.ID, &a.Sequence, &a.Task, &action, &a.Message, &a.OK, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Action = models.Action(action)
	return &a, nil
}
