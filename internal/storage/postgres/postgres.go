package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inderbu-scheduler/internal/models"

	"github.com/lib/pq"
)

var ErrSchemaMissing = errors.New("reservation_attempts table is missing")

const undefinedTable = "42P01"

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Init creates the journal schema when it does not exist yet.
func (s *Storage) Init(ctx context.Context) error {
	const op = "storage.postgres.Init"

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reservation_attempts (
			id              BIGSERIAL PRIMARY KEY,
			session_id      TEXT        NOT NULL,
			sub_scenario_id BIGINT      NOT NULL,
			hours           INTEGER[]   NOT NULL,
			initial_date    DATE        NOT NULL,
			final_date      DATE,
			weekdays        INTEGER[]   NOT NULL DEFAULT '{}',
			outcome         TEXT        NOT NULL,
			lost_hours      INTEGER[]   NOT NULL DEFAULT '{}',
			message         TEXT        NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS reservation_attempts_session_idx
			ON reservation_attempts (session_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) RecordAttempt(ctx context.Context, a *models.ReservationAttempt) (int64, error) {
	const op = "storage.postgres.RecordAttempt"

	var id int64

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reservation_attempts
			(session_id, sub_scenario_id, hours, initial_date, final_date, weekdays, outcome, lost_hours, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		a.SessionID,
		a.SubScenarioID,
		pq.Array(nonNil(a.Hours)),
		a.InitialDate,
		a.FinalDate,
		pq.Array(nonNil(a.Weekdays)),
		string(a.Outcome),
		pq.Array(nonNil(a.LostHours)),
		a.Message,
	).Scan(&id, &a.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	a.ID = id

	return id, nil
}

func (s *Storage) ListAttempts(ctx context.Context, sessionID string, limit int) ([]*models.ReservationAttempt, error) {
	const op = "storage.postgres.ListAttempts"

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, sub_scenario_id, hours, initial_date, final_date, weekdays, outcome, lost_hours, message, created_at
		FROM reservation_attempts
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	defer rows.Close()

	var attempts []*models.ReservationAttempt

	for rows.Next() {
		var (
			a       models.ReservationAttempt
			outcome string
			final   sql.NullTime
		)

		err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.SubScenarioID,
			pq.Array(&a.Hours),
			&a.InitialDate,
			&final,
			pq.Array(&a.Weekdays),
			&outcome,
			pq.Array(&a.LostHours),
			&a.Message,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		a.Outcome = models.AttemptOutcome(outcome)
		if final.Valid {
			t := final.Time
			a.FinalDate = &t
		}

		attempts = append(attempts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return attempts, nil
}

func mapErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	}

	return err
}

func nonNil(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}

	return v
}
