package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanTiming(row pgx.Row) (*Timing, error) {
	var t Timing
	var day int16
	var start, end *int16

	err := row.Scan(
		&t.ID,
		&t.ProviderID,
		&day,
		&start,
		&end,
		&t.Fee,
		&t.IsAvailable,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTimingNotFound
		}
		return nil, err
	}

	t.Day = Weekday(day)
	if start != nil {
		v := TimeOfDay(*start)
		t.Start = &v
	}
	if end != nil {
		v := TimeOfDay(*end)
		t.End = &v
	}
	return &t, nil
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	var start, end int16

	err := row.Scan(
		&s.ID,
		&s.TimingID,
		&start,
		&end,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	s.Start = TimeOfDay(start)
	s.End = TimeOfDay(end)
	return &s, nil
}

// Interface methods

func (r *PgRepository) ListTimings(ctx context.Context, providerID uuid.UUID) ([]Timing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, provider_id, day_of_week, start_minute, end_minute, fee, is_available, created_at, updated_at
		FROM timings
		WHERE provider_id = $1
		ORDER BY day_of_week
	`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Timing
	for rows.Next() {
		t, err := scanTiming(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateDefaultTimings(ctx context.Context, providerID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for day := 0; day < NumWeekdays; day++ {
		_, err := tx.Exec(ctx, `
			INSERT INTO timings (id, provider_id, day_of_week, is_available, created_at, updated_at)
			VALUES ($1, $2, $3, false, now(), now())
			ON CONFLICT (provider_id, day_of_week) DO NOTHING
		`, uuid.New(), providerID, day)
		if err != nil {
			return fmt.Errorf("insert default timing day=%d: %w", day, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) GetTimingByID(ctx context.Context, id uuid.UUID) (*Timing, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, provider_id, day_of_week, start_minute, end_minute, fee, is_available, created_at, updated_at
		FROM timings
		WHERE id = $1
	`, id)
	return scanTiming(row)
}

func (r *PgRepository) EnableTiming(ctx context.Context, providerID uuid.UUID, day Weekday, start, end TimeOfDay, fee float64) (*Timing, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE timings
		SET is_available = true,
		    start_minute = $3,
		    end_minute = $4,
		    fee = $5,
		    updated_at = now()
		WHERE provider_id = $1
		  AND day_of_week = $2
		RETURNING id, provider_id, day_of_week, start_minute, end_minute, fee, is_available, created_at, updated_at
	`, providerID, int16(day), int16(start), int16(end), fee)
	return scanTiming(row)
}

func (r *PgRepository) DisableTiming(ctx context.Context, providerID uuid.UUID, day Weekday) (*Timing, error) {
	// Only the flag changes; the stored window survives a later re-enable.
	row := r.pool.QueryRow(ctx, `
		UPDATE timings
		SET is_available = false,
		    updated_at = now()
		WHERE provider_id = $1
		  AND day_of_week = $2
		RETURNING id, provider_id, day_of_week, start_minute, end_minute, fee, is_available, created_at, updated_at
	`, providerID, int16(day))
	return scanTiming(row)
}

func (r *PgRepository) InsertSlots(ctx context.Context, timingID uuid.UUID, windows []Window) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var created int64
	for _, w := range windows {
		tag, err := tx.Exec(ctx, `
			INSERT INTO slots (id, timing_id, start_minute, end_minute, created_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (timing_id, start_minute, end_minute) DO NOTHING
		`, uuid.New(), timingID, int16(w.Start), int16(w.End))
		if err != nil {
			return 0, fmt.Errorf("insert slot %s-%s: %w", w.Start, w.End, err)
		}
		created += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return created, nil
}

func (r *PgRepository) ListSlots(ctx context.Context, timingID uuid.UUID) ([]Slot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, timing_id, start_minute, end_minute, created_at
		FROM slots
		WHERE timing_id = $1
		ORDER BY start_minute
	`, timingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListSlotAvailability(ctx context.Context, timingID uuid.UUID, date time.Time) ([]SlotAvailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.timing_id, s.start_minute, s.end_minute, s.created_at,
		       NOT EXISTS (
		           SELECT 1
		           FROM appointments a
		           WHERE a.slot_id = s.id
		             AND a.visit_date = $2
		             AND a.status IN ('scheduled', 'accepted', 'in_progress')
		       ) AS is_available
		FROM slots s
		WHERE s.timing_id = $1
		ORDER BY s.start_minute
	`, timingID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SlotAvailability
	for rows.Next() {
		var sa SlotAvailability
		var start, end int16

		err := rows.Scan(
			&sa.ID,
			&sa.TimingID,
			&start,
			&end,
			&sa.CreatedAt,
			&sa.IsAvailable,
		)
		if err != nil {
			return nil, err
		}

		sa.Start = TimeOfDay(start)
		sa.End = TimeOfDay(end)
		result = append(result, sa)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) DeleteSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM slots
		WHERE id = $1
		RETURNING id, timing_id, start_minute, end_minute, created_at
	`, id)
	return scanSlot(row)
}
