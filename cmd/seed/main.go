package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medisched/clinic-booking/internal/db"
	"github.com/medisched/clinic-booking/internal/logging"
	"github.com/medisched/clinic-booking/internal/schedule"
)

func main() {
	log := logging.New(os.Getenv("APP_ENV"), "info")
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	gofakeit.Seed(time.Now().UnixNano())

	doctorIDs, err := seedDoctors(context.Background(), pool, 25)
	if err != nil {
		log.Fatal().Err(err).Msg("seed doctors")
	}
	log.Info().Int("count", len(doctorIDs)).Msg("doctors seeded")

	if err := seedPatients(context.Background(), pool, 500); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	log.Info().Msg("patients seeded")

	// Weekday timings and slots go through the real schedule service so the
	// seeded data obeys the same rules as production writes.
	svc := schedule.NewService(schedule.NewPgRepository(pool), log)
	if err := seedSchedules(context.Background(), svc, doctorIDs); err != nil {
		log.Fatal().Err(err).Msg("seed schedules")
	}
	log.Info().Msg("schedules seeded")

	log.Info().Msg("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, spec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	const batchSize = 100

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, uuid.New(), gofakeit.Name(), gofakeit.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	return nil
}

func seedSchedules(ctx context.Context, svc *schedule.Service, doctorIDs []uuid.UUID) error {
	workdays := []schedule.Weekday{
		schedule.Monday,
		schedule.Tuesday,
		schedule.Wednesday,
		schedule.Thursday,
		schedule.Friday,
	}

	start, _ := schedule.ParseTimeOfDay("09:00")
	end, _ := schedule.ParseTimeOfDay("17:00")

	for _, doctorID := range doctorIDs {
		timings, err := svc.GetTimings(ctx, doctorID)
		if err != nil {
			return err
		}

		fee := gofakeit.Price(20, 150)
		for _, day := range workdays {
			_, err := svc.UpdateTiming(ctx, doctorID, day, schedule.TimingUpdate{
				Start:       &start,
				End:         &end,
				Fee:         &fee,
				IsAvailable: true,
			})
			if err != nil {
				return err
			}
		}

		// Regenerated timings carry ids; expand each enabled day into
		// half-hour slots.
		timings, err = svc.GetTimings(ctx, doctorID)
		if err != nil {
			return err
		}
		for _, t := range timings {
			if !t.IsAvailable || t.Start == nil || t.End == nil {
				continue
			}
			if _, err := svc.GenerateSlots(ctx, t.ID, *t.Start, *t.End, 30); err != nil {
				return err
			}
		}
	}

	return nil
}
