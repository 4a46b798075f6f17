package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medisched/clinic-booking/internal/config"
	"github.com/medisched/clinic-booking/internal/db"
	"github.com/medisched/clinic-booking/internal/logging"
)

// simulate drives the booking API two ways: a conflict blast where every
// worker books the same (slot, date) and exactly one success is expected,
// then a randomized load phase across many slots and dates.

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	PatientLimit int
	SlotLimit    int
}

func loadSimConfig() SimConfig {
	sc := SimConfig{
		APIBaseURL:   getenv("SIM_API_URL", "http://127.0.0.1:8080"),
		Duration:     30 * time.Second,
		Workers:      20,
		PatientLimit: 200,
		SlotLimit:    200,
	}
	if v := os.Getenv("SIM_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			sc.Duration = d
		}
	}
	if v := os.Getenv("SIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			sc.Workers = n
		}
	}
	return sc
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type Metrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (m *Metrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&m.Total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&m.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&m.Conflict, 1)
	default:
		atomic.AddInt64(&m.Error, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *Metrics) Percentile(p int) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func main() {
	log := logging.New(os.Getenv("APP_ENV"), "info")
	log.Info().Msg("simulate starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	sim := loadSimConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	patients, err := loadIDs(context.Background(), pool, "SELECT id FROM patients LIMIT $1", sim.PatientLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("load patients")
	}
	slots, err := loadIDs(context.Background(), pool, "SELECT id FROM slots LIMIT $1", sim.SlotLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("load slots")
	}
	if len(patients) == 0 || len(slots) == 0 {
		log.Fatal().Msg("no seeded patients or slots found, run cmd/seed first")
	}

	client := &http.Client{Timeout: 10 * time.Second}

	// Phase 1: every worker fights over the same slot and date.
	blastDate := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	blastSlot := slots[rand.Intn(len(slots))]

	var blast Metrics
	var wg sync.WaitGroup
	for i := 0; i < sim.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			patient := patients[worker%len(patients)]
			book(client, sim.APIBaseURL, blastSlot, patient, blastDate, &blast)
		}(i)
	}
	wg.Wait()

	log.Info().
		Int64("attempts", blast.Total).
		Int64("success", blast.Success).
		Int64("conflict", blast.Conflict).
		Int64("error", blast.Error).
		Msg("conflict blast done (success must be exactly 1)")

	// Phase 2: randomized booking load.
	var load Metrics
	deadline := time.Now().Add(sim.Duration)

	for i := 0; i < sim.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				slot := slots[rand.Intn(len(slots))]
				patient := patients[rand.Intn(len(patients))]
				date := time.Now().AddDate(0, 0, 1+rand.Intn(28)).Format("2006-01-02")
				book(client, sim.APIBaseURL, slot, patient, date, &load)
			}
		}()
	}
	wg.Wait()

	log.Info().
		Int64("attempts", load.Total).
		Int64("success", load.Success).
		Int64("conflict", load.Conflict).
		Int64("error", load.Error).
		Str("p50", load.Percentile(50).String()).
		Str("p95", load.Percentile(95).String()).
		Msg("load phase done")
}

func loadIDs(ctx context.Context, pool *pgxpool.Pool, query string, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func book(client *http.Client, baseURL string, slotID, patientID uuid.UUID, date string, m *Metrics) {
	body, _ := json.Marshal(map[string]string{
		"slot_id":    slotID.String(),
		"patient_id": patientID.String(),
		"date":       date,
	})

	start := time.Now()
	resp, err := client.Post(baseURL+"/appointments", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		m.Record(latency, 0)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	m.Record(latency, resp.StatusCode)
}
