package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vetdesk/clinic-scheduling/internal/config"
	"github.com/vetdesk/clinic-scheduling/internal/db"
)

// The simulator hammers the booking API with concurrent portal and staff
// requests aimed at a deliberately small set of slots, so that most attempts
// race for the same (practitioner, date, start_time) tuple. A healthy run
// shows exactly one success per contested slot and 409s for the rest.

type SimConfig struct {
	APIBaseURL        string
	Duration          time.Duration
	Workers           int
	PortalRatio       float64
	StaffRatio        float64
	ReadRatio         float64
	PractitionerLimit int
	PetLimit          int
	ContestedSlots    int
	PostgresDSN       string
}

type slotTarget struct {
	PractitionerID uuid.UUID
	Date           string
	StartTime      string
}

type DataPool struct {
	Practitioners []uuid.UUID
	Pets          []uuid.UUID
	Targets       []slotTarget

	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RandomAppointment() (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rand.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	PortalBooking OperationMetrics
	StaffBooking  OperationMetrics
	Availability  OperationMetrics
	ReadByID      OperationMetrics
	CheckIn       OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d portal=%.2f staff=%.2f read=%.2f contested=%d",
		cfg.Duration, cfg.Workers, cfg.PortalRatio, cfg.StaffRatio, cfg.ReadRatio, cfg.ContestedSlots)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatalf("load data pool: %v", err)
	}

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	if err := sim.discoverTargets(ctx); err != nil {
		log.Fatalf("discover slot targets: %v", err)
	}

	log.Printf("loaded: %d practitioners, %d pets, %d contested slots",
		len(dataPool.Practitioners), len(dataPool.Pets), len(dataPool.Targets))

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	cfg := SimConfig{
		APIBaseURL:        getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:          getDuration("SIM_DURATION", 30*time.Second),
		Workers:           getInt("SIM_WORKERS", 10),
		PortalRatio:       getFloat("SIM_PORTAL_RATIO", 0.4),
		StaffRatio:        getFloat("SIM_STAFF_RATIO", 0.3),
		ReadRatio:         getFloat("SIM_READ_RATIO", 0.3),
		PractitionerLimit: getInt("SIM_PRACTITIONER_LIMIT", 20),
		PetLimit:          getInt("SIM_PET_LIMIT", 500),
		ContestedSlots:    getInt("SIM_CONTESTED_SLOTS", 8),
		PostgresDSN:       baseCfg.PostgresDSN,
	}

	total := cfg.PortalRatio + cfg.StaffRatio + cfg.ReadRatio
	if total > 0 {
		cfg.PortalRatio /= total
		cfg.StaffRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.ContestedSlots <= 0 {
		return fmt.Errorf("SIM_CONTESTED_SLOTS must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	rows, err := pool.Query(ctx, `
		SELECT id FROM practitioners LIMIT $1
	`, cfg.PractitionerLimit)
	if err != nil {
		return nil, fmt.Errorf("load practitioners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Practitioners = append(dataPool.Practitioners, id)
	}

	rows, err = pool.Query(ctx, `
		SELECT id FROM pets LIMIT $1
	`, cfg.PetLimit)
	if err != nil {
		return nil, fmt.Errorf("load pets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Pets = append(dataPool.Pets, id)
	}

	if len(dataPool.Practitioners) == 0 {
		return nil, fmt.Errorf("no practitioners loaded (run seed first)")
	}
	if len(dataPool.Pets) == 0 {
		return nil, fmt.Errorf("no pets loaded (run seed first)")
	}

	return dataPool, nil
}

// discoverTargets asks the availability endpoint for tomorrow's open slots
// and picks a small contested set. Keeping the set small is the point: it
// maximises collisions on identical (practitioner, date, start_time) tuples.
func (s *Simulator) discoverTargets(ctx context.Context) error {
	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	for _, practID := range s.pool.Practitioners {
		if len(s.pool.Targets) >= s.config.ContestedSlots {
			break
		}

		url := fmt.Sprintf("%s/practitioners/%s/availability?date=%s&duration=30",
			s.config.APIBaseURL, practID.String(), date)
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("availability request: %w", err)
		}

		var availResp struct {
			Slots             []string `json:"slots"`
			UnavailableReason string   `json:"unavailable_reason"`
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			continue
		}
		if err := json.Unmarshal(body, &availResp); err != nil {
			continue
		}
		if availResp.UnavailableReason != "" || len(availResp.Slots) == 0 {
			continue
		}

		// At most two slots per practitioner so the contested set spans
		// several practitioner locks.
		for i, slot := range availResp.Slots {
			if i >= 2 || len(s.pool.Targets) >= s.config.ContestedSlots {
				break
			}
			s.pool.Targets = append(s.pool.Targets, slotTarget{
				PractitionerID: practID,
				Date:           date,
				StartTime:      slot,
			})
		}
	}

	if len(s.pool.Targets) == 0 {
		return fmt.Errorf("no open slots found for %s", date)
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.PortalRatio:
				s.doBooking(ctx, rng, true)
			case r < s.config.PortalRatio+s.config.StaffRatio:
				s.doBooking(ctx, rng, false)
			default:
				switch rng.Intn(3) {
				case 0:
					s.doAvailability(ctx, rng)
				case 1:
					s.doReadByID(ctx, rng)
				case 2:
					s.doCheckIn(ctx, rng)
				}
			}
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand, portal bool) {
	target := s.pool.Targets[rng.Intn(len(s.pool.Targets))]
	petID := s.pool.Pets[rng.Intn(len(s.pool.Pets))]

	start := time.Now()

	reqBody := map[string]any{
		"practitioner_id":  target.PractitionerID.String(),
		"pet_id":           petID.String(),
		"date":             target.Date,
		"time":             target.StartTime,
		"duration_minutes": 30,
		"visit_type":       "consult",
	}
	body, _ := json.Marshal(reqBody)

	path := "/appointments"
	if portal {
		path = "/portal/appointments"
	}
	req, _ := http.NewRequestWithContext(ctx, "POST", s.config.APIBaseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false

	if err == nil {
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			success = true
			var apptResp struct {
				ID uuid.UUID `json:"id"`
			}
			bodyBytes, _ := io.ReadAll(resp.Body)
			if len(bodyBytes) > 0 {
				json.Unmarshal(bodyBytes, &apptResp)
				if apptResp.ID != uuid.Nil {
					s.pool.AddAppointment(apptResp.ID)
				}
			}
		} else if resp.StatusCode == http.StatusConflict {
			conflict = true
		}
	}

	if portal {
		s.metrics.PortalBooking.Record(latency, success, conflict)
	} else {
		s.metrics.StaffBooking.Record(latency, success, conflict)
	}
}

func (s *Simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	target := s.pool.Targets[rng.Intn(len(s.pool.Targets))]

	start := time.Now()

	url := fmt.Sprintf("%s/practitioners/%s/availability?date=%s&duration=30",
		s.config.APIBaseURL, target.PractitionerID.String(), target.Date)
	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Availability.Record(latency, success, false)
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.RandomAppointment()
	if !ok {
		return
	}

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/appointments/%s", s.config.APIBaseURL, apptID.String()), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.ReadByID.Record(latency, success, false)
}

func (s *Simulator) doCheckIn(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.RandomAppointment()
	if !ok {
		return
	}

	start := time.Now()

	body, _ := json.Marshal(map[string]string{"status": "check_in"})
	req, _ := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/appointments/%s/status", s.config.APIBaseURL, apptID.String()),
		bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			success = true
		} else if resp.StatusCode == http.StatusConflict {
			// Already checked in by another worker; expected under contention.
			conflict = true
		}
	}

	s.metrics.CheckIn.Record(latency, success, conflict)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Contested slots: %d\n", len(s.pool.Targets))
	fmt.Println()

	printOperationReport("Portal booking", &s.metrics.PortalBooking)
	printOperationReport("Staff booking", &s.metrics.StaffBooking)
	printOperationReport("Availability", &s.metrics.Availability)
	printOperationReport("Read by ID", &s.metrics.ReadByID)
	printOperationReport("Check-in", &s.metrics.CheckIn)

	portalWins := atomic.LoadInt64(&s.metrics.PortalBooking.Success)
	staffWins := atomic.LoadInt64(&s.metrics.StaffBooking.Success)
	fmt.Printf("Slots won: %d (portal=%d staff=%d) across %d contested slots\n",
		portalWins+staffWins, portalWins, staffWins, len(s.pool.Targets))
	if portalWins+staffWins > int64(len(s.pool.Targets)) {
		fmt.Println("WARNING: more wins than contested slots — possible double booking")
	}
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	errors := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if errors > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errors, float64(errors)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
