package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/healthcare-portal/internal/logger"
)

// SimConfig drives a booking contention run: every round picks one open slot
// and has Contenders patients try to book it at the same moment.
type SimConfig struct {
	APIBaseURL  string
	Patients    int
	Contenders  int
	Rounds      int
	Password    string
	EmailFormat string
	DaysAhead   int
}

// OperationMetrics tracks outcomes and latencies for booking requests.
type OperationMetrics struct {
	Total       int64
	Booked      int64
	Unavailable int64
	Conflict    int64
	Error       int64

	mu        sync.Mutex
	Latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch status {
	case http.StatusCreated:
		atomic.AddInt64(&om.Booked, 1)
	case http.StatusBadRequest:
		atomic.AddInt64(&om.Unavailable, 1)
	case http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, lo, hi, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	n := len(latencies)
	return sum / time.Duration(n), latencies[0], latencies[n-1], latencies[n*50/100], latencies[min(n*95/100, n-1)]
}

type patient struct {
	email string
	token string
}

type providerRef struct {
	ID         int64 `json:"id"`
	Facilities []struct {
		ID int64 `json:"id"`
	} `json:"facilities"`
}

type providerResponse struct {
	Provider providerRef `json:"provider"`
}

type slot struct {
	providerID int64
	facilityID int64
	date       string
	time       string
}

type Simulator struct {
	config   SimConfig
	client   *resty.Client
	log      zerolog.Logger
	patients []patient
	booking  OperationMetrics

	// rounds where more than one booking succeeded
	doubleBooked int64
}

func main() {
	_ = godotenv.Load()

	cfg := SimConfig{}
	flag.StringVar(&cfg.APIBaseURL, "url", envOr("SIM_API_BASE_URL", "http://localhost:5000"), "API base URL")
	flag.IntVar(&cfg.Patients, "patients", 50, "patients to log in")
	flag.IntVar(&cfg.Contenders, "contenders", 10, "patients racing for each slot")
	flag.IntVar(&cfg.Rounds, "rounds", 20, "slots to race for")
	flag.StringVar(&cfg.Password, "password", "password123", "patient password")
	flag.StringVar(&cfg.EmailFormat, "email-format", "patient%d@example.com", "patient email pattern")
	flag.IntVar(&cfg.DaysAhead, "days", 14, "days ahead to search for open slots")
	flag.Parse()

	log := logger.New(os.Getenv("LOG_LEVEL"), "console", "simulate")

	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := &Simulator{
		config: cfg,
		log:    log,
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")+"/api").
			SetTimeout(10*time.Second).
			SetRetryCount(5).
			SetRetryWaitTime(500*time.Millisecond).
			SetRetryMaxWaitTime(5*time.Second).
			AddRetryCondition(func(r *resty.Response, _ error) bool {
				return r != nil && r.StatusCode() == http.StatusTooManyRequests
			}).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}

	if err := sim.login(ctx); err != nil {
		log.Fatal().Err(err).Msg("login patients")
	}
	log.Info().Int("patients", len(sim.patients)).Msg("patients ready")

	slots, err := sim.findSlots(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("find slots")
	}
	log.Info().Int("slots", len(slots)).Msg("open slots found")

	sim.Run(ctx, slots)
	sim.PrintReport()
}

func validateConfig(cfg SimConfig) error {
	if cfg.APIBaseURL == "" {
		return errors.New("url is required")
	}
	if cfg.Patients <= 0 || cfg.Contenders <= 0 || cfg.Rounds <= 0 {
		return errors.New("patients, contenders and rounds must be > 0")
	}
	if cfg.Contenders > cfg.Patients {
		return fmt.Errorf("contenders (%d) cannot exceed patients (%d)", cfg.Contenders, cfg.Patients)
	}
	return nil
}

// login signs in seeded patients one at a time; the auth routes are rate
// limited and 429s are retried by the client.
func (s *Simulator) login(ctx context.Context) error {
	for i := 1; i <= s.config.Patients; i++ {
		email := fmt.Sprintf(s.config.EmailFormat, i)

		var out struct {
			Token string `json:"token"`
		}
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(map[string]string{"email": email, "password": s.config.Password}).
			SetResult(&out).
			Post("/auth/login")
		if err != nil {
			return fmt.Errorf("login %s: %w", email, err)
		}
		if resp.StatusCode() != http.StatusOK || out.Token == "" {
			s.log.Warn().Str("email", email).Int("status", resp.StatusCode()).Msg("login rejected, skipping")
			continue
		}
		s.patients = append(s.patients, patient{email: email, token: out.Token})
	}

	if len(s.patients) < s.config.Contenders {
		return fmt.Errorf("only %d patients logged in, need %d", len(s.patients), s.config.Contenders)
	}
	return nil
}

func (s *Simulator) findSlots(ctx context.Context) ([]slot, error) {
	var list struct {
		Providers []providerRef `json:"providers"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.patients[0].token).
		SetResult(&list).
		Get("/providers")
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list providers: status %d", resp.StatusCode())
	}

	var out []slot
	today := time.Now()
	for _, p := range list.Providers {
		if len(out) >= s.config.Rounds {
			break
		}
		facilityID, err := s.providerFacility(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if facilityID == 0 {
			continue
		}
		for d := 1; d <= s.config.DaysAhead && len(out) < s.config.Rounds; d++ {
			date := today.AddDate(0, 0, d).Format(time.DateOnly)

			var avail struct {
				Slots []string `json:"slots"`
			}
			resp, err := s.client.R().
				SetContext(ctx).
				SetQueryParam("provider_id", fmt.Sprint(p.ID)).
				SetQueryParam("date", date).
				SetResult(&avail).
				Get("/appointments/slots")
			if err != nil {
				return nil, fmt.Errorf("slots for provider %d: %w", p.ID, err)
			}
			if resp.IsError() || len(avail.Slots) == 0 {
				continue
			}
			out = append(out, slot{
				providerID: p.ID,
				facilityID: facilityID,
				date:       date,
				time:       avail.Slots[rand.IntN(len(avail.Slots))],
			})
		}
	}

	if len(out) == 0 {
		return nil, errors.New("no open slots")
	}
	return out, nil
}

// providerFacility returns the first facility the provider practises at, or 0.
func (s *Simulator) providerFacility(ctx context.Context, providerID int64) (int64, error) {
	var out providerResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.patients[0].token).
		SetPathParam("id", fmt.Sprint(providerID)).
		SetResult(&out).
		Get("/providers/{id}")
	if err != nil {
		return 0, fmt.Errorf("get provider %d: %w", providerID, err)
	}
	if resp.IsError() || len(out.Provider.Facilities) == 0 {
		return 0, nil
	}
	return out.Provider.Facilities[0].ID, nil
}

// Run plays one round per slot. Contenders are released together so their
// booking requests overlap as closely as possible.
func (s *Simulator) Run(ctx context.Context, slots []slot) {
	s.log.Info().Int("rounds", len(slots)).Int("contenders", s.config.Contenders).Msg("starting simulation")

	for i, sl := range slots {
		if ctx.Err() != nil {
			return
		}

		start := make(chan struct{})
		var booked int64

		g, gctx := errgroup.WithContext(ctx)
		for _, p := range pick(s.patients, s.config.Contenders) {
			g.Go(func() error {
				<-start
				if s.book(gctx, p, sl) == http.StatusCreated {
					atomic.AddInt64(&booked, 1)
				}
				return nil
			})
		}
		close(start)
		_ = g.Wait()

		if booked > 1 {
			atomic.AddInt64(&s.doubleBooked, 1)
		}
		s.log.Info().
			Int("round", i+1).
			Int64("provider_id", sl.providerID).
			Str("date", sl.date).
			Str("time", sl.time).
			Int64("booked", booked).
			Msg("round complete")
	}
}

func (s *Simulator) book(ctx context.Context, p patient, sl slot) int {
	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(p.token).
		SetBody(map[string]any{
			"provider_id":      sl.providerID,
			"facility_id":      sl.facilityID,
			"appointment_date": sl.date,
			"appointment_time": sl.time,
			"reason":           "Load simulation",
		}).
		Post("/appointments")
	latency := time.Since(start)

	status := 0
	if err != nil {
		s.log.Debug().Err(err).Str("email", p.email).Msg("booking request failed")
	} else {
		status = resp.StatusCode()
	}
	s.booking.Record(latency, status)
	return status
}

func (s *Simulator) PrintReport() {
	om := &s.booking
	total := atomic.LoadInt64(&om.Total)

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("BOOKING CONTENTION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Patients: %d  Contenders per slot: %d\n\n", len(s.patients), s.config.Contenders)

	if total == 0 {
		fmt.Println("no booking attempts")
		return
	}

	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }
	booked := atomic.LoadInt64(&om.Booked)
	unavailable := atomic.LoadInt64(&om.Unavailable)
	conflict := atomic.LoadInt64(&om.Conflict)
	errs := atomic.LoadInt64(&om.Error)

	avg, lo, hi, p50, p95 := om.Stats()

	fmt.Printf("  Attempts:    %d\n", total)
	fmt.Printf("  Booked:      %d (%.1f%%)\n", booked, pct(booked))
	fmt.Printf("  Unavailable: %d (%.1f%%)\n", unavailable, pct(unavailable))
	fmt.Printf("  Lock busy:   %d (%.1f%%)\n", conflict, pct(conflict))
	if errs > 0 {
		fmt.Printf("  Errors:      %d (%.1f%%)\n", errs, pct(errs))
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), lo.Round(time.Millisecond), hi.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Printf("  Double-booked slots: %d\n", atomic.LoadInt64(&s.doubleBooked))
}

func pick(ps []patient, n int) []patient {
	out := make([]patient, n)
	for i, j := range rand.Perm(len(ps))[:n] {
		out[i] = ps[j]
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
