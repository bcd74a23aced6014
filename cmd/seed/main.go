package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hackgods/healthcare-portal/internal/auth"
	"github.com/hackgods/healthcare-portal/internal/db"
	"github.com/hackgods/healthcare-portal/internal/logger"
)

const batchSize = 500

var specialties = []string{
	"Family Medicine",
	"Cardiology",
	"Dermatology",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"Obstetrics and Gynecology",
}

var eventTypes = []string{"class", "screening", "webinar"}

var eventTitles = map[string][]string{
	"class":     {"Diabetes Management Class", "Prenatal Yoga", "Healthy Cooking Workshop"},
	"screening": {"Blood Pressure Screening", "Skin Cancer Screening", "Cholesterol Check"},
	"webinar":   {"Sleep Health Webinar", "Heart Health Q&A", "Managing Stress Online"},
}

type counts struct {
	facilities int
	providers  int
	events     int
	patients   int
	vitals     int
	password   string
}

func main() {
	_ = godotenv.Load()

	var c counts
	flag.IntVar(&c.facilities, "facilities", 5, "facilities to create")
	flag.IntVar(&c.providers, "providers", 40, "providers to create")
	flag.IntVar(&c.events, "events", 12, "events to create")
	flag.IntVar(&c.patients, "patients", 1000, "patients to create")
	flag.IntVar(&c.vitals, "vitals", 3, "vitals rows per patient")
	flag.StringVar(&c.password, "password", "password123", "password shared by seeded patients")
	flag.Parse()

	log := logger.New(os.Getenv("LOG_LEVEL"), "console", "seed")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn, 4, 1)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	s := &seeder{pool: pool, log: log, faker: gofakeit.New(uint64(time.Now().UnixNano()))}

	facilityIDs, err := s.seedFacilities(ctx, c.facilities)
	if err != nil {
		log.Fatal().Err(err).Msg("seed facilities")
	}
	if err := s.seedProviders(ctx, c.providers, facilityIDs); err != nil {
		log.Fatal().Err(err).Msg("seed providers")
	}
	if err := s.seedEvents(ctx, c.events); err != nil {
		log.Fatal().Err(err).Msg("seed events")
	}
	if err := s.seedPatients(ctx, c.patients, c.vitals, c.password); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}

	log.Info().Msg("seed complete")
}

type seeder struct {
	pool  *pgxpool.Pool
	log   zerolog.Logger
	faker *gofakeit.Faker
}

func (s *seeder) seedFacilities(ctx context.Context, count int) ([]int64, error) {
	s.log.Info().Int("count", count).Msg("seeding facilities")

	ids := make([]int64, 0, count)
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for i := 0; i < count; i++ {
			addr := s.faker.Address()
			var id int64
			err := tx.QueryRow(ctx, `
				INSERT INTO facilities (name, address, phone, hours)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`,
				fmt.Sprintf("%s Medical Center", addr.City),
				fmt.Sprintf("%s, %s, %s %s", addr.Street, addr.City, addr.State, addr.Zip),
				s.faker.Phone(),
				"Mon-Fri 8:00 AM - 6:00 PM",
			).Scan(&id)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *seeder) seedProviders(ctx context.Context, count int, facilityIDs []int64) error {
	s.log.Info().Int("count", count).Msg("seeding providers")

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for i := 0; i < count; i++ {
			first, last := s.faker.FirstName(), s.faker.LastName()
			specialty := specialties[s.faker.Number(0, len(specialties)-1)]

			var id int64
			err := tx.QueryRow(ctx, `
				INSERT INTO providers (first_name, last_name, specialty, bio, email, phone)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
			`,
				first, last, specialty,
				fmt.Sprintf("Dr. %s %s is a board certified %s specialist.", first, last, specialty),
				fmt.Sprintf("dr.%s.%s@example.com", strings.ToLower(first), strings.ToLower(last)),
				s.faker.Phone(),
			).Scan(&id)
			if err != nil {
				return err
			}

			if len(facilityIDs) == 0 {
				continue
			}
			// one or two facilities per provider
			n := s.faker.Number(1, min(2, len(facilityIDs)))
			start := s.faker.Number(0, len(facilityIDs)-1)
			for j := 0; j < n; j++ {
				fid := facilityIDs[(start+j)%len(facilityIDs)]
				if _, err := tx.Exec(ctx, `
					INSERT INTO provider_facilities (provider_id, facility_id)
					VALUES ($1, $2)
					ON CONFLICT DO NOTHING
				`, id, fid); err != nil {
					return err
				}
			}

			if err := s.seedAvailability(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// seedAvailability opens a morning window on each weekday of the next two weeks.
func (s *seeder) seedAvailability(ctx context.Context, tx pgx.Tx, providerID int64) error {
	today := time.Now().Truncate(24 * time.Hour)
	for d := 1; d <= 14; d++ {
		day := today.AddDate(0, 0, d)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO provider_availability (provider_id, available_date, start_time, end_time)
			VALUES ($1, $2, '09:00:00', '12:00:00')
		`, providerID, day.Format(time.DateOnly)); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) seedEvents(ctx context.Context, count int) error {
	s.log.Info().Int("count", count).Msg("seeding events")

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for i := 0; i < count; i++ {
			kind := eventTypes[i%len(eventTypes)]
			date := s.faker.DateRange(time.Now().AddDate(0, 0, 1), time.Now().AddDate(0, 2, 0))

			var location, link *string
			if kind == "webinar" {
				l := s.faker.URL()
				link = &l
			} else {
				l := s.faker.Street()
				location = &l
			}

			if _, err := tx.Exec(ctx, `
				INSERT INTO events (title, description, event_date, event_time, event_type, location, online_link, capacity)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`,
				fmt.Sprintf("%s %s", eventTitles[kind][s.faker.Number(0, len(eventTitles[kind])-1)], s.faker.City()),
				fmt.Sprintf("Open to all patients. Hosted by %s.", s.faker.Name()),
				date.Format(time.DateOnly),
				fmt.Sprintf("%02d:00:00", s.faker.Number(9, 17)),
				kind, location, link,
				s.faker.Number(10, 60),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *seeder) seedPatients(ctx context.Context, count, vitalsPer int, password string) error {
	s.log.Info().Int("count", count).Msg("seeding patients")

	// bcrypt is slow; every seeded patient shares one hash.
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	for offset := 0; offset < count; offset += batchSize {
		end := min(offset+batchSize, count)

		err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			for i := offset; i < end; i++ {
				first, last := s.faker.FirstName(), s.faker.LastName()
				dob := s.faker.DateRange(time.Now().AddDate(-90, 0, 0), time.Now().AddDate(-18, 0, 0))

				var id int64
				err := tx.QueryRow(ctx, `
					INSERT INTO users (email, password_hash, first_name, last_name, phone, date_of_birth, role)
					VALUES ($1, $2, $3, $4, $5, $6, 'patient')
					ON CONFLICT (email) DO NOTHING
					RETURNING id
				`,
					fmt.Sprintf("patient%d@example.com", i+1),
					hash, first, last, s.faker.Phone(), dob.Format(time.DateOnly),
				).Scan(&id)
				if errors.Is(err, pgx.ErrNoRows) {
					continue
				}
				if err != nil {
					return err
				}

				for v := 0; v < vitalsPer; v++ {
					if _, err := tx.Exec(ctx, `
						INSERT INTO vitals (user_id, blood_pressure, heart_rate, temperature, weight, height, recorded_at)
						VALUES ($1, $2, $3, $4, $5, $6, now() - make_interval(days => $7))
					`,
						id,
						fmt.Sprintf("%d/%d", s.faker.Number(105, 140), s.faker.Number(65, 90)),
						s.faker.Number(55, 100),
						s.faker.Float64Range(97.0, 99.5),
						s.faker.Float64Range(110, 260),
						s.faker.Float64Range(58, 76),
						v*30,
					); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		s.log.Info().Int("done", end).Int("total", count).Msg("patients seeded")
	}
	return nil
}
