package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/vetdesk/clinic-scheduling/internal/db"
	"github.com/vetdesk/clinic-scheduling/internal/interval"
	"github.com/vetdesk/clinic-scheduling/internal/registry"
	"github.com/vetdesk/clinic-scheduling/internal/schedule"
	"github.com/vetdesk/clinic-scheduling/internal/sequence"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	seedCtx := context.Background()

	practitioners, err := seedPractitioners(seedCtx, pool, 12)
	if err != nil {
		log.Fatalf("seed practitioners: %v", err)
	}
	if err := seedSchedules(seedCtx, pool, practitioners); err != nil {
		log.Fatalf("seed schedules: %v", err)
	}
	pets, err := seedOwnersAndPets(seedCtx, pool, 200)
	if err != nil {
		log.Fatalf("seed owners and pets: %v", err)
	}
	if err := seedBoardingStays(seedCtx, pool, pets, 15); err != nil {
		log.Fatalf("seed boarding stays: %v", err)
	}

	log.Println("seed complete")
}

func seedPractitioners(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d practitioners", count)

	specialties := []string{
		"General Practice",
		"Surgery",
		"Dermatology",
		"Dentistry",
		"Cardiology",
		"Exotics",
		"Ophthalmology",
	}

	repo := registry.NewPgRepository(pool)

	var ids []uuid.UUID
	for i := 0; i < count; i++ {
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]
		p, err := repo.CreatePractitioner(ctx, registry.Practitioner{
			Name:      "Dr. " + gofakeit.Name(),
			Specialty: &specialty,
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}

	log.Println("practitioners seeded")
	return ids, nil
}

// seedSchedules puts half the practitioners on the legacy weekly template
// and half on date-ranged periods, mirroring a clinic mid-migration.
func seedSchedules(ctx context.Context, pool *pgxpool.Pool, practitioners []uuid.UUID) error {
	repo := schedule.NewPgRepository(pool)
	logger := zerolog.New(os.Stdout)
	svc := schedule.NewService(repo, logger)

	workStart := interval.MustClock("09:00")
	workEnd := interval.MustClock("17:00")
	lunchStart := interval.MustClock("12:00")
	lunchEnd := interval.MustClock("13:00")

	for i, id := range practitioners {
		if i%2 == 0 {
			for day := time.Monday; day <= time.Friday; day++ {
				if _, err := svc.SetWeeklyEntry(ctx, schedule.WeeklyEntry{
					PractitionerID: id,
					DayOfWeek:      day,
					StartTime:      workStart,
					EndTime:        workEnd,
					IsWorking:      true,
				}); err != nil {
					return err
				}
			}
			day := time.Weekday(gofakeit.Number(1, 5))
			if _, err := svc.AddBreak(ctx, schedule.Break{
				PractitionerID: id,
				StartTime:      lunchStart,
				EndTime:        lunchEnd,
				Description:    "Lunch",
				IsRecurring:    true,
				DayOfWeek:      &day,
			}); err != nil {
				return err
			}
			continue
		}

		today := time.Now()
		if _, err := svc.CreatePeriod(ctx, schedule.SchedulePeriod{
			PractitionerID: id,
			StartDate:      today.AddDate(0, 0, -30),
			EndDate:        today.AddDate(0, 3, 0),
			WorkingDays:    []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			WorkStart:      workStart,
			WorkEnd:        workEnd,
			BreakStart:     &lunchStart,
			BreakEnd:       &lunchEnd,
		}); err != nil {
			return err
		}
	}

	log.Println("schedules seeded")
	return nil
}

func seedOwnersAndPets(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d owners with pets", count)

	codes := sequence.NewGenerator(sequence.NewPgCounterStore(pool))
	svc := registry.NewService(registry.NewPgRepository(pool), codes)

	species := []string{"dog", "cat", "rabbit", "parrot", "ferret"}

	var petIDs []uuid.UUID
	for i := 0; i < count; i++ {
		email := gofakeit.Email()
		phone := gofakeit.Phone()

		owner, err := svc.CreateOwner(ctx, gofakeit.Name(), &email, &phone)
		if err != nil {
			return nil, err
		}

		for p := 0; p < gofakeit.Number(1, 3); p++ {
			breed := gofakeit.Dog()
			pet, err := svc.CreatePet(ctx, owner.ID, gofakeit.PetName(), species[gofakeit.Number(0, len(species)-1)], &breed)
			if err != nil {
				return nil, err
			}
			petIDs = append(petIDs, pet.ID)
		}

		if (i+1)%50 == 0 {
			log.Printf("owners seeded: %d/%d", i+1, count)
		}
	}

	log.Println("owners and pets seeded")
	return petIDs, nil
}

func seedBoardingStays(ctx context.Context, pool *pgxpool.Pool, pets []uuid.UUID, count int) error {
	if len(pets) == 0 {
		return nil
	}
	log.Printf("seeding %d boarding stays", count)

	for i := 0; i < count; i++ {
		petID := pets[gofakeit.Number(0, len(pets)-1)]
		checkIn := time.Now().AddDate(0, 0, -gofakeit.Number(0, 5))
		checkout := time.Now().AddDate(0, 0, gofakeit.Number(0, 7))

		_, err := pool.Exec(ctx, `
			INSERT INTO boarding_stays (id, pet_id, kennel_name, check_in_date, expected_checkout, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, uuid.New(), petID, "K-"+gofakeit.LetterN(2), checkIn, checkout)
		if err != nil {
			return err
		}
	}

	log.Println("boarding stays seeded")
	return nil
}
