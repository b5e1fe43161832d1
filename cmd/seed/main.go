package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinic-server/internal/db"
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

	doctorIDs, err := seedDoctors(seedCtx, pool, 40)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	patientIDs, err := seedPatients(seedCtx, pool, 2000)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	medicationIDs, err := seedMedications(seedCtx, pool, 120)
	if err != nil {
		log.Fatalf("seed medications: %v", err)
	}
	if err := seedStock(seedCtx, pool, medicationIDs); err != nil {
		log.Fatalf("seed stock: %v", err)
	}
	if err := seedAppointments(seedCtx, pool, doctorIDs, patientIDs, 5000); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

var specialties = []string{
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

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, gofakeit.Name(), specialty)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, tx.Commit(ctx)
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		email := gofakeit.Email()
		phone := gofakeit.Phone()
		dob := gofakeit.DateRange(
			time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
		)

		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, name, email, phone, date_of_birth, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, id, gofakeit.Name(), email, phone, dob)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, tx.Commit(ctx)
}

var medicationForms = []string{"tablet", "capsule", "syrup", "injection", "cream"}

func seedMedications(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d medications", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Word()
		strength := fmt.Sprintf("%dmg", gofakeit.Number(1, 100)*10)
		form := medicationForms[gofakeit.Number(0, len(medicationForms)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO medications (id, name, form, strength)
			VALUES ($1, $2, $3, $4)
		`, id, name, form, strength)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, tx.Commit(ctx)
}

func seedStock(ctx context.Context, pool *pgxpool.Pool, medicationIDs []uuid.UUID) error {
	log.Printf("seeding stock batches for %d medications", len(medicationIDs))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for _, medID := range medicationIDs {
		batches := gofakeit.Number(1, 3)
		for i := 0; i < batches; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO stock_batches (id, medication_id, quantity, expires_at, received_at)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.New(), medID,
				gofakeit.Number(0, 500),
				now.AddDate(0, gofakeit.Number(1, 36), 0),
				now.AddDate(0, -gofakeit.Number(0, 12), 0))
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

var slotTimes = []string{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00",
	"11:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00"}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctorIDs, patientIDs []uuid.UUID, count int) error {
	log.Printf("seeding %d appointments", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	today := time.Now().Truncate(24 * time.Hour)
	// Track used doctor/day/time triples so seeded data respects the
	// non-overlap invariant (all slots are 30 minutes).
	used := map[string]bool{}

	inserted := 0
	for inserted < count {
		doctorID := doctorIDs[gofakeit.Number(0, len(doctorIDs)-1)]
		day := today.AddDate(0, 0, gofakeit.Number(-90, 30))
		slot := slotTimes[gofakeit.Number(0, len(slotTimes)-1)]

		key := doctorID.String() + day.Format("2006-01-02") + slot
		if used[key] {
			continue
		}
		used[key] = true

		status := "scheduled"
		diagnosis := ""
		if day.Before(today) {
			switch gofakeit.Number(0, 9) {
			case 0:
				status = "cancelled"
			case 1:
				status = "no_show"
			default:
				status = "completed"
				diagnosis = gofakeit.Sentence(6)
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments
				(id, doctor_id, patient_id, date, time, duration_minutes, status,
				 reason, diagnosis, consultation_notes, reports, prescription_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 30, $6, $7, $8, '', NULL, NULL, now(), now())
		`, uuid.New(), doctorID,
			patientIDs[gofakeit.Number(0, len(patientIDs)-1)],
			day, slot, status, gofakeit.Sentence(4), diagnosis)
		if err != nil {
			return err
		}
		inserted++
	}

	return tx.Commit(ctx)
}
