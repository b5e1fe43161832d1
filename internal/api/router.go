package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-server/internal/billing"
	"github.com/clinicore/clinic-server/internal/clinic"
	"github.com/clinicore/clinic-server/internal/facility"
	"github.com/clinicore/clinic-server/internal/pharmacy"
	redisclient "github.com/clinicore/clinic-server/internal/redis"
	"github.com/clinicore/clinic-server/internal/staff"
	"github.com/clinicore/clinic-server/internal/timeline"
)

type RouterConfig struct {
	Clinic   *clinic.Service
	Timeline *timeline.Builder
	Pharmacy *pharmacy.Service
	Billing  *billing.Service
	Facility facility.Repository
	Staff    staff.Repository
	Guard    redisclient.Guard
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Env      string
	Version  string
	Log      zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Doctors
	r.Get("/doctors", listDoctorsHandler(cfg.Clinic))
	r.Get("/doctors/{id}/availability", checkAvailabilityHandler(cfg.Clinic))

	// Patients
	r.Post("/patients", createPatientHandler(cfg.Clinic))
	r.Get("/patients", listPatientsHandler(cfg.Clinic))
	r.Get("/patients/{id}", getPatientHandler(cfg.Clinic))
	r.Get("/patients/{id}/timeline", patientTimelineHandler(cfg.Timeline))
	r.Get("/patients/{id}/invoices", listPatientInvoicesHandler(cfg.Billing))

	// Appointments
	r.Post("/appointments", bookAppointmentHandler(cfg.Clinic, cfg.Guard))
	r.Get("/appointments", listAppointmentsHandler(cfg.Clinic))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Clinic))
	r.Post("/appointments/{id}/status", updateAppointmentStatusHandler(cfg.Clinic))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Clinic))
	r.Post("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Clinic))
	r.Post("/appointments/{id}/consultation", recordConsultationHandler(cfg.Clinic))

	// Pharmacy
	r.Post("/prescriptions", createPrescriptionHandler(cfg.Pharmacy))
	r.Get("/prescriptions/{id}", getPrescriptionHandler(cfg.Pharmacy))
	r.Post("/prescriptions/{id}/dispense", dispensePrescriptionHandler(cfg.Pharmacy))
	r.Post("/pharmacy/medications", createMedicationHandler(cfg.Pharmacy))
	r.Post("/pharmacy/stock", receiveStockHandler(cfg.Pharmacy))
	r.Get("/pharmacy/stock", listStockHandler(cfg.Pharmacy))

	// Billing
	r.Post("/invoices", createInvoiceHandler(cfg.Billing))
	r.Get("/invoices/{id}", getInvoiceHandler(cfg.Billing))
	r.Post("/invoices/{id}/issue", invoiceTransitionHandler(func(req *http.Request, id uuid.UUID) (*billing.Invoice, error) {
		return cfg.Billing.Issue(req.Context(), id)
	}))
	r.Post("/invoices/{id}/pay", invoiceTransitionHandler(func(req *http.Request, id uuid.UUID) (*billing.Invoice, error) {
		return cfg.Billing.MarkPaid(req.Context(), id)
	}))
	r.Post("/invoices/{id}/cancel", invoiceTransitionHandler(func(req *http.Request, id uuid.UUID) (*billing.Invoice, error) {
		return cfg.Billing.Cancel(req.Context(), id)
	}))

	// Facility
	r.Post("/facility/floors", createFloorHandler(cfg.Facility))
	r.Get("/facility/floors", listFloorsHandler(cfg.Facility))
	r.Post("/facility/blocs", createBlocHandler(cfg.Facility))
	r.Get("/facility/blocs", listBlocsHandler(cfg.Facility))
	r.Post("/facility/rooms", createRoomHandler(cfg.Facility))
	r.Get("/facility/rooms", listRoomsHandler(cfg.Facility))
	r.Post("/facility/rooms/{id}/occupancy", setRoomOccupancyHandler(cfg.Facility))

	// Staff
	r.Post("/staff", createStaffHandler(cfg.Staff))
	r.Get("/staff", listStaffHandler(cfg.Staff))
	r.Post("/staff/{id}/deactivate", deactivateStaffHandler(cfg.Staff))

	return r
}
