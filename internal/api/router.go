package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vetdesk/clinic-scheduling/internal/availability"
	"github.com/vetdesk/clinic-scheduling/internal/boarding"
	"github.com/vetdesk/clinic-scheduling/internal/booking"
	"github.com/vetdesk/clinic-scheduling/internal/registry"
	"github.com/vetdesk/clinic-scheduling/internal/schedule"
)

type RouterConfig struct {
	Booking      *booking.Service
	Availability *availability.Generator
	Schedule     *schedule.Service
	Registry     *registry.Service
	Boarding     *boarding.Service
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Log          zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Availability (read path, no locks)
	r.Get("/practitioners/{id}/availability", availabilityHandler(cfg.Availability))

	// Booking: the staff entry point and the self-service portal entry
	// point share the handler but not the consistency policy.
	r.Post("/appointments", bookAppointmentHandler(cfg.Booking, booking.ActorStaff))
	r.Post("/portal/appointments", bookAppointmentHandler(cfg.Booking, booking.ActorPortal))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/status", transitionAppointmentHandler(cfg.Booking))

	// Schedule administration
	r.Route("/practitioners/{id}/schedule", func(r chi.Router) {
		r.Get("/weekly", listWeeklyEntriesHandler(cfg.Schedule))
		r.Put("/weekly", setWeeklyEntryHandler(cfg.Schedule))
		r.Post("/breaks", addBreakHandler(cfg.Schedule))
		r.Delete("/breaks/{breakID}", removeBreakHandler(cfg.Schedule))
		r.Post("/days-off", addDayOffHandler(cfg.Schedule))
		r.Delete("/days-off/{dayOffID}", removeDayOffHandler(cfg.Schedule))
		r.Post("/periods", createPeriodHandler(cfg.Schedule))
		r.Put("/periods/{periodID}", updatePeriodHandler(cfg.Schedule))
		r.Delete("/periods/{periodID}", deletePeriodHandler(cfg.Schedule))
	})

	// Registry
	r.Post("/practitioners", createPractitionerHandler(cfg.Registry))
	r.Post("/owners", createOwnerHandler(cfg.Registry))
	r.Post("/pets", createPetHandler(cfg.Registry))

	// Boarding occupancy
	r.Get("/boarding/occupancy", boardingOccupancyHandler(cfg.Boarding))

	return r
}
