package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/internal/config"
	"github.com/andrei-iacobb/neatplan-sub001/internal/handlers"
	"github.com/andrei-iacobb/neatplan-sub001/internal/middleware"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/andrei-iacobb/neatplan-sub001/internal/notify"
	"github.com/andrei-iacobb/neatplan-sub001/internal/repo"
	"github.com/andrei-iacobb/neatplan-sub001/internal/scheduler"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// services holds what the router shares with background jobs.
type services struct {
	sweeper     *scheduler.Sweeper
	authLimiter *middleware.IPRateLimiter
}

func newServices(db *sql.DB, cfg config.Config) services {
	return services{
		sweeper: &scheduler.Sweeper{
			Stores: []scheduler.AssignmentStore{
				repo.NewRoomScheduleRepo(db),
				repo.NewEquipmentScheduleRepo(db),
			},
			Notifier: notify.New(cfg.SMTP()),
		},
		authLimiter: middleware.AuthRateLimiter(),
	}
}

// newRouter builds the full API with fresh services.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	return routes(db, cfg, newServices(db, cfg))
}

func routes(db *sql.DB, cfg config.Config, svc services) http.Handler {
	// ==========================
	// Repositories
	// ==========================
	userRepo := repo.NewUserRepo(db)
	auditRepo := repo.NewAuditRepo(db)
	scheduleRepo := repo.NewScheduleRepo(db)
	logRepo := repo.NewCompletionLogRepo(db)

	// ==========================
	// Handlers
	// ==========================
	authHandler := &handlers.AuthHandler{
		UserRepo: userRepo,
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: time.Duration(cfg.JWTExpireHours) * time.Hour,
	}
	userHandler := &handlers.UserHandler{Repo: userRepo, AuditRepo: auditRepo}
	roomHandler := &handlers.RoomHandler{Repo: repo.NewRoomRepo(db), AuditRepo: auditRepo}
	equipmentHandler := &handlers.EquipmentHandler{Repo: repo.NewEquipmentRepo(db), AuditRepo: auditRepo}
	scheduleHandler := &handlers.ScheduleHandler{Repo: scheduleRepo, AuditRepo: auditRepo}
	roomSchedules := &handlers.AssignmentHandler{
		Repo:      repo.NewRoomScheduleRepo(db),
		Schedules: scheduleRepo,
		Logs:      logRepo,
		AuditRepo: auditRepo,
	}
	equipmentSchedules := &handlers.AssignmentHandler{
		Repo:      repo.NewEquipmentScheduleRepo(db),
		Schedules: scheduleRepo,
		Logs:      logRepo,
		AuditRepo: auditRepo,
	}
	activityHandler := &handlers.ActivityHandler{Logs: logRepo}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}
	sweepHandler := &handlers.SweepHandler{Sweeper: svc.sweeper}
	frequencyHandler := &handlers.FrequencyHandler{}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	// ==========================
	// Public
	// ==========================
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Use(svc.authLimiter.Middleware)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// ==========================
	// Authenticated
	// ==========================
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))
		admin := middleware.RequireRole(models.RoleAdmin)

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", roomHandler.ListRooms)
			r.Get("/{id}", roomHandler.GetRoom)
			r.With(admin).Post("/", roomHandler.CreateRoom)
			r.With(admin).Put("/{id}", roomHandler.UpdateRoom)
			r.With(admin).Delete("/{id}", roomHandler.DeleteRoom)
		})
		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", equipmentHandler.ListEquipment)
			r.Get("/{id}", equipmentHandler.GetEquipment)
			r.With(admin).Post("/", equipmentHandler.CreateEquipment)
			r.With(admin).Put("/{id}", equipmentHandler.UpdateEquipment)
			r.With(admin).Delete("/{id}", equipmentHandler.DeleteEquipment)
		})
		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", scheduleHandler.ListSchedules)
			r.Get("/{id}", scheduleHandler.GetSchedule)
			r.With(admin).Post("/", scheduleHandler.CreateSchedule)
			r.With(admin).Put("/{id}", scheduleHandler.UpdateSchedule)
			r.With(admin).Delete("/{id}", scheduleHandler.DeleteSchedule)
			r.With(admin).Post("/{id}/tasks", scheduleHandler.AddTask)
			r.With(admin).Delete("/{id}/tasks/{taskID}", scheduleHandler.RemoveTask)
		})
		r.Route("/room-schedules", assignmentRoutes(roomSchedules, admin))
		r.Route("/equipment-schedules", assignmentRoutes(equipmentSchedules, admin))

		r.Get("/activity", activityHandler.ListActivity)
		r.Post("/frequency/suggest", frequencyHandler.SuggestFrequency)

		// ==========================
		// Admin only
		// ==========================
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/admin/sweep", sweepHandler.RunSweep)
			r.Get("/audit", auditHandler.ListAudit)
			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)
				r.Get("/{id}", userHandler.GetUser)
				r.Put("/{id}", userHandler.UpdateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})
		})
	})

	return r
}

// assignmentRoutes mounts one subject kind's schedule assignments. Reading and
// completing is open to every role; changing assignments is admin only.
func assignmentRoutes(h *handlers.AssignmentHandler, admin func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.ListAssignments)
		r.Get("/{id}", h.GetAssignment)
		r.Post("/{id}/complete", h.CompleteAssignment)
		r.With(admin).Post("/", h.CreateAssignment)
		r.With(admin).Put("/{id}", h.UpdateAssignment)
		r.With(admin).Delete("/{id}", h.DeleteAssignment)
	}
}
