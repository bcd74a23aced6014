package api

import (
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/hackgods/healthcare-portal/internal/auth"
)

type RouterConfig struct {
	Users        UserService
	Appointments AppointmentService
	Providers    ProviderService
	Facilities   FacilityService
	Events       EventService
	Vitals       VitalsService
	Dashboard    DashboardService
	Admin        AdminService
	Images       ImageStore

	Tokens      *auth.Tokens
	AuthLimiter *RateLimiter
	Logger      zerolog.Logger

	Postgres Pinger
	Redis    Pinger

	// TrustProxy takes the client address from X-Forwarded-For or X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers, since the
	// auth rate limiter keys on that address.
	TrustProxy bool

	UploadDir      string
	CORSOrigins    []string
	RequestTimeout time.Duration
	Env            string
	Version        string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  allowOrigin(cfg.CORSOrigins, cfg.Env == "development"),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(notFoundHandler)

	authn := auth.Authenticate(cfg.Tokens)
	optional := auth.OptionalAuth(cfg.Tokens)
	limited := func(next http.Handler) http.Handler { return next }
	if cfg.AuthLimiter != nil {
		limited = cfg.AuthLimiter.Limit
	}

	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.Health)
		r.Get("/health/live", health.Liveness)
		r.Get("/health/ready", health.Readiness)

		r.Route("/auth", func(r chi.Router) {
			r.With(limited).Post("/register", registerHandler(cfg.Users))
			r.With(limited).Post("/login", loginHandler(cfg.Users))
			r.With(authn).Post("/setup-2fa", setupTwoFactorHandler(cfg.Users))
			r.With(authn).Post("/disable-2fa", disableTwoFactorHandler(cfg.Users))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authn)
			r.Get("/me", getMeHandler(cfg.Users))
			r.Put("/me", updateMeHandler(cfg.Users, cfg.Images))
		})

		r.Route("/appointments", func(r chi.Router) {
			r.With(optional).Get("/slots", availableSlotsHandler(cfg.Appointments))
			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Post("/", createAppointmentHandler(cfg.Appointments))
				r.Get("/", listAppointmentsHandler(cfg.Appointments))
				r.Get("/{id}", getAppointmentHandler(cfg.Appointments))
				r.Put("/{id}", updateAppointmentHandler(cfg.Appointments))
				r.Delete("/{id}", cancelAppointmentHandler(cfg.Appointments))
			})
		})

		r.Route("/providers", func(r chi.Router) {
			r.Use(optional)
			r.Get("/", listProvidersHandler(cfg.Providers))
			r.Get("/specialty/{specialty}", providersBySpecialtyHandler(cfg.Providers))
			r.Get("/{id}/availability", listWindowsHandler(cfg.Providers))
			r.Get("/{id}", getProviderHandler(cfg.Providers))
		})

		r.Route("/facilities", func(r chi.Router) {
			r.With(optional).Get("/", listFacilitiesHandler(cfg.Facilities))
			r.With(authn).Get("/patient", patientFacilitiesHandler(cfg.Facilities))
			r.With(optional).Get("/{id}", getFacilityHandler(cfg.Facilities))
		})

		r.Route("/events", func(r chi.Router) {
			r.With(optional).Get("/", listEventsHandler(cfg.Events))
			r.With(authn).Get("/my-registrations", myRegistrationsHandler(cfg.Events))
			r.With(authn).Post("/{id}/register", registerForEventHandler(cfg.Events))
			r.With(optional).Get("/{id}", getEventHandler(cfg.Events))
		})

		r.With(authn).Get("/dashboard", dashboardHandler(cfg.Dashboard))

		r.Route("/vitals", func(r chi.Router) {
			r.Use(authn)
			r.Post("/", recordVitalsHandler(cfg.Vitals))
			r.Get("/", listVitalsHandler(cfg.Vitals))
			r.Get("/latest", latestVitalsHandler(cfg.Vitals))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authn, auth.RequireRole(auth.RoleAdmin))
			mountAdmin(r, cfg)
		})
	})

	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(noDirFS{http.Dir(cfg.UploadDir)})))
	}

	return r
}

func mountAdmin(r chi.Router, cfg RouterConfig) {
	r.Get("/dashboard/stats", adminStatsHandler(cfg.Admin))
	r.Get("/logs", adminLogsHandler(cfg.Admin))

	r.Get("/users", adminListUsersHandler(cfg.Users))
	r.Post("/users", adminCreateUserHandler(cfg.Users))
	r.Get("/users/{id}", adminGetUserHandler(cfg.Users))
	r.Put("/users/{id}", adminUpdateUserHandler(cfg.Users))
	r.Delete("/users/{id}", adminDeleteUserHandler(cfg.Users))

	r.Get("/appointments", adminListAppointmentsHandler(cfg.Appointments))
	r.Get("/appointments/export", adminExportAppointmentsHandler(cfg.Admin))
	r.Put("/appointments/{id}", adminUpdateAppointmentHandler(cfg.Appointments))

	r.Get("/providers", listProvidersHandler(cfg.Providers))
	r.Post("/providers", adminCreateProviderHandler(cfg.Providers, cfg.Images))
	r.Put("/providers/{id}", adminUpdateProviderHandler(cfg.Providers, cfg.Images))
	r.Delete("/providers/{id}", adminDeleteProviderHandler(cfg.Providers))
	r.Get("/providers/{id}/availability", listWindowsHandler(cfg.Providers))
	r.Post("/providers/{id}/availability", adminCreateWindowHandler(cfg.Providers))
	r.Put("/providers/{id}/availability/{availabilityId}", adminUpdateWindowHandler(cfg.Providers))
	r.Delete("/providers/{id}/availability/{availabilityId}", adminDeleteWindowHandler(cfg.Providers))

	r.Get("/facilities", listFacilitiesHandler(cfg.Facilities))
	r.Post("/facilities", adminCreateFacilityHandler(cfg.Facilities))
	r.Put("/facilities/{id}", adminUpdateFacilityHandler(cfg.Facilities))
	r.Delete("/facilities/{id}", adminDeleteFacilityHandler(cfg.Facilities))

	r.Get("/events", listEventsHandler(cfg.Events))
	r.Post("/events", adminCreateEventHandler(cfg.Events))
	r.Put("/events/{id}", adminUpdateEventHandler(cfg.Events))
	r.Delete("/events/{id}", adminDeleteEventHandler(cfg.Events))
	r.Get("/events/{id}/registrations", adminListRegistrationsHandler(cfg.Events))
	r.Put("/events/{eventId}/registrations/{userId}", adminSetRegistrationStatusHandler(cfg.Events))
}

// allowOrigin accepts the configured origins and, in development, any
// localhost origin.
func allowOrigin(origins []string, dev bool) func(*http.Request, string) bool {
	return func(_ *http.Request, origin string) bool {
		if slices.Contains(origins, origin) {
			return true
		}
		return dev && (strings.Contains(origin, "://localhost") || strings.Contains(origin, "://127.0.0.1"))
	}
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found", "path": r.URL.Path})
}

// noDirFS hides directories so the upload tree cannot be listed.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
