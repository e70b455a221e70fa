package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/academy-shift-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	CronSecret     string
	LogLevel       slog.Level
}

func NewRouter(JWTService jwt.Service, shiftHandler ShiftHandler, cronHandler CronHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "academy-shift"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// External scheduler, authenticated by shared secret
		r.Route("/cron", func(r chi.Router) {
			r.Use(middleware.CronSecret(opts.CronSecret))
			r.Get("/auto-clockout", cronHandler.AutoClockout)
		})

		r.Route("/shifts", func(r chi.Router) {
			// Token travels in the query string
			r.Get("/stream", shiftHandler.Stream)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

				// Trainer or admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireShiftRole)
					r.Post("/sync", shiftHandler.Sync)
					r.Get("/active", shiftHandler.Active)
					r.Get("/my", shiftHandler.My)
					r.Get("/stream-token", shiftHandler.GetStreamToken)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/failed-syncs", shiftHandler.ListFailedSyncs)
					r.Post("/failed-syncs/{id}/resolve", shiftHandler.ResolveFailedSync)
				})
			})
		})
	})
	return r
}
