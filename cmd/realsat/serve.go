package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	api "github.com/aaron-veronese/RealSAT-sub000/internal/api/http"
	"github.com/aaron-veronese/RealSAT-sub000/internal/auth"
	"github.com/aaron-veronese/RealSAT-sub000/internal/bank"
	"github.com/aaron-veronese/RealSAT-sub000/internal/config"
	"github.com/aaron-veronese/RealSAT-sub000/internal/db"
	"github.com/aaron-veronese/RealSAT-sub000/internal/exam"
	"github.com/aaron-veronese/RealSAT-sub000/internal/rbac"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := exam.NewSQLStore(dbh)
	svc := exam.NewService(store, store)
	importer := bank.NewImporter(dbh)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	if err := bootstrapAdminUser(ctx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.Printf("admin bootstrap: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("exam:import")).
			Post("/exams", api.ImportExamHandler(importer))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{testID}/modules/{module}/questions", api.ModuleQuestionsHandler(svc))

		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{testID}/modules/{module}/submit", api.SubmitModuleHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{testID}", api.GetAttemptHandler(store))
		pr.With(rbac.RequireAny("results:view-own", "results:view-all")).
			Get("/attempts/{testID}/results/{section}", api.SectionResultsHandler(svc))
		pr.With(rbac.RequireAny("results:view-own", "results:view-all")).
			Get("/attempts/{testID}/report", api.ReportHandler(store, dbh))

		pr.With(rbac.RequireAny("results:view-own", "results:view-all")).
			Get("/leaderboard", api.LeaderboardHandler(store))
		pr.With(rbac.RequireOwnerOr("results:view-all", func(r *http.Request) bool {
			return auth.SubjectFromContext(r.Context()) == chi.URLParam(r, "userID")
		})).Get("/users/{userID}/attempts", api.UserAttemptsHandler(store))
	})

	log.Printf("listening on %s (driver=%s)", cfg.HTTPAddr, cfg.DBDriver)
	return http.ListenAndServe(cfg.HTTPAddr, r)
}
