package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/camden-git/jeudelamort/permissions"
	"github.com/camden-git/jeudelamort/realtime"
	"github.com/camden-git/jeudelamort/repository"
	"github.com/camden-git/jeudelamort/services"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Candidates repository.CandidateRepository
	Bets       repository.BetRepository
	Profiles   repository.ProfileRepository

	Auth     *services.AuthService
	Intake   *services.IntakeService
	Profile  *services.ProfileService
	Deaths   *services.DeathService
	Searcher Searcher
	Sync     DeathSyncer // nil disables the manual trigger
	Hub      *realtime.Hub

	AllowedOrigins []string
	PhotoBaseURL   string
	Logger         *logrus.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	authHandler := NewAuthHandler(d.Auth, d.Logger)
	setupHandler := NewSetupHandler(d.Auth, d.Logger)
	searchHandler := &SearchHandler{Searcher: d.Searcher, Logger: d.Logger}
	betHandler := &BetHandler{Intake: d.Intake, Bets: d.Bets, Logger: d.Logger}
	playerHandler := &PlayerHandler{Profiles: d.Profiles, Bets: d.Bets, ProfileService: d.Profile, Logger: d.Logger}
	candidateHandler := &CandidateHandler{
		Candidates:   d.Candidates,
		Bets:         d.Bets,
		Profiles:     d.Profiles,
		Deaths:       d.Deaths,
		PhotoBaseURL: d.PhotoBaseURL,
		Logger:       d.Logger,
	}
	gameHandler := &GameHandler{Candidates: d.Candidates, Bets: d.Bets, Profiles: d.Profiles, Logger: d.Logger}
	permissionHandler := &PermissionHandler{}

	requireAuth := AuthMiddleware(d.Auth)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{"status": "ok"}
		if d.Hub != nil {
			status["connections"] = d.Hub.ClientCount()
			status["players_online"] = d.Hub.ConnectedUsers()
		}
		writeJSON(w, http.StatusOK, status)
	})

	r.Route("/api", func(r chi.Router) {
		// websocket connections outlive the request timeout
		if d.Hub != nil {
			realtimeHandler := &RealtimeHandler{Hub: d.Hub}
			r.With(OptionalAuth(d.Auth)).Get("/ws", realtimeHandler.Connect)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/search", searchHandler.Search)
			r.Get("/leaderboard", gameHandler.Leaderboard)
			r.Get("/favorites", gameHandler.Favorites)
			r.Get("/in-memoriam", gameHandler.InMemoriam)
			r.Get("/players/{user_id}", playerHandler.GetPlayer)
			r.Get("/candidates/{id}", candidateHandler.GetCandidate)

			r.Post("/setup/admin", setupHandler.CreateFirstAdmin)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/signup", authHandler.SignUp)
				r.Post("/login", authHandler.Login)
				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Post("/logout", authHandler.Logout)
					r.Get("/me", authHandler.Me)
					r.Put("/password", authHandler.UpdatePassword)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/bets", betHandler.PlaceBet)
				r.Get("/me/bets", betHandler.MyBets)
				r.Put("/me/profile", playerHandler.UpdateProfile)

				r.With(RequireGlobalPermission(permissions.CandidateDeathRecord)).
					Put("/candidates/{id}/death", candidateHandler.RecordDeath)
				r.With(RequireGlobalPermission(permissions.PermissionsView)).
					Get("/permissions", permissionHandler.ListPermissionDefinitions)
				if d.Sync != nil {
					syncHandler := &AdminSyncHandler{Sync: d.Sync, Logger: d.Logger}
					r.With(RequireGlobalPermission(permissions.CandidateDeathSync)).
						Post("/admin/deaths/sync", syncHandler.TriggerDeathSync)
				}
			})
		})
	})

	return r
}
