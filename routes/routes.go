package routes

import (
	"github.com/Dosada05/football-tournament-system/handlers"
	"github.com/Dosada05/football-tournament-system/middleware"
	"github.com/Dosada05/football-tournament-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes регистрирует все HTTP-маршруты приложения.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	organizerOnly := middleware.Authorize(models.RoleOrganizer)

	router.Post("/auth/signup", authHandler.SignUp)
	router.Post("/auth/signin", authHandler.SignIn)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/teams", teamHandler.ListByTournament)
		r.Get("/{tournamentID}/matches", tournamentHandler.ListMatches)
		r.Get("/{tournamentID}/standings", standingsHandler.GetStandings)

		// Регистрация команды доступна любому аутентифицированному пользователю
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/teams", teamHandler.Register)
		})

		// Управление турниром - только организатор
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Post("/", tournamentHandler.Create)
			r.Delete("/{tournamentID}", tournamentHandler.Delete)
			r.Post("/{tournamentID}/schedule", tournamentHandler.GenerateSchedule)
		})
	})

	router.Route("/organizer", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(organizerOnly)
		r.Get("/tournaments", tournamentHandler.ListMine)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{teamID}/players", teamHandler.AddPlayers)
			r.Post("/{teamID}/crest", teamHandler.UploadCrest)
			r.Delete("/{teamID}", teamHandler.Delete)
		})
	})

	router.Get("/players/{playerID}", teamHandler.GetPlayer)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByID)

		// Живые обновления матча - только организатор
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Post("/{matchID}/events", matchHandler.RecordEvent)
			r.Patch("/{matchID}/status", matchHandler.SetStatus)
			r.Post("/{matchID}/result", matchHandler.UpdateResult)
			r.Patch("/{matchID}/players", matchHandler.MarkPlayersPlayed)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
