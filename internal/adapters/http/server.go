package httpadapter

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/PabloGalante/mind-connect/internal/app/conversation"
	"github.com/PabloGalante/mind-connect/internal/app/identity"
	"github.com/PabloGalante/mind-connect/internal/app/journal"
	"github.com/PabloGalante/mind-connect/internal/app/mood"
	"github.com/PabloGalante/mind-connect/internal/app/profile"
)

// Deps are the shared services behind the API. Per-client state lives in
// the WebSocket sessions.
type Deps struct {
	Directory     *identity.Directory
	Conversations *conversation.Service
	Moods         *mood.Service
	Journal       *journal.Service
	Profiles      *profile.Service

	// Clock drives exercise timers and save banners. Defaults to the wall
	// clock.
	Clock clock.Clock
	// Location is the time zone calendar days are cut in.
	Location *time.Location

	AllowedOrigins string
}

type Server struct {
	deps Deps
}

func NewServer(deps Deps) *fiber.App {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.AllowedOrigins == "" {
		deps.AllowedOrigins = "*"
	}
	s := &Server{deps: deps}

	app := fiber.New(fiber.Config{
		AppName:      "mind-connect-api",
		ErrorHandler: errorHandler,
	})

	app.Use(requestid.New())
	app.Use(withRequestContext)
	app.Use(withLogging)
	app.Use(cors.New(cors.Config{
		AllowOrigins: deps.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(otelfiber.Middleware())

	s.registerRoutes(app)
	return app
}

func (s *Server) registerRoutes(app *fiber.App) {
	app.Get("/healthz", s.handleHealth)

	auth := app.Group("/auth")
	auth.Post("/signup", s.handleSignUp)
	auth.Post("/signin", s.handleSignIn)

	app.Get("/ws", s.handleWebSocket)

	api := app.Group("/", s.requireAuth)
	api.Get("/me", s.handleMe)

	api.Get("/mood/questions", s.handleMoodQuestions)
	api.Post("/mood-logs", s.handleCreateMoodLog)
	api.Get("/mood-logs", s.handleListMoodLogs)

	api.Post("/journal-entries/prompt", s.handleWritingPrompt)
	api.Post("/journal-entries", s.handleCreateJournalEntry)
	api.Get("/journal-entries", s.handleListJournalEntries)

	api.Post("/sessions/messages", s.handleSendMessage)
	api.Get("/sessions", s.handleListSessions)
	api.Get("/sessions/:id", s.handleGetSession)
	api.Delete("/sessions/:id", s.handleDeleteSession)

	api.Get("/exercises", s.handleExercises)
	api.Get("/resources", s.handleResources)
}
