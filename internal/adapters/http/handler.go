package httpadapter

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PabloGalante/mind-connect/internal/app/calendar"
	"github.com/PabloGalante/mind-connect/internal/app/confirm"
	"github.com/PabloGalante/mind-connect/internal/app/content"
	"github.com/PabloGalante/mind-connect/internal/app/conversation"
	"github.com/PabloGalante/mind-connect/internal/app/exercise"
	"github.com/PabloGalante/mind-connect/internal/app/identity"
	"github.com/PabloGalante/mind-connect/internal/app/navigation"
	"github.com/PabloGalante/mind-connect/internal/app/profile"
	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type errorResponse struct {
	Error string `json:"error"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type meResponse struct {
	Profile *domain.UserProfile `json:"profile"`
	Stats   profile.Stats       `json:"stats"`
}

type createMoodLogRequest struct {
	Value   int               `json:"mood_value"`
	Answers map[string]string `json:"answers"`
}

type createJournalEntryRequest struct {
	Text string `json:"text"`
}

type promptResponse struct {
	Prompt string `json:"prompt"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type sendMessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

type sendMessageResponse struct {
	Session      sessionResponse  `json:"session"`
	UserMessage  messageResponse  `json:"user_message"`
	AgentMessage *messageResponse `json:"agent_message,omitempty"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type exercisesResponse struct {
	Breathing   []exercise.Pattern       `json:"breathing"`
	Grounding   []exercise.GroundingStep `json:"grounding"`
	Meditations []int                    `json:"meditation_minutes"`
}

type resourcesResponse struct {
	CrisisNotice string             `json:"crisis_notice"`
	Helplines    []content.Helpline `json:"helplines"`
	Affirmation  string             `json:"affirmation"`
	LearnCards   []content.Card     `json:"learn_cards"`
	Features     []content.Feature  `json:"features"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleSignUp(c *fiber.Ctx) error {
	var req identity.SignUpInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	ctx := c.UserContext()
	if _, err := s.deps.Directory.SignUp(ctx, req); err != nil {
		return fail(c, err)
	}
	session, err := s.deps.Directory.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAuthResponse(session))
}

func (s *Server) handleSignIn(c *fiber.Ctx) error {
	var req signInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	session, err := s.deps.Directory.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toAuthResponse(session))
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := sessionFrom(c)

	p, err := s.deps.Directory.Profile(ctx, session.UserID, session.Email)
	if err != nil {
		return fail(c, err)
	}
	stats, err := s.deps.Profiles.Stats(ctx, session.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(meResponse{Profile: p, Stats: stats})
}

func (s *Server) handleMoodQuestions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"questions": domain.ReflectionQuestions})
}

func (s *Server) handleCreateMoodLog(c *fiber.Ctx) error {
	var req createMoodLogRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	entry, err := s.deps.Moods.SubmitMoodLog(c.UserContext(), sessionFrom(c).UserID, req.Value, req.Answers)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// handleListMoodLogs returns the plain list, or a month grid when month is
// given.
func (s *Server) handleListMoodLogs(c *fiber.Ctx) error {
	ctx := c.UserContext()
	uid := sessionFrom(c).UserID

	if month := c.Query("month"); month != "" {
		anchor, err := s.parseMonth(month)
		if err != nil {
			return fail(c, err)
		}
		grid, err := s.deps.Moods.Month(ctx, uid, anchor, s.deps.Location)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(grid)
	}

	logs, err := s.deps.Moods.List(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"mood_logs": logs})
}

func (s *Server) handleCreateJournalEntry(c *fiber.Ctx) error {
	var req createJournalEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	entry, err := s.deps.Journal.SubmitEntry(c.UserContext(), sessionFrom(c).UserID, req.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (s *Server) handleListJournalEntries(c *fiber.Ctx) error {
	ctx := c.UserContext()
	uid := sessionFrom(c).UserID

	if month := c.Query("month"); month != "" {
		anchor, err := s.parseMonth(month)
		if err != nil {
			return fail(c, err)
		}
		grid, err := s.deps.Journal.Month(ctx, uid, anchor, s.deps.Location)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(grid)
	}

	entries, err := s.deps.Journal.GetUserJournal(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"journal_entries": entries})
}

func (s *Server) handleWritingPrompt(c *fiber.Ctx) error {
	prompt := s.deps.Journal.WritingPrompt(c.UserContext(), sessionFrom(c).UserID)
	return c.JSON(promptResponse{Prompt: prompt})
}

func (s *Server) handleListSessions(c *fiber.Ctx) error {
	sessions, err := s.deps.Conversations.ListSessions(c.UserContext(), sessionFrom(c).UserID)
	if err != nil {
		return fail(c, err)
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		resp = append(resp, toSessionResponse(sess))
	}
	return c.JSON(fiber.Map{"sessions": resp})
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sid := domain.SessionID(c.Params("id"))

	sess, msgs, err := s.deps.Conversations.GetSessionTimeline(c.UserContext(), sessionFrom(c).UserID, sid)
	if err != nil {
		return fail(c, err)
	}

	resp := getSessionResponse{
		Session:  toSessionResponse(sess),
		Messages: make([]messageResponse, 0, len(msgs)),
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toMessageResponse(m))
	}
	return c.JSON(resp)
}

// handleSendMessage starts a session when session_id is empty, then waits
// for the reply.
func (s *Server) handleSendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	out, err := s.deps.Conversations.SendMessage(c.UserContext(), conversation.SendMessageInput{
		UserID:    sessionFrom(c).UserID,
		SessionID: domain.SessionID(req.SessionID),
		Text:      req.Text,
	})
	if err != nil {
		return fail(c, err)
	}

	resp := sendMessageResponse{
		Session:     toSessionResponse(out.Session),
		UserMessage: toMessageResponse(out.UserMessage),
	}
	if out.AgentMessage != nil {
		agent := toMessageResponse(out.AgentMessage)
		resp.AgentMessage = &agent
	}
	return c.JSON(resp)
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	sid := domain.SessionID(c.Params("id"))
	if err := s.deps.Conversations.DeleteSession(c.UserContext(), sessionFrom(c).UserID, sid); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleExercises(c *fiber.Ctx) error {
	return c.JSON(exercisesResponse{
		Breathing: exercise.Patterns(),
		Grounding: exercise.GroundingSteps,
		Meditations: []int{
			int(exercise.ShortMeditation / time.Minute),
			int(exercise.LongMeditation / time.Minute),
		},
	})
}

func (s *Server) handleResources(c *fiber.Ctx) error {
	return c.JSON(resourcesResponse{
		CrisisNotice: content.CrisisNotice,
		Helplines:    content.Helplines,
		Affirmation:  content.AffirmationAt(s.deps.Clock.Now()),
		LearnCards:   content.LearnCards,
		Features:     content.Features,
	})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func (s *Server) parseMonth(v string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", v, s.deps.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month must look like 2006-01", domain.ErrInvalidInput)
	}
	return t, nil
}

func toAuthResponse(s *domain.AuthSession) authResponse {
	return authResponse{
		UserID:    string(s.UserID),
		Email:     s.Email,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:        string(s.ID),
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		SessionID: string(m.SessionID),
		Author:    string(m.Author),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

// statusFor maps domain and app errors onto HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, identity.ErrPasswordMismatch),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrEmptyJournalEntry),
		errors.Is(err, domain.ErrMoodOutOfRange),
		errors.Is(err, exercise.ErrUnsupportedDuration),
		errors.Is(err, navigation.ErrUnknownScreen),
		errors.Is(err, errUnknownCommand):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, navigation.ErrNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrEmailInUse),
		errors.Is(err, domain.ErrRequestPending),
		errors.Is(err, confirm.ErrNotArmed):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, calendar.ErrNoRecord):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := identity.ErrorMessage(err)
	if status == fiber.StatusInternalServerError {
		observability.LoggerFromContext(c.UserContext()).Errorw("request failed",
			"path", c.Path(),
			"error", err,
		)
		msg = "internal error"
	}
	return c.Status(status).JSON(errorResponse{Error: msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: msg})
}

// errorHandler catches errors a handler returned instead of writing.
func errorHandler(c *fiber.Ctx, err error) error {
	return fail(c, err)
}
