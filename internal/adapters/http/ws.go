package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/PabloGalante/mind-connect/internal/app/calendar"
	"github.com/PabloGalante/mind-connect/internal/app/conversation"
	"github.com/PabloGalante/mind-connect/internal/app/exercise"
	"github.com/PabloGalante/mind-connect/internal/app/identity"
	"github.com/PabloGalante/mind-connect/internal/app/journal"
	"github.com/PabloGalante/mind-connect/internal/app/mood"
	"github.com/PabloGalante/mind-connect/internal/app/navigation"
	"github.com/PabloGalante/mind-connect/internal/domain"
	"github.com/PabloGalante/mind-connect/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

var errUnknownCommand = errors.New("unknown command")

// command is one inbound frame.
type command struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// event is one outbound frame. Every event carries a full snapshot of the
// component it names.
type event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type errorEvent struct {
	Command string `json:"command,omitempty"`
	Error   string `json:"error"`
}

type profileEvent struct {
	Profile *domain.UserProfile `json:"profile"`
	Stats   any                 `json:"stats"`
}

type calendarEvent struct {
	Kind  string `json:"kind"`
	Month any    `json:"month"`
}

type selectionEvent struct {
	Kind   string `json:"kind"`
	Day    int    `json:"day"`
	Record any    `json:"record"`
}

// handleWebSocket upgrades to a client session. A token in the query or
// Authorization header resumes a signed-in session; without one the client
// starts on the login screen.
func (s *Server) handleWebSocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := bearerToken(c)
	requestID, _ := c.Locals(localRequestID).(string)

	return websocket.New(func(conn *websocket.Conn) {
		ctx := observability.WithRequestID(context.Background(), requestID)
		cl := newClient(ctx, s, conn)
		cl.run(token)
	})(c)
}

// client is the state of one connected front-end: identity, screen and
// every interactive component, all pushed to the socket on change.
type client struct {
	srv  *Server
	conn *websocket.Conn
	send chan []byte
	log  *zap.SugaredLogger
	// writerDone is closed once writePump has let go of the connection.
	writerDone chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	gate       *identity.Gate
	router     *navigation.Router
	breathing  map[string]*exercise.Sequencer
	grounding  *exercise.Grounding
	meditation *exercise.Meditation
	composer   *mood.Composer
	editor     *journal.Editor
	moodCal    *calendar.Navigator
	journalCal *calendar.Navigator

	mu         sync.Mutex
	chat       *conversation.Manager
	userCancel context.CancelFunc
}

func newClient(ctx context.Context, s *Server, conn *websocket.Conn) *client {
	ctx, cancel := context.WithCancel(ctx)
	clk := s.deps.Clock
	now := clk.Now().In(s.deps.Location)

	cl := &client{
		srv:        s,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		writerDone: make(chan struct{}),
		log:        observability.LoggerFromContext(ctx),
		ctx:        ctx,
		cancel:     cancel,
		gate:       identity.NewGate(s.deps.Directory),
		router:     navigation.NewRouter(),
		breathing:  make(map[string]*exercise.Sequencer),
		grounding:  exercise.NewGrounding(),
		meditation: exercise.NewMeditation(clk),
		composer:   mood.NewComposer(s.deps.Moods, clk),
		editor:     journal.NewEditor(s.deps.Journal, clk),
		moodCal:    calendar.NewNavigator(now),
		journalCal: calendar.NewNavigator(now),
	}

	for _, p := range exercise.Patterns() {
		seq := exercise.NewSequencer(clk, p)
		seq.OnChange(func(st exercise.SequencerState) { cl.push("exercise", st) })
		cl.breathing[p.Key] = seq
	}
	cl.meditation.OnChange(func(st exercise.MeditationState) { cl.push("meditation", st) })
	cl.composer.OnChange(func(st mood.ComposerState) { cl.push("mood", st) })
	cl.editor.OnChange(func(st journal.EditorState) { cl.push("journal", st) })
	cl.router.OnChange(func(sc navigation.Screen) { cl.push("screen", sc) })
	cl.gate.OnChange(cl.onAuthChange)

	return cl
}

func (c *client) run(token string) {
	defer c.close()
	go c.writePump()

	if token != "" {
		if err := c.gate.Resume(c.ctx, token); err != nil {
			c.pushError("auth.resume", err)
		}
	}
	c.push("screen", c.router.Current())
	c.push("grounding", c.grounding.State())
	c.push("meditation", c.meditation.State())
	c.push("mood", c.composer.State())
	c.push("journal", c.editor.State())

	c.readPump()
}

func (c *client) close() {
	c.cancel()
	for _, seq := range c.breathing {
		seq.Close()
	}
	c.meditation.Close()
	c.composer.Close()
	c.editor.Close()

	c.mu.Lock()
	c.endUserLocked()
	c.mu.Unlock()

	<-c.writerDone
	c.log.Infow("websocket client closed")
}

// onAuthChange swaps the per-user subscriptions when the signed-in user
// changes.
func (c *client) onAuthChange(session *domain.AuthSession) {
	c.router.SetAuthenticated(session != nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endUserLocked()
	if session == nil {
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.userCancel = cancel

	mgr, err := conversation.NewManager(ctx, c.srv.deps.Conversations, session.UserID)
	if err != nil {
		c.log.Errorw("failed to start chat manager", "user_id", session.UserID, "error", err)
		c.pushError("auth", err)
	} else {
		c.chat = mgr
		mgr.OnChange(func(v conversation.View) { c.push("chat", v) })
		c.push("chat", mgr.View())
	}

	stats, err := c.srv.deps.Profiles.Watch(ctx, session.UserID)
	if err != nil {
		c.log.Errorw("failed to watch profile stats", "user_id", session.UserID, "error", err)
		return
	}
	go func() {
		for st := range stats {
			p, err := c.srv.deps.Directory.Profile(ctx, session.UserID, session.Email)
			if err != nil {
				c.log.Warnw("failed to load profile", "user_id", session.UserID, "error", err)
				continue
			}
			c.push("profile", profileEvent{Profile: p, Stats: st})
		}
	}()
}

func (c *client) endUserLocked() {
	if c.chat != nil {
		c.chat.Close()
		c.chat = nil
	}
	if c.userCancel != nil {
		c.userCancel()
		c.userCancel = nil
	}
}

func (c *client) userID() (domain.UserID, error) {
	session := c.gate.Current()
	if session == nil {
		return "", domain.ErrUnauthenticated
	}
	return session.UserID, nil
}

func (c *client) manager() (*conversation.Manager, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chat == nil {
		return nil, domain.ErrUnauthenticated
	}
	return c.chat, nil
}

// push queues an event without blocking. Listeners call it under their own
// locks, so a slow socket drops frames instead of stalling a component.
func (c *client) push(typ string, data any) {
	b, err := json.Marshal(event{Type: typ, Data: data})
	if err != nil {
		c.log.Errorw("failed to encode event", "type", typ, "error", err)
		return
	}
	select {
	case <-c.ctx.Done():
	case c.send <- b:
	default:
		c.log.Warnw("dropping websocket event, client too slow", "type", typ)
	}
}

func (c *client) pushError(cmd string, err error) {
	msg := identity.ErrorMessage(err)
	if statusFor(err) == fiber.StatusInternalServerError {
		c.log.Errorw("websocket command failed", "command", cmd, "error", err)
		msg = "internal error"
	}
	c.push("error", errorEvent{Command: cmd, Error: msg})
}

func (c *client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warnw("websocket read failed", "error", err)
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.pushError("", fmt.Errorf("%w: malformed command", domain.ErrInvalidInput))
			continue
		}
		if err := c.handle(cmd); err != nil {
			c.pushError(cmd.Type, err)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.writerDone)
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warnw("websocket write failed", "error", err)
				c.cancel()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}

// handle runs one command. Commands that wait on the model run in their
// own goroutine so the read loop keeps answering pings.
func (c *client) handle(cmd command) error {
	switch cmd.Type {
	case "navigate":
		in, err := decode[struct {
			Screen string `json:"screen"`
		}](cmd)
		if err != nil {
			return err
		}
		screen, err := navigation.Parse(in.Screen)
		if err != nil {
			return err
		}
		return c.router.Navigate(screen)

	case "auth.signin":
		in, err := decode[signInRequest](cmd)
		if err != nil {
			return err
		}
		return c.gate.SignIn(c.ctx, in.Email, in.Password)
	case "auth.signup":
		in, err := decode[identity.SignUpInput](cmd)
		if err != nil {
			return err
		}
		return c.gate.SignUp(c.ctx, in)
	case "auth.signout":
		c.gate.SignOut()
		return nil

	case "chat.new", "chat.open", "chat.input", "chat.send",
		"chat.delete.request", "chat.delete.confirm", "chat.delete.cancel":
		return c.handleChat(cmd)

	case "exercise.start", "exercise.stop":
		in, err := decode[struct {
			Pattern string `json:"pattern"`
		}](cmd)
		if err != nil {
			return err
		}
		seq, ok := c.breathing[in.Pattern]
		if !ok {
			return fmt.Errorf("%w: unknown breathing pattern %q", domain.ErrInvalidInput, in.Pattern)
		}
		if cmd.Type == "exercise.start" {
			seq.Start()
		} else {
			seq.Stop()
		}
		return nil

	case "grounding.next":
		c.push("grounding", c.grounding.Next())
		return nil
	case "grounding.prev":
		c.push("grounding", c.grounding.Prev())
		return nil

	case "meditation.select":
		in, err := decode[struct {
			Minutes int `json:"minutes"`
		}](cmd)
		if err != nil {
			return err
		}
		return c.meditation.Select(time.Duration(in.Minutes) * time.Minute)
	case "meditation.start":
		c.meditation.Start()
		return nil
	case "meditation.stop":
		c.meditation.Stop()
		return nil

	case "mood.value":
		in, err := decode[struct {
			Value int `json:"value"`
		}](cmd)
		if err != nil {
			return err
		}
		return c.composer.SetValue(in.Value)
	case "mood.answer":
		in, err := decode[struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		}](cmd)
		if err != nil {
			return err
		}
		return c.composer.SetAnswer(in.Question, in.Answer)
	case "mood.submit":
		uid, err := c.userID()
		if err != nil {
			return err
		}
		_, err = c.composer.Submit(c.ctx, uid)
		return err

	case "journal.text":
		in, err := decode[struct {
			Text string `json:"text"`
		}](cmd)
		if err != nil {
			return err
		}
		c.editor.SetText(in.Text)
		return nil
	case "journal.prompt":
		uid, err := c.userID()
		if err != nil {
			return err
		}
		go func() {
			if err := c.editor.RequestPrompt(c.ctx, uid); err != nil {
				c.pushError(cmd.Type, err)
			}
		}()
		return nil
	case "journal.submit":
		uid, err := c.userID()
		if err != nil {
			return err
		}
		_, err = c.editor.Submit(c.ctx, uid)
		return err

	case "calendar.show", "calendar.next", "calendar.prev", "calendar.select":
		return c.handleCalendar(cmd)

	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd.Type)
	}
}

func (c *client) handleChat(cmd command) error {
	mgr, err := c.manager()
	if err != nil {
		return err
	}
	in, err := decode[struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}](cmd)
	if err != nil {
		return err
	}

	switch cmd.Type {
	case "chat.new":
		mgr.NewChat()
	case "chat.open":
		return mgr.Open(c.ctx, domain.SessionID(in.SessionID))
	case "chat.input":
		mgr.SetInput(in.Text)
	case "chat.send":
		go func() {
			if err := mgr.Send(c.ctx, in.Text); err != nil {
				c.pushError(cmd.Type, err)
			}
		}()
	case "chat.delete.request":
		mgr.RequestDelete(domain.SessionID(in.SessionID))
	case "chat.delete.confirm":
		return mgr.ConfirmDelete(c.ctx)
	case "chat.delete.cancel":
		mgr.CancelDelete()
	}
	return nil
}

// handleCalendar drives the month grids of the mood and journal screens.
func (c *client) handleCalendar(cmd command) error {
	in, err := decode[struct {
		Kind string `json:"kind"`
		Day  int    `json:"day"`
	}](cmd)
	if err != nil {
		return err
	}
	uid, err := c.userID()
	if err != nil {
		return err
	}

	var nav *calendar.Navigator
	switch in.Kind {
	case "mood":
		nav = c.moodCal
	case "journal":
		nav = c.journalCal
	default:
		return fmt.Errorf("%w: calendar kind must be mood or journal", domain.ErrInvalidInput)
	}

	anchor := nav.Current()
	switch cmd.Type {
	case "calendar.next":
		anchor = nav.Next()
	case "calendar.prev":
		anchor = nav.Prev()
	}

	loc := c.srv.deps.Location
	if in.Kind == "mood" {
		grid, err := c.srv.deps.Moods.Month(c.ctx, uid, anchor, loc)
		if err != nil {
			return err
		}
		return pushCalendar(c, cmd.Type, in.Kind, in.Day, grid, grid.Select)
	}
	grid, err := c.srv.deps.Journal.Month(c.ctx, uid, anchor, loc)
	if err != nil {
		return err
	}
	return pushCalendar(c, cmd.Type, in.Kind, in.Day, grid, grid.Select)
}

func pushCalendar[T any](c *client, typ, kind string, day int, grid calendar.Month[T], pick func(int) (T, error)) error {
	if typ != "calendar.select" {
		c.push("calendar", calendarEvent{Kind: kind, Month: grid})
		return nil
	}
	record, err := pick(day)
	if err != nil {
		return err
	}
	c.push("calendar.selection", selectionEvent{Kind: kind, Day: day, Record: record})
	return nil
}

func decode[T any](cmd command) (T, error) {
	var v T
	if len(cmd.Data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(cmd.Data, &v); err != nil {
		return v, fmt.Errorf("%w: %s data: %s", domain.ErrInvalidInput, cmd.Type, err)
	}
	return v, nil
}
