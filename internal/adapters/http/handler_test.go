package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mind-connect/internal/adapters/auth"
	httpadapter "github.com/PabloGalante/mind-connect/internal/adapters/http"
	"github.com/PabloGalante/mind-connect/internal/adapters/llm"
	"github.com/PabloGalante/mind-connect/internal/adapters/storage/memory"
	"github.com/PabloGalante/mind-connect/internal/app/conversation"
	"github.com/PabloGalante/mind-connect/internal/app/identity"
	"github.com/PabloGalante/mind-connect/internal/app/journal"
	"github.com/PabloGalante/mind-connect/internal/app/mood"
	"github.com/PabloGalante/mind-connect/internal/app/profile"
)

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()

	feed := memory.NewChangeFeed()
	t.Cleanup(func() { _ = feed.Close() })

	llmClient := llm.NewMockLLM()
	moods := memory.NewMoodLogStore(feed)
	entries := memory.NewJournalStore(feed)
	provider := auth.NewLocalProvider(memory.NewCredentialStore(), "test-secret", time.Hour)

	return httpadapter.NewServer(httpadapter.Deps{
		Directory:     identity.NewDirectory(provider, memory.NewProfileStore()),
		Conversations: conversation.NewService(llmClient, memory.NewSessionStore(feed), memory.NewMessageStore(feed)),
		Moods:         mood.NewService(moods),
		Journal:       journal.NewService(entries, llmClient),
		Profiles:      profile.NewService(moods, entries),
		Location:      time.UTC,
	})
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func signUp(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	resp, raw := do(t, app, http.MethodPost, "/auth/signup", "", map[string]any{
		"name":             "Asha",
		"age":              19,
		"email":            email,
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestHealthz(t *testing.T) {
	app := newTestServer(t)

	resp, raw := do(t, app, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
}

func TestAuthRoundTrip(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "asha@example.com")

	resp, raw := do(t, app, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var me struct {
		Profile struct {
			Email string `json:"email"`
			Name  string `json:"name"`
			Age   int    `json:"age"`
		} `json:"profile"`
		Stats struct {
			MoodsChecked    int `json:"moods_checked"`
			JournalsWritten int `json:"journals_written"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, "asha@example.com", me.Profile.Email)
	assert.Equal(t, "Asha", me.Profile.Name)
	assert.Equal(t, 19, me.Profile.Age)
	assert.Zero(t, me.Stats.MoodsChecked)

	resp, raw = do(t, app, http.MethodPost, "/auth/signin", "", map[string]string{
		"email":    "ASHA@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
}

func TestAuthFailures(t *testing.T) {
	app := newTestServer(t)
	signUp(t, app, "asha@example.com")

	t.Run("password mismatch", func(t *testing.T) {
		resp, raw := do(t, app, http.MethodPost, "/auth/signup", "", map[string]any{
			"name": "B", "age": 20, "email": "b@example.com",
			"password": "secret123", "confirm_password": "other123",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Passwords do not match."}`, string(raw))
	})

	t.Run("email in use", func(t *testing.T) {
		resp, raw := do(t, app, http.MethodPost, "/auth/signup", "", map[string]any{
			"name": "A", "age": 20, "email": "asha@example.com",
			"password": "secret123", "confirm_password": "secret123",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.NotContains(t, string(raw), "auth: ")
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, _ := do(t, app, http.MethodPost, "/auth/signin", "", map[string]string{
			"email": "asha@example.com", "password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		resp, _ := do(t, app, http.MethodGet, "/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bad token", func(t *testing.T) {
		resp, _ := do(t, app, http.MethodGet, "/sessions", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMoodLogs(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "asha@example.com")

	resp, raw := do(t, app, http.MethodPost, "/mood-logs", token, map[string]any{
		"mood_value": 72,
		"answers":    map[string]string{"A small win today?": "Went for a walk"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"mood":"Good"`)

	resp, _ = do(t, app, http.MethodPost, "/mood-logs", token, map[string]any{"mood_value": 101})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = do(t, app, http.MethodGet, "/mood-logs", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		MoodLogs []map[string]any `json:"mood_logs"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.MoodLogs, 1)

	month := time.Now().UTC().Format("2006-01")
	resp, raw = do(t, app, http.MethodGet, "/mood-logs?month="+month, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var grid struct {
		Cells []struct {
			Day    int  `json:"day"`
			Marked bool `json:"marked"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(raw, &grid))
	marked := 0
	for _, cell := range grid.Cells {
		if cell.Marked {
			marked++
			assert.Equal(t, time.Now().UTC().Day(), cell.Day)
		}
	}
	assert.Equal(t, 1, marked)

	resp, _ = do(t, app, http.MethodGet, "/mood-logs?month=June", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = do(t, app, http.MethodGet, "/mood/questions", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "One intention for tomorrow?")
}

func TestJournalEntries(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "asha@example.com")

	resp, raw := do(t, app, http.MethodPost, "/journal-entries/prompt", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prompt struct {
		Prompt string `json:"prompt"`
	}
	require.NoError(t, json.Unmarshal(raw, &prompt))
	assert.NotContains(t, prompt.Prompt, `"`)
	assert.NotEmpty(t, prompt.Prompt)

	resp, _ = do(t, app, http.MethodPost, "/journal-entries", token, map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = do(t, app, http.MethodPost, "/journal-entries", token, map[string]string{"text": "Today was calm."})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = do(t, app, http.MethodGet, "/journal-entries", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "Today was calm.")

	resp, raw = do(t, app, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"journals_written":1`)
}

func TestChatRoundTrip(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "asha@example.com")

	resp, _ := do(t, app, http.MethodPost, "/sessions/messages", token, map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw := do(t, app, http.MethodPost, "/sessions/messages", token, map[string]string{
		"text": "I had a rough day at school and I want to talk about it",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var sent struct {
		Session struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"session"`
		UserMessage struct {
			Author string `json:"author"`
		} `json:"user_message"`
		AgentMessage *struct {
			Author string `json:"author"`
			Text   string `json:"text"`
		} `json:"agent_message"`
	}
	require.NoError(t, json.Unmarshal(raw, &sent))
	require.NotEmpty(t, sent.Session.ID)
	assert.Equal(t, "I had a rough day at school and I w…", sent.Session.Title)
	assert.Equal(t, "user", sent.UserMessage.Author)
	require.NotNil(t, sent.AgentMessage)
	assert.Equal(t, "assistant", sent.AgentMessage.Author)

	resp, raw = do(t, app, http.MethodPost, "/sessions/messages", token, map[string]string{
		"session_id": sent.Session.ID,
		"text":       "Thanks",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = do(t, app, http.MethodGet, "/sessions/"+sent.Session.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var timeline struct {
		Messages []struct {
			Author string `json:"author"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(raw, &timeline))
	require.Len(t, timeline.Messages, 4)
	assert.Equal(t, "user", timeline.Messages[0].Author)
	assert.Equal(t, "assistant", timeline.Messages[3].Author)

	resp, raw = do(t, app, http.MethodGet, "/sessions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), sent.Session.ID)

	resp, _ = do(t, app, http.MethodDelete, "/sessions/"+sent.Session.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/sessions/"+sent.Session.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionsAreScopedToUser(t *testing.T) {
	app := newTestServer(t)
	alice := signUp(t, app, "alice@example.com")
	bob := signUp(t, app, "bob@example.com")

	resp, raw := do(t, app, http.MethodPost, "/sessions/messages", alice, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var sent struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(raw, &sent))

	resp, _ = do(t, app, http.MethodGet, "/sessions/"+sent.Session.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/sessions/messages", bob, map[string]string{
		"session_id": sent.Session.ID,
		"text":       "hijack",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStaticContent(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "asha@example.com")

	resp, raw := do(t, app, http.MethodGet, "/exercises", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"meditation_minutes":[10,20]`)
	assert.Contains(t, string(raw), "Box Breathing")

	resp, raw = do(t, app, http.MethodGet, "/resources", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "Aasra")
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	app := newTestServer(t)

	resp, _ := do(t, app, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
