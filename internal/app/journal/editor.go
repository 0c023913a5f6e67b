package journal

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/PabloGalante/mind-connect/internal/app/feedback"
	"github.com/PabloGalante/mind-connect/internal/domain"
)

const (
	// PromptPlaceholder fills the editor while a prompt is being fetched.
	PromptPlaceholder = "Generating a prompt for you..."
	SavedMessage      = "Your journal entry has been saved!"
)

type EditorState struct {
	Text    string `json:"text"`
	Pending bool   `json:"pending"`
	Saved   bool   `json:"saved"`
}

// Editor is one client's journal draft.
type Editor struct {
	svc   *Service
	flash *feedback.Flash

	mu        sync.Mutex
	text      string
	pending   bool
	listeners []func(EditorState)
}

func NewEditor(svc *Service, clk clock.Clock) *Editor {
	e := &Editor{
		svc:   svc,
		flash: feedback.NewFlash(clk, feedback.AckDuration),
	}
	e.flash.OnChange(e.emitSaved)
	return e
}

func (e *Editor) OnChange(fn func(EditorState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *Editor) SetText(text string) {
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
	e.emit()
}

// RequestPrompt replaces the draft with a fetched writing prompt. It blocks
// for the model round trip; the placeholder is shown meanwhile.
func (e *Editor) RequestPrompt(ctx context.Context, userID domain.UserID) error {
	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return domain.ErrRequestPending
	}
	e.pending = true
	e.text = PromptPlaceholder
	e.mu.Unlock()
	e.emit()

	text := e.svc.WritingPrompt(ctx, userID)

	e.mu.Lock()
	e.pending = false
	e.text = text
	e.mu.Unlock()
	e.emit()
	return nil
}

// Submit saves the draft, clears it and raises the acknowledgment. Blank
// drafts and anonymous clients are rejected without side effects.
func (e *Editor) Submit(ctx context.Context, userID domain.UserID) (*domain.JournalEntry, error) {
	e.mu.Lock()
	text := e.text
	e.mu.Unlock()

	entry, err := e.svc.SubmitEntry(ctx, userID, text)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.text = ""
	e.mu.Unlock()

	e.emit()
	e.flash.Raise()
	return entry, nil
}

func (e *Editor) State() EditorState {
	st := e.snapshot()
	st.Saved = e.flash.Active()
	return st
}

func (e *Editor) Close() {
	e.flash.Close()
	e.mu.Lock()
	e.listeners = nil
	e.mu.Unlock()
}

func (e *Editor) snapshot() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EditorState{Text: e.text, Pending: e.pending}
}

func (e *Editor) emit() {
	e.emitSaved(e.flash.Active())
}

// emitSaved doubles as the flash listener and must not call into the flash.
func (e *Editor) emitSaved(saved bool) {
	st := e.snapshot()
	st.Saved = saved
	e.mu.Lock()
	listeners := append([]func(EditorState){}, e.listeners...)
	e.mu.Unlock()
	for _, fn := range listeners {
		fn(st)
	}
}
