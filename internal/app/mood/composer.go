package mood

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/PabloGalante/mind-connect/internal/app/feedback"
	"github.com/PabloGalante/mind-connect/internal/domain"
)

// SavedMessage is shown while the acknowledgment is up.
const SavedMessage = "Your mood log has been saved!"

type ComposerState struct {
	Value   int               `json:"value"`
	Label   domain.MoodLabel  `json:"label"`
	Answers map[string]string `json:"answers"`
	Saved   bool              `json:"saved"`
}

// Composer is one client's mood form: a slider value plus answers to the
// reflection questions.
type Composer struct {
	svc   *Service
	flash *feedback.Flash

	mu        sync.Mutex
	value     int
	answers   map[string]string
	listeners []func(ComposerState)
}

func NewComposer(svc *Service, clk clock.Clock) *Composer {
	c := &Composer{
		svc:     svc,
		flash:   feedback.NewFlash(clk, feedback.AckDuration),
		value:   domain.DefaultMoodValue,
		answers: map[string]string{},
	}
	c.flash.OnChange(c.emitSaved)
	return c
}

func (c *Composer) OnChange(fn func(ComposerState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Composer) SetValue(v int) error {
	if !domain.ValidMoodValue(v) {
		return fmt.Errorf("%w: got %d", domain.ErrMoodOutOfRange, v)
	}
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
	c.emit()
	return nil
}

// SetAnswer records the answer to one of domain.ReflectionQuestions.
func (c *Composer) SetAnswer(question, answer string) error {
	if !isReflectionQuestion(question) {
		return fmt.Errorf("%w: unknown question %q", domain.ErrInvalidInput, question)
	}
	c.mu.Lock()
	c.answers[question] = answer
	c.mu.Unlock()
	c.emit()
	return nil
}

// Submit saves the form. On success the form goes back to its defaults and
// the acknowledgment is raised.
func (c *Composer) Submit(ctx context.Context, userID domain.UserID) (*domain.MoodLog, error) {
	c.mu.Lock()
	value := c.value
	answers := make(map[string]string, len(c.answers))
	for q, a := range c.answers {
		answers[q] = a
	}
	c.mu.Unlock()

	entry, err := c.svc.SubmitMoodLog(ctx, userID, value, answers)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.value = domain.DefaultMoodValue
	c.answers = map[string]string{}
	c.mu.Unlock()

	c.emit()
	c.flash.Raise()
	return entry, nil
}

func (c *Composer) State() ComposerState {
	st := c.snapshot()
	st.Saved = c.flash.Active()
	return st
}

func (c *Composer) snapshot() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := ComposerState{
		Value:   c.value,
		Label:   domain.LabelFor(c.value),
		Answers: make(map[string]string, len(c.answers)),
	}
	for q, a := range c.answers {
		st.Answers[q] = a
	}
	return st
}

func (c *Composer) Close() {
	c.flash.Close()
	c.mu.Lock()
	c.listeners = nil
	c.mu.Unlock()
}

func (c *Composer) emit() {
	c.emitSaved(c.flash.Active())
}

// emitSaved is also the flash listener, so it must not touch the flash.
func (c *Composer) emitSaved(saved bool) {
	st := c.snapshot()
	st.Saved = saved
	c.mu.Lock()
	listeners := append([]func(ComposerState){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(st)
	}
}

func isReflectionQuestion(q string) bool {
	for _, known := range domain.ReflectionQuestions {
		if known == q {
			return true
		}
	}
	return false
}
