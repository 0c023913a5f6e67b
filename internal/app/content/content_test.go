package content_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/mind-connect/internal/app/content"
)

func TestContentSizes(t *testing.T) {
	assert.Len(t, content.Affirmations, 20)
	assert.Len(t, content.LearnCards, 9)
	assert.NotEmpty(t, content.Helplines)
	assert.Len(t, content.Features, 4)
}

func TestAffirmationRotates(t *testing.T) {
	start := time.Unix(0, 0)
	assert.Equal(t, content.Affirmations[0], content.AffirmationAt(start))
	assert.Equal(t, content.Affirmations[0], content.AffirmationAt(start.Add(4*time.Second)))
	assert.Equal(t, content.Affirmations[1], content.AffirmationAt(start.Add(5*time.Second)))
	assert.Equal(t, content.Affirmations[0], content.AffirmationAt(start.Add(100*time.Second)))
}
