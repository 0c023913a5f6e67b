package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

func TestLabelForBoundaries(t *testing.T) {
	cases := map[int]domain.MoodLabel{
		0:   domain.MoodVeryBad,
		19:  domain.MoodVeryBad,
		20:  domain.MoodBad,
		39:  domain.MoodBad,
		40:  domain.MoodOkay,
		59:  domain.MoodOkay,
		60:  domain.MoodGood,
		79:  domain.MoodGood,
		80:  domain.MoodGreat,
		100: domain.MoodGreat,
	}
	for v, want := range cases {
		assert.Equal(t, want, domain.LabelFor(v), "value %d", v)
	}
}

func TestLabelForPartitionsRange(t *testing.T) {
	seen := map[domain.MoodLabel]int{}
	prev := domain.LabelFor(0)
	changes := 0
	for v := 0; v <= 100; v++ {
		l := domain.LabelFor(v)
		seen[l]++
		if l != prev {
			changes++
			prev = l
		}
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 4, changes, "labels must form contiguous bands")
	assert.Equal(t, 20, seen[domain.MoodVeryBad])
	assert.Equal(t, 21, seen[domain.MoodGreat])
}

func TestValidMoodValue(t *testing.T) {
	assert.True(t, domain.ValidMoodValue(0))
	assert.True(t, domain.ValidMoodValue(100))
	assert.False(t, domain.ValidMoodValue(-1))
	assert.False(t, domain.ValidMoodValue(101))
}
