package firestore

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mind-connect/internal/domain"
)

func fieldName(t *testing.T, doc any, field string) string {
	t.Helper()

	f, ok := reflect.TypeOf(doc).FieldByName(field)
	require.True(t, ok, field)
	name, _, _ := strings.Cut(f.Tag.Get("firestore"), ",")
	return name
}

func TestDocumentTimestampFields(t *testing.T) {
	assert.Equal(t, "timestamp", fieldName(t, moodLogDoc{}, "CreatedAt"))
	assert.Equal(t, "timestamp", fieldName(t, journalDoc{}, "CreatedAt"))
	assert.Equal(t, "timestamp", fieldName(t, messageDoc{}, "CreatedAt"))
	assert.Equal(t, "createdAt", fieldName(t, sessionDoc{}, "CreatedAt"))
}

func TestSenderMapping(t *testing.T) {
	assert.Equal(t, "ai", senderFor(domain.RoleAssistant))
	assert.Equal(t, "user", senderFor(domain.RoleUser))

	assert.Equal(t, domain.RoleAssistant, roleFor("ai"))
	assert.Equal(t, domain.RoleUser, roleFor("user"))
	assert.Equal(t, domain.RoleAssistant, roleFor(senderFor(domain.RoleAssistant)))
}

func TestMessageDecoder(t *testing.T) {
	at := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	msg := messageDecoder("s1")("m1", messageDoc{Sender: "ai", Text: "I'm listening.", CreatedAt: at})
	assert.Equal(t, &domain.Message{
		ID:        "m1",
		SessionID: "s1",
		Author:    domain.RoleAssistant,
		Text:      "I'm listening.",
		CreatedAt: at,
	}, msg)

	msg = messageDecoder("s1")("m2", messageDoc{Sender: "user", Text: "hi"})
	assert.Equal(t, domain.RoleUser, msg.Author)
}
