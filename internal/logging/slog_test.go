package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	t.Run("non-nil error", func(t *testing.T) {
		attr := Err(errors.New("boom"))
		assert.Equal(t, KeyError, attr.Key)
		assert.Equal(t, "boom", attr.Value.String())
	})

	t.Run("nil error is omitted from output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		logger.Info("operation", Err(nil))
		assert.NotContains(t, buf.String(), KeyError)
	})
}

func TestAnonymizeEmail(t *testing.T) {
	assert.Equal(t, "", AnonymizeEmail(""))

	a := AnonymizeEmail("alice@example.com")
	b := AnonymizeEmail("alice@example.com")
	c := AnonymizeEmail("bob@example.com")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "user:")
	assert.NotContains(t, a, "alice")
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "plain address", email: "alice@example.com", want: "example.com"},
		{name: "empty", email: "", want: ""},
		{name: "no at sign", email: "not-an-email", want: ""},
		{name: "multiple at signs", email: "a@b@c", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDomain(tt.email))
		})
	}
}

func TestAttributeConstructors(t *testing.T) {
	assert.Equal(t, KeyOperation, Operation("poll").Key)
	assert.Equal(t, "poll", Operation("poll").Value.String())
	assert.Equal(t, KeyMessageID, MessageID("m1").Key)
	assert.Equal(t, KeyOutcome, Outcome("replied").Key)
	assert.Equal(t, KeyStatus, Status(StatusSuccess).Key)
	assert.Equal(t, KeyAccount, Account("default").Key)
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithOperation(WithService(logger, "gmail"), "list_unread").Info("hi")

	out := buf.String()
	assert.Contains(t, out, "service=gmail")
	assert.Contains(t, out, "operation=list_unread")
}
