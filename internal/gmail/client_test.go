package gmail

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

func TestReplyValidation(t *testing.T) {
	tests := []struct {
		name        string
		original    *Message
		body        string
		errContains string
	}{
		{
			name:        "nil original",
			original:    nil,
			body:        "hi",
			errContains: "original message is required",
		},
		{
			name:        "missing id",
			original:    &Message{From: "a@example.com"},
			body:        "hi",
			errContains: "original message is required",
		},
		{
			name:        "missing from",
			original:    &Message{ID: "m1"},
			body:        "hi",
			errContains: "no From header",
		},
		{
			name:        "missing body",
			original:    &Message{ID: "m1", From: "a@example.com"},
			body:        "",
			errContains: "body is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Validation fails before any API call is attempted.
			c := &Client{}
			_, err := c.Reply(context.Background(), tt.original, tt.body)
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestNewClientForAccountWithProviderNilProvider(t *testing.T) {
	_, err := NewClientForAccountWithProvider(context.Background(), "default", nil)
	assert.ErrorContains(t, err, "token provider cannot be nil")
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "bad request", err: &googleapi.Error{Code: 400}, want: true},
		{name: "not found", err: &googleapi.Error{Code: 404}, want: true},
		{name: "unauthorized", err: &googleapi.Error{Code: 401}, want: false},
		{name: "rate limited", err: &googleapi.Error{Code: 429}, want: false},
		{name: "server error", err: &googleapi.Error{Code: 500}, want: false},
		{name: "wrapped not found", err: fmt.Errorf("get: %w", &googleapi.Error{Code: 404}), want: true},
		{name: "plain network error", err: errors.New("connection reset"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPermanent(tt.err))
		})
	}
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "Alice <alice@example.com>"},
				{Name: "Subject", Value: "Catch up"},
				{Name: "Message-ID", Value: "<abc@mail.example.com>"},
			},
		},
	}

	assert.Equal(t, "Alice <alice@example.com>", headerValue(msg, "From"))
	assert.Equal(t, "Catch up", headerValue(msg, "Subject"))
	assert.Equal(t, "", headerValue(msg, "X-Missing"))
	assert.Equal(t, "", headerValue(nil, "From"))
	assert.Equal(t, "", headerValue(&gmail.Message{}, "From"))
}

func TestEncodeRFC2047(t *testing.T) {
	assert.Equal(t, "plain subject", encodeRFC2047("plain subject"))

	encoded := encodeRFC2047("Grüße aus München")
	assert.Contains(t, encoded, "=?UTF-8?")
}
