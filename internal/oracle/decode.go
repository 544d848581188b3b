package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse indicates the model returned output that could
// not be decoded into either recognized response shape. Callers must
// fail the classification rather than guess.
var ErrMalformedResponse = errors.New("oracle: malformed model response")

// DecodeClassification decodes a model response into a
// MeetingRequestContext. Two shapes are recognized:
//
//   - the legacy shape, a bare JSON array of calendar dates
//     (["2025-07-25", ...]), normalized into PreferredDates;
//   - the current shape, a structured MeetingRequestContext object.
//
// An empty array, empty object or empty string decodes to (nil, nil),
// meaning the message is not meeting-related. Anything else that fails
// to decode returns ErrMalformedResponse.
func DecodeClassification(raw string) (*MeetingRequestContext, error) {
	raw = stripCodeFence(raw)
	if raw == "" {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var dates []string
		if err := json.Unmarshal([]byte(raw), &dates); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if len(dates) == 0 {
			return nil, nil
		}
		return &MeetingRequestContext{
			PreferredDates: dates,
			Intent:         IntentVague,
		}, nil

	case '{':
		var ctx MeetingRequestContext
		if err := json.Unmarshal([]byte(raw), &ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if ctx.IsEmpty() {
			return nil, nil
		}
		return &ctx, nil
	}

	return nil, fmt.Errorf("%w: unexpected leading byte %q", ErrMalformedResponse, raw[0])
}

// stripCodeFence removes a surrounding markdown code fence, which
// models emit even when asked for raw JSON.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	raw = strings.TrimPrefix(raw, "```")
	if idx := strings.Index(raw, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		raw = raw[idx+1:]
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}
