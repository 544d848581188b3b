package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/teemow/meetsched/internal/slots"
)

// DefaultModel is the Gemini model used for classification and ranking.
const DefaultModel = "gemini-2.5-flash"

// Client classifies message text and ranks candidate slots using the
// Gemini API. The model is treated as a black box: structured JSON in,
// structured JSON out, and anything unparseable fails the call.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates an oracle client. An empty model selects
// DefaultModel.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("oracle: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("oracle: failed to create genai client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Classify determines whether the message text is meeting-related and,
// if so, extracts dates, preferences and intent. A nil context with a
// nil error means the message is not meeting-related.
func (c *Client) Classify(ctx context.Context, text string, today time.Time, offset string) (*MeetingRequestContext, error) {
	prompt := classifyPrompt(text, today, offset)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return DecodeClassification(raw)
}

// Rank asks the model to pick the best concrete slots for the request,
// constrained to the free slots the engine computed. The model ranks
// and phrases; it never invents slots outside the constraint list.
func (c *Client) Rank(ctx context.Context, text string, today time.Time, offset string, free []slots.FreeSlot) (*MeetingRequestContext, error) {
	loc, err := slots.ParseOffset(offset)
	if err != nil {
		loc = time.UTC
	}

	prompt := rankPrompt(text, today, offset, slots.FormatList(free, loc))

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := DecodeClassification(raw)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.CandidateSlots) == 0 {
		return nil, fmt.Errorf("%w: ranking returned no candidate slots", ErrMalformedResponse)
	}
	return result, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("oracle: generate content failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}

func classifyPrompt(text string, today time.Time, offset string) string {
	return fmt.Sprintf(`You are a scheduling assistant. Today is %s and the user's timezone is UTC%s.

Decide whether the following email is a meeting request (asking to meet, call, schedule, reschedule, confirm or cancel an appointment).

If it is NOT meeting-related, respond with exactly: []

If it IS meeting-related, respond with a JSON object:
{
  "preferred_dates": ["YYYY-MM-DD", ...],
  "preferred_days": ["monday", ...],
  "preferred_time": "morning|afternoon|evening|HH:MM or empty",
  "intent": "propose|confirm|cancel|reschedule|vague",
  "meeting_type": "short description",
  "notes": "anything else relevant"
}

Resolve relative references like "Friday" or "tomorrow" into concrete dates after today. List every date the sender mentions.

Email:
%s`, today.Format("Monday, 2006-01-02"), offset, text)
}

func rankPrompt(text string, today time.Time, offset string, freeList string) string {
	return fmt.Sprintf(`You are a scheduling assistant. Today is %s and the user's timezone is UTC%s.

The sender wrote:
%s

These time slots are free (anything not listed is unavailable):
%s
Pick up to three slots that best match the sender's request. Only use slots from the list above. Respond with a JSON object:
{
  "candidate_slots": [
    {"date": "YYYY-MM-DD", "time_slot": "9:00 AM - 9:30 AM", "timezone": "%s"}
  ],
  "intent": "propose",
  "notes": "one sentence explaining the choice"
}`, today.Format("Monday, 2006-01-02"), offset, text, freeList, offset)
}
