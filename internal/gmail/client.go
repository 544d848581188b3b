package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/meetsched/internal/google"
	"github.com/teemow/meetsched/internal/instrumentation"
)

// unreadQuery selects the messages the pipeline polls for.
const unreadQuery = "is:unread in:inbox"

// Client wraps the Gmail Users service. It implements both the message
// source (list/get/mark processed) and the reply sink for the pipeline.
type Client struct {
	svc     *gmail.UsersService
	account string
	metrics *instrumentation.Metrics
}

// WithMetrics attaches a metrics recorder to the client. API calls are
// recorded per operation. Returns the client for chaining.
func (c *Client) WithMetrics(m *instrumentation.Metrics) *Client {
	if m != nil {
		c.metrics = m
	}
	return c
}

// instrument opens a span for one Gmail API operation and returns a
// completion func that closes the span and records the metric.
func (c *Client) instrument(ctx context.Context, operation string) (context.Context, func(err error)) {
	start := time.Now()
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, operation)

	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, operation, status, time.Since(start))
	}
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewClientForAccountWithProvider creates a new Gmail client with OAuth2
// authentication for a specific account. The OAuth token is retrieved
// from the provided token provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf := google.GetOAuthConfig()
	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		account: account,
		metrics: &instrumentation.Metrics{},
	}, nil
}

// NewClientForAccount creates a new Gmail client with OAuth2
// authentication for a specific account, using the default file-based
// token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClient creates a new Gmail client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// ListUnread lists the ids of unread inbox messages, newest first,
// fetching up to maxResults ids across pages.
func (c *Client) ListUnread(ctx context.Context, maxResults int64) (ids []string, err error) {
	ctx, done := c.instrument(ctx, instrumentation.OperationList)
	defer func() { done(err) }()

	pageToken := ""

	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}

		// Gmail API caps page size at 100.
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(unreadQuery).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list unread messages: %w", err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" || int64(len(ids)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// Get fetches a message and extracts the headers and snippet the
// pipeline needs.
func (c *Client) Get(ctx context.Context, id string) (msg *Message, err error) {
	ctx, done := c.instrument(ctx, instrumentation.OperationGet)
	defer func() { done(err) }()

	m, err := c.svc.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	return &Message{
		ID:         m.Id,
		ThreadID:   m.ThreadId,
		MessageID:  headerValue(m, "Message-ID"),
		References: headerValue(m, "References"),
		From:       headerValue(m, "From"),
		Subject:    headerValue(m, "Subject"),
		Snippet:    m.Snippet,
	}, nil
}

// MarkProcessed removes the UNREAD label from a message, and the INBOX
// label as well when archive is set. Removing an absent label is a
// no-op on the Gmail side, so the call is idempotent.
func (c *Client) MarkProcessed(ctx context.Context, id string, archive bool) (err error) {
	ctx, done := c.instrument(ctx, instrumentation.OperationModify)
	defer func() { done(err) }()

	remove := []string{"UNREAD"}
	if archive {
		remove = append(remove, "INBOX")
	}

	_, err = c.svc.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to mark message %s processed: %w", id, err)
	}
	return nil
}

// Reply sends a plain-text reply to the original message, preserving
// the thread via the In-Reply-To and References headers.
func (c *Client) Reply(ctx context.Context, original *Message, body string) (sentID string, err error) {
	ctx, done := c.instrument(ctx, instrumentation.OperationSend)
	defer func() { done(err) }()

	if original == nil || original.ID == "" {
		return "", fmt.Errorf("original message is required")
	}
	if original.From == "" {
		return "", fmt.Errorf("original message has no From header")
	}
	if body == "" {
		return "", fmt.Errorf("body is required")
	}

	subject := original.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	references := original.References
	if original.MessageID != "" {
		if references != "" {
			references += " "
		}
		references += original.MessageID
	}

	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(original.From)
	b.WriteString("\r\n")
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(subject))
	b.WriteString("\r\n")
	if original.MessageID != "" {
		b.WriteString("In-Reply-To: ")
		b.WriteString(original.MessageID)
		b.WriteString("\r\n")
	}
	if references != "" {
		b.WriteString("References: ")
		b.WriteString(references)
		b.WriteString("\r\n")
	}
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	raw := base64.URLEncoding.EncodeToString([]byte(b.String()))

	sent, err := c.svc.Messages.Send("me", &gmail.Message{
		Raw:      raw,
		ThreadId: original.ThreadID,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send reply: %w", err)
	}

	return sent.Id, nil
}

// encodeRFC2047 encodes a string for use in email headers according to
// RFC 2047. This is necessary for non-ASCII characters in subjects.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}
