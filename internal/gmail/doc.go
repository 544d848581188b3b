// Package gmail provides the Gmail-backed message source and reply sink
// for the scheduling pipeline.
//
// The client exposes exactly the operations the pipeline needs:
//   - ListUnread: page through unread inbox message ids
//   - Get: fetch a message's threading headers and snippet
//   - MarkProcessed: remove the UNREAD (and optionally INBOX) label
//   - Reply: send a threaded plain-text reply
//
// Replies are built in RFC 2822 form with In-Reply-To and References
// headers so mail clients keep the conversation together, then sent
// base64url-encoded through the Gmail API with the original thread id.
//
// Authentication uses the injected TokenProvider from the google
// package; tokens are loaded per account from the file system.
package gmail
