// Package google handles OAuth2 authentication for the Google APIs the
// scheduler consumes (Gmail and Calendar).
//
// Tokens are stored per account as JSON files under the user cache
// directory (~/.cache/meetsched/ on Linux). The TokenProvider interface
// abstracts token storage so clients receive credentials by injection;
// refreshed tokens are written back to disk so restarts do not require
// re-authorization.
package google
