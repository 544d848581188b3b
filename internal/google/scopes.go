package google

// DefaultOAuthScopes are the Google OAuth scopes the scheduler needs.
//
// The scopes provide access to:
//   - Gmail: read and modify (unread/label state), send replies
//   - Google Calendar: free/busy queries
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail scopes
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.send",

	// Google Calendar scope (freebusy needs read access only)
	"https://www.googleapis.com/auth/calendar.readonly",
}
