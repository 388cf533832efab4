package apperr

// Auth provider error codes.
const (
	CodeWrongPassword   = "auth/wrong-password"
	CodeUserNotFound    = "auth/user-not-found"
	CodeTooManyRequests = "auth/too-many-requests"
	CodeEmailInUse      = "auth/email-already-in-use"
	CodeInvalidEmail    = "auth/invalid-email"
	CodeWeakPassword    = "auth/weak-password"
)

var authMessages = map[string]string{
	CodeWrongPassword:   "Incorrect password. Please try again.",
	CodeUserNotFound:    "No account found with this email.",
	CodeTooManyRequests: "Too many failed attempts. Please try again later.",
	CodeEmailInUse:      "An account with this email already exists.",
	CodeInvalidEmail:    "Please enter a valid email address.",
	CodeWeakPassword:    "Password must be at least 6 characters.",
}

// Auth builds an authentication error whose message is the human string
// for code.
func Auth(code string) *Error {
	msg, ok := authMessages[code]
	if !ok {
		msg = "Authentication failed."
	}
	return &Error{Kind: KindAuth, Code: code, Message: msg}
}

// AuthMessage returns the human string for an auth code.
func AuthMessage(code string) string {
	return Auth(code).Message
}
