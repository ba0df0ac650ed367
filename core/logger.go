package core

// Logger is any leveled logger the app can report to.
// Implementations may inspect args for known types (eg. a user.User to tag
// the reported error with the acting user).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
