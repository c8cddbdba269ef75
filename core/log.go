package core

// Logger is any service that can log leveled messages.
// Implementations may treat a user record passed in args specially
// (e.g. attaching the person to an error report).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
