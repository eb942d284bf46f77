package core

// Logger is implemented by the application loggers.
// args may hold errors and map[string]interface{} extras attached to the log entry.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the API client a log entry relates to.
type Person struct {
	ID   string
	Name string
}
