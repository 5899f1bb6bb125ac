package outbound

// Notifier delivers user-facing messages. Implementations must be safe for
// concurrent use: completions arrive from many goroutines.
type Notifier interface {
	Progress(message string)
	Success(message string)
	Warning(message string)
	Error(message string)
}
