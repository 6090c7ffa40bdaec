package sync

// Task is one single-shot synchronization run. Execute mutates the content
// repository in place and reports what changed; it returns an error only
// when inputs are missing or unreadable, never for content that merely needs
// human follow-up.
type Task interface {
	Name() string
	Execute() (*Result, error)
}
