package chat

// Level is the severity of a transient notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notifier shows transient notifications (toasts) to the user.
type Notifier interface {
	Notify(level Level, text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, text string)

func (f NotifierFunc) Notify(level Level, text string) {
	f(level, text)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Level, string) {}

func orDiscard(n Notifier) Notifier {
	if n == nil {
		return discardNotifier{}
	}
	return n
}
