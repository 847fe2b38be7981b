package notifier

// TextNotifier is the only notification surface the trading loop depends on.
type TextNotifier interface {
	SendText(text string) error
}

// Nop discards every message. Used when no channel is configured.
type Nop struct{}

func (Nop) SendText(string) error { return nil }
