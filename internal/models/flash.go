package models

// FlashKind is the severity of a transient notification.
type FlashKind int

const (
	FlashInfo FlashKind = iota
	FlashWarn
	FlashError
)

func (k FlashKind) String() string {
	switch k {
	case FlashWarn:
		return "warn"
	case FlashError:
		return "error"
	default:
		return "info"
	}
}

// Flash is a transient notification shown on the task page.
type Flash struct {
	Kind    FlashKind
	Message string
}
