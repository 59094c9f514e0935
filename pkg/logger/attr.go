package logger

import (
	"log/slog"
	"strconv"
	"strings"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the signed-in user identifier under the key "user_id".
// Empty ids produce an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Attempt records an attempt sequence number and its correlation id.
func Attempt(seq uint64, correlationID string) slog.Attr {
	return Group("attempt",
		slog.Uint64("seq", seq),
		slog.String("id", correlationID),
	)
}

// Phase records the flow phase under the key "phase".
func Phase(name string) slog.Attr {
	return slog.String("phase", name)
}

// Phone records a masked phone number under the key "phone".
func Phone(number string) slog.Attr {
	return slog.String("phone", MaskPhone(number))
}

// MaskPhone keeps a leading '+' with up to three digits of the dial prefix and
// the last two digits; everything in between is replaced with '*'.
func MaskPhone(number string) string {
	n := len(number)
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	head := 0
	if number[0] == '+' {
		head = 1
	}
	for head < n-2 && head < 4 && number[head] >= '0' && number[head] <= '9' {
		head++
	}
	return number[:head] + strings.Repeat("*", n-head-2) + number[n-2:]
}

// NoticeID records a notice identifier under the key "notice_id".
// Empty ids produce an empty Attr.
func NoticeID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notice_id", id)
}

// Transition records a state machine transition.
func Transition(from, to, event string) slog.Attr {
	return Group("transition",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("event", event),
	)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Backend records the persistence backend under the key "backend".
func Backend(name string) slog.Attr {
	return slog.String("backend", name)
}
