// Package notice delivers the user-visible messages produced by inventory
// actions: failures from the record backend and confirmations of mutations.
package notice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Time    time.Time `json:"time"`
}

// Notifier receives notices. Delivery is best effort; implementations log
// their own failures instead of returning them.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Log is a Notifier that can replay recent notices.
type Log interface {
	Notifier
	Recent(ctx context.Context, limit int) ([]Notice, error)
}

func New(level Level, message string) Notice {
	return Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		Time:    time.Now().UTC(),
	}
}

func Error(message string) Notice   { return New(LevelError, message) }
func Success(message string) Notice { return New(LevelSuccess, message) }
func Info(message string) Notice    { return New(LevelInfo, message) }

// FieldError builds the "<field>: <message>" notice shown for a rejected field.
func FieldError(field, message string) Notice {
	n := New(LevelError, field+": "+message)
	n.Field = field
	return n
}

// Fanout forwards every notice to each of its notifiers in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notice) {
	for _, target := range f {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Notice) {}
