// Package usecases holds the client-side application state.
// Each use case owns one view's state, talks to the backend through ports
// and reports failures through a ports.Notifier.
package usecases

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

var (
	// ErrSuperseded is returned by Ask when a newer question replaced the request.
	ErrSuperseded = errors.New("query superseded by a newer question")

	ErrNoFileURL         = errors.New("source has no file url")
	ErrFileNotAccessible = errors.New("file not accessible")
	ErrNoPreview         = errors.New("no preview open")
	ErrNoFileName        = errors.New("collection id and file name are required")
)

// discardNotifier drops notifications.
type discardNotifier struct{}

func (discardNotifier) Notify(entities.Notification) {}

func notifierOrDiscard(n ports.Notifier) ports.Notifier {
	if n == nil {
		return discardNotifier{}
	}
	return n
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func failure(title, description string) entities.Notification {
	return entities.Notification{Title: title, Description: description, Variant: entities.VariantDestructive}
}

func success(title, description string) entities.Notification {
	return entities.Notification{Title: title, Description: description, Variant: entities.VariantDefault}
}

// statusOf returns the backend status code carried by err, or 0.
func statusOf(err error) int {
	var sc ports.StatusCarrier
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

func isNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}
