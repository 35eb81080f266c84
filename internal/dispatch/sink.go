package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/go-review-desk/internal/models"
)

// ErrInvalidEndpoint — неизвестный способ записи решений.
var ErrInvalidEndpoint = errors.New("invalid decision endpoint")

// Endpoint — способ записи решения на бэкенде.
type Endpoint string

const (
	// EndpointAction — POST /action для обоих действий.
	EndpointAction Endpoint = "action"
	// EndpointTag — POST /tag/<filename> для accept, POST /action для reject.
	EndpointTag Endpoint = "tag"
)

// ParseEndpoint разбирает способ записи; пустая строка -> EndpointAction.
func ParseEndpoint(s string) (Endpoint, error) {
	switch Endpoint(s) {
	case "", EndpointAction:
		return EndpointAction, nil
	case EndpointTag:
		return EndpointTag, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, s)
	}
}

// DecisionPoster — клиент бэкенда, умеющий записывать решения.
type DecisionPoster interface {
	SubmitAction(ctx context.Context, d models.Decision) error
	Tag(ctx context.Context, d models.Decision) error
}

// SinkFunc — адаптер функции к DecisionSink.
type SinkFunc func(ctx context.Context, d models.Decision) error

func (f SinkFunc) Submit(ctx context.Context, d models.Decision) error { return f(ctx, d) }

// NewBackendSink маршрутизирует решения в эндпоинт бэкенда согласно ep.
func NewBackendSink(p DecisionPoster, ep Endpoint) DecisionSink {
	return SinkFunc(func(ctx context.Context, d models.Decision) error {
		if ep == EndpointTag && d.Action == models.ActionAccept {
			return p.Tag(ctx, d)
		}

		return p.SubmitAction(ctx, d)
	})
}
