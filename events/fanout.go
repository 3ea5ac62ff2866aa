package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuscarry/campuscarry-api/metrics"
	"go.uber.org/zap"
)

type sink struct {
	name     string
	notifier Notifier
}

// Fanout delivers every event to each registered sink in registration order
type Fanout struct {
	sinks  []sink
	logger *zap.Logger
}

func NewFanout(logger *zap.Logger) *Fanout {
	return &Fanout{logger: logger}
}

// Add registers a sink under a name used in logs and metrics
func (f *Fanout) Add(name string, n Notifier) *Fanout {
	f.sinks = append(f.sinks, sink{name: name, notifier: n})
	return f
}

// Sinks returns the registered sink names
func (f *Fanout) Sinks() []string {
	names := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		names = append(names, s.name)
	}
	return names
}

// Publish hands the event to every sink. One sink failing does not stop the others.
func (f *Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.notifier.Publish(ctx, event); err != nil {
			metrics.EventsPublishedTotal.WithLabelValues(s.name, "error").Inc()
			f.logger.Warn("event sink rejected event",
				zap.String("sink", s.name),
				zap.String("event", string(event.Name)),
				zap.Uint("match_id", event.MatchID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		metrics.EventsPublishedTotal.WithLabelValues(s.name, "ok").Inc()
	}
	return errors.Join(errs...)
}
