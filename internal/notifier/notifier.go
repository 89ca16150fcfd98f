// Package notifier delivers alert messages to chat and mail channels.
package notifier

import (
	"context"

	"SRSentinel/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Message is a channel-independent notification.
type Message struct {
	Subject string
	Body    string
}

// Sink delivers messages to one channel.
type Sink interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// LogSink writes messages to the log. Used when no channel is configured.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Notify(_ context.Context, msg Message) error {
	log.Info().Str("subject", msg.Subject).Msg(msg.Body)
	return nil
}

// Dispatcher fans a message out to every sink. Delivery failures are logged
// and counted; they are never returned to the caller.
type Dispatcher struct {
	sinks   []Sink
	metrics *metrics.Metrics
}

// NewDispatcher creates a dispatcher over sinks.
func NewDispatcher(m *metrics.Metrics, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, metrics: m}
}

// Add registers another sink.
func (d *Dispatcher) Add(s Sink) { d.sinks = append(d.sinks, s) }

// Len returns the number of sinks.
func (d *Dispatcher) Len() int { return len(d.sinks) }

// Dispatch sends msg to all sinks and returns how many succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) int {
	delivered := 0
	for _, s := range d.sinks {
		err := s.Notify(ctx, msg)
		d.metrics.CountAlert(s.Name(), err)
		if err != nil {
			log.Error().Err(err).Str("channel", s.Name()).Str("subject", msg.Subject).Msg("alert delivery failed")
			continue
		}
		delivered++
	}
	return delivered
}
