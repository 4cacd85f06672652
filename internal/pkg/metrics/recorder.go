// Package metrics exposes the saga counters scraped from /metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "beer_order"

// Recorder owns the saga collectors. All methods are safe on a nil receiver so
// components can run without metrics in tests.
type Recorder struct {
	transitions      *prometheus.CounterVec
	rejectedEvents   *prometheus.CounterVec
	dispatched       *prometheus.CounterVec
	dispatchFailures *prometheus.CounterVec
	waitExhausted    prometheus.Counter
	staleOrders      *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_transitions_total",
			Help:      "Committed order state transitions.",
		}, []string{"from", "to", "event"}),
		rejectedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_rejected_events_total",
			Help:      "Events dropped because the order state had no matching transition.",
		}, []string{"state", "event"}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_commands_dispatched_total",
			Help:      "Outbound commands handed to the command channel.",
		}, []string{"command"}),
		dispatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_dispatch_failures_total",
			Help:      "Outbound command sends that failed and were left to the outbox relay.",
		}, []string{"command"}),
		waitExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_consistency_wait_exhausted_total",
			Help:      "Consistency waits that gave up before observing the expected status.",
		}),
		staleOrders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_stale_orders_total",
			Help:      "Orders found waiting longer than the pending timeout by the stale order sweep.",
		}, []string{"state"}),
	}

	if err := errors.Join(
		reg.Register(r.transitions),
		reg.Register(r.rejectedEvents),
		reg.Register(r.dispatched),
		reg.Register(r.dispatchFailures),
		reg.Register(r.waitExhausted),
		reg.Register(r.staleOrders),
	); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Recorder) Transition(from, to, event string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(from, to, event).Inc()
}

func (r *Recorder) RejectedEvent(state, event string) {
	if r == nil {
		return
	}
	r.rejectedEvents.WithLabelValues(state, event).Inc()
}

func (r *Recorder) CommandDispatched(command string) {
	if r == nil {
		return
	}
	r.dispatched.WithLabelValues(command).Inc()
}

func (r *Recorder) DispatchFailed(command string) {
	if r == nil {
		return
	}
	r.dispatchFailures.WithLabelValues(command).Inc()
}

func (r *Recorder) ConsistencyWaitExhausted() {
	if r == nil {
		return
	}
	r.waitExhausted.Inc()
}

func (r *Recorder) StaleOrder(state string) {
	if r == nil {
		return
	}
	r.staleOrders.WithLabelValues(state).Inc()
}
