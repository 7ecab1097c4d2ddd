package events

import "log/slog"

// Observer receives delivery outcomes for observability. It is the only
// place handler failures surface; the publisher never sees them.
// Implementations must be safe for concurrent use.
type Observer interface {
	// DeliverySucceeded is called once per delivery that completed.
	DeliverySucceeded(evt Event, d HandlerDescriptor, attempt int)

	// DeliverySkipped is called when the idempotency store reports the
	// (handler, key) pair as already completed.
	DeliverySkipped(evt Event, d HandlerDescriptor, key string)

	// DeliveryFailed is called once per failed attempt. The final call
	// for a delivery carries Exhausted=true.
	DeliveryFailed(evt Event, d HandlerDescriptor, derr *DeliveryError)
}

// slogObserver logs delivery outcomes with structured fields. It is the
// default Observer.
type slogObserver struct {
	logger *slog.Logger
}

func (o slogObserver) DeliverySucceeded(evt Event, d HandlerDescriptor, attempt int) {
	o.logger.Info("event handler completed",
		"event_name", evt.Name,
		"event_id", evt.EventID,
		"module", d.Module,
		"handler_id", d.HandlerID,
		"attempt", attempt)
}

func (o slogObserver) DeliverySkipped(evt Event, d HandlerDescriptor, key string) {
	o.logger.Debug("event handler skipped, already completed",
		"event_name", evt.Name,
		"event_id", evt.EventID,
		"module", d.Module,
		"handler_id", d.HandlerID,
		"idempotency_key", key)
}

func (o slogObserver) DeliveryFailed(evt Event, d HandlerDescriptor, derr *DeliveryError) {
	if derr.Exhausted {
		o.logger.Error("event handler exhausted",
			"event_name", evt.Name,
			"event_id", evt.EventID,
			"module", d.Module,
			"handler_id", d.HandlerID,
			"attempt", derr.Attempt,
			"error", derr.Err)
		return
	}
	o.logger.Warn("event handler attempt failed",
		"event_name", evt.Name,
		"event_id", evt.EventID,
		"module", d.Module,
		"handler_id", d.HandlerID,
		"attempt", derr.Attempt,
		"outcome", derr.Outcome.String(),
		"error", derr.Err)
}
