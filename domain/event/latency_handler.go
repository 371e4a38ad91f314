package event

import (
	"couple-chat/errors"
	"log/slog"
	"time"
)

// LatencyHandler reports how long bundle writes take and warns when one
// goes over the threshold.
type LatencyHandler struct {
	log              *slog.Logger
	latencyThreshold time.Duration
}

func NewLatencyHandler(log *slog.Logger, latencyThreshold time.Duration) *LatencyHandler {
	return &LatencyHandler{log: log, latencyThreshold: latencyThreshold}
}

func (h *LatencyHandler) Handle(e Event) {
	if e.Type != PersistLatencyType {
		return
	}
	payload, ok := e.Payload.(PersistLatency)
	if !ok {
		h.log.Error(errors.ErrInvalidPayload.Error())
		return
	}
	h.log.Debug("telemetry: persist latency",
		"room_id", payload.Room,
		"latency_ms", payload.Duration.Milliseconds(),
	)
	if payload.Duration > h.latencyThreshold {
		h.log.Warn("high persist latency detected", "room_id", payload.Room, "latency", payload.Duration)
	}
}
