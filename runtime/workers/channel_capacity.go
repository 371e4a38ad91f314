package workers

import (
	"context"
	"couple-chat/domain/event"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// ChannelSource lists channels whose set changes over time, such as the
// outbound buffers of live connections.
type ChannelSource interface {
	Channels() []NamedChannel
}

// ChannelCapacityWorker periodically reports how full the telemetry channel
// and the connection sinks are. Reading len and cap is non-blocking, so this
// won't interfere with other goroutines. Samples are dropped when the telemetry
// channel is full.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	sources        []ChannelSource
	telemetryChan  chan event.Event
	metricInterval time.Duration
}

func NewChannelCapacityWorker(log *slog.Logger,
	channels []NamedChannel, telemetryChan chan event.Event,
	metricInterval time.Duration, sources ...ChannelSource) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log: log, channels: channels,
		sources:        sources,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping capacity sampling")
			return nil
		case <-ticker.C:
			channels := append([]NamedChannel(nil), w.channels...)
			for _, source := range w.sources {
				channels = append(channels, source.Channels()...)
			}
			for _, nc := range channels {
				v := reflect.ValueOf(nc.Channel)
				// Verify if this is a channel
				if v.Kind() != reflect.Chan {
					w.log.Error("Provided object is not a channel", "name", nc.Name)
					continue
				}
				capacity := v.Cap()
				length := v.Len()
				select {
				case <-ctx.Done():
					w.log.Debug("Context done, stopping capacity sampling")
					return nil
				case w.telemetryChan <- toCapacityEvent(nc.Name, capacity, length):
				default:
					w.log.Debug("Observability telemetry event lost")
				}
			}
		}
	}
}

func toCapacityEvent(name string, capacity, length int) event.Event {
	return event.Event{
		Type:      event.ChannelCapacityType,
		CreatedAt: time.Now().UTC(),
		Payload: event.ChannelCapacity{
			ChannelName: name,
			Capacity:    capacity,
			Length:      length,
		},
	}
}
