// Package runtime handles connection tracking, room membership and message delivery.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"couple-chat/contract"
	"couple-chat/domain"
	"couple-chat/domain/event"
	"couple-chat/errors"
	"couple-chat/infrastructure/search"
	"couple-chat/infrastructure/storage"
	"couple-chat/runtime/workers"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Orchestrator struct {
	mu                sync.Mutex
	log               *slog.Logger
	supervisor        contract.ISupervisor
	registry          contract.IConnectionRegistry
	membership        contract.IRoomMembership
	bundleRepository  storage.IBundleRepository
	messageIndex      search.IMessageIndex
	fanout            *workers.EventFanout
	telemetryEvents   chan event.Event
	roomLocks         *storage.KeyedMutex
	backgroundWorkers []contract.Worker
	persistTimeout    time.Duration
}

// NewOrchestrator wires the delivery pipeline. messageIndex may be nil,
// in which case search is unavailable and indexing is skipped.
func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IConnectionRegistry, membership contract.IRoomMembership,
	bundleRepository storage.IBundleRepository, messageIndex search.IMessageIndex,
	telemetryEvents chan event.Event, persistTimeout, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:              log,
		supervisor:       supervisor,
		registry:         registry,
		membership:       membership,
		bundleRepository: bundleRepository,
		messageIndex:     messageIndex,
		fanout:           workers.NewEventFanout(log, membership, sinkTimeout),
		telemetryEvents:  telemetryEvents,
		roomLocks:        storage.NewKeyedMutex(),
		persistTimeout:   persistTimeout,
	}
}

// Add registers background workers started with the orchestrator.
func (o *Orchestrator) Add(w ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.backgroundWorkers = append(o.backgroundWorkers, w...)
}

// RegisterUser links a user to the connection it registered from.
// Registering the same pair twice changes nothing.
func (o *Orchestrator) RegisterUser(cmd domain.RegisterCommand) bool {
	return o.registry.Register(cmd.UserID, cmd.ConnectionID)
}

// JoinRoom subscribes the connection's sink to the room.
// The user does not need to be registered first.
func (o *Orchestrator) JoinRoom(cmd domain.JoinCommand, sink contract.EventSink) error {
	if cmd.Room == "" {
		return fmt.Errorf("%w: %w", errors.ErrInvalidMessage, errors.ErrMissingRoom)
	}
	if err := o.membership.Subscribe(cmd.ConnectionID, cmd.Room, sink); err != nil {
		o.log.Warn("Join refused", "room_id", cmd.Room, "user_id", cmd.UserID, "connection_id", cmd.ConnectionID, "error", err)
		return err
	}
	o.log.Debug("Connection joined room", "room_id", cmd.Room, "user_id", cmd.UserID, "connection_id", cmd.ConnectionID)
	return nil
}

// Deliver validates, persists and broadcasts one message.
// Nothing is broadcast unless the message was durably stored first, and the
// sender's own connection never receives it back. Within a room, messages
// are broadcast in the order they were persisted.
func (o *Orchestrator) Deliver(ctx context.Context, cmd domain.SendMessageCommand) error {
	if err := cmd.Validate(); err != nil {
		o.log.Debug("Dropping invalid message", "room_id", cmd.Room, "connection_id", cmd.ConnectionID, "error", err)
		o.emit(event.SendDroppedType, event.SendDropped{Room: cmd.Room, Reason: err.Error()})
		return err
	}

	unlock := o.roomLocks.Lock(string(cmd.Room))
	defer unlock()

	start := time.Now()
	if err := o.persist(ctx, cmd); err != nil {
		o.log.Error("Message not persisted, nothing broadcast",
			"room_id", cmd.Room, "user_id", cmd.Message.SenderID, "error", err)
		o.emit(event.SendFailedType, event.SendFailed{Room: cmd.Room, SenderID: cmd.Message.SenderID, Reason: err.Error()})
		return err
	}
	o.emit(event.PersistLatencyType, event.PersistLatency{Room: cmd.Room, Duration: time.Since(start)})

	recipients := o.fanout.Fanout(ctx, event.MessageReceived{
		Room:    cmd.Room,
		Origin:  cmd.ConnectionID,
		Message: cmd.Message,
		Payload: cmd.Payload,
	}, cmd.ConnectionID)

	o.emit(event.MessageDeliveredType, event.MessageDelivered{
		Room:       cmd.Room,
		SenderID:   cmd.Message.SenderID,
		Recipients: recipients,
	})

	if o.messageIndex != nil {
		if err := o.messageIndex.Index(cmd.Room, cmd.Message); err != nil {
			o.log.Warn("Message stored but not indexed", "room_id", cmd.Room, "error", err)
		}
	}
	return nil
}

// persist runs the bundle write under persistTimeout. A write that outlives
// the timeout is reported as failed even if it commits later.
func (o *Orchestrator) persist(ctx context.Context, cmd domain.SendMessageCommand) error {
	ctx, cancel := context.WithTimeout(ctx, o.persistTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%w: panic: %v", errors.ErrPersistence, r)
			}
		}()
		_, err := o.bundleRepository.AppendOrCreate(ctx, cmd.Room, cmd.Message.SenderID, domain.EntryFromMessage(cmd.Message))
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		if errors.Is(err, errors.ErrPersistence) {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", errors.ErrPersistenceTimeout, err)
		}
		return fmt.Errorf("%w: %w", errors.ErrPersistence, err)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errors.ErrPersistenceTimeout, ctx.Err())
	}
}

// Disconnect forgets every user mapped to the connection and removes it
// from all rooms. Messages already persisted are kept.
func (o *Orchestrator) Disconnect(connectionID domain.ConnectionID) {
	users := o.registry.RemoveByConnection(connectionID)
	rooms := o.membership.UnsubscribeAll(connectionID)
	o.log.Debug("Connection closed", "connection_id", connectionID, "users", len(users), "rooms", len(rooms))
}

// GetMessages returns the full history of a room, oldest first.
func (o *Orchestrator) GetMessages(ctx context.Context, query domain.GetMessagesQuery) ([]domain.Message, error) {
	if query.Room == "" {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidMessage, errors.ErrMissingRoom)
	}
	messages, err := o.bundleRepository.ListByRoom(ctx, query.Room)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrPersistence, err)
	}
	return messages, nil
}

// DeleteMessage removes one stored message, identified by its exact creation time.
func (o *Orchestrator) DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	if cmd.Room == "" {
		return fmt.Errorf("%w: %w", errors.ErrInvalidMessage, errors.ErrMissingRoom)
	}
	if cmd.SenderID == "" {
		return fmt.Errorf("%w: %w", errors.ErrInvalidMessage, errors.ErrMissingSender)
	}
	removed, err := o.bundleRepository.DeleteMessage(ctx, cmd.Room, cmd.SenderID, cmd.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrPersistence, err)
	}
	if !removed {
		return errors.ErrMessageNotFound
	}
	if o.messageIndex != nil {
		if err := o.messageIndex.Remove(cmd.Room, cmd.SenderID, cmd.CreatedAt); err != nil {
			o.log.Warn("Message deleted but still indexed", "room_id", cmd.Room, "error", err)
		}
	}
	o.log.Info("Message deleted", "room_id", cmd.Room, "user_id", cmd.SenderID, "created_at", cmd.CreatedAt)
	return nil
}

// SearchMessages runs a full-text query inside one room.
func (o *Orchestrator) SearchMessages(ctx context.Context, query domain.SearchQuery) ([]domain.Message, error) {
	if query.Room == "" {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidMessage, errors.ErrMissingRoom)
	}
	if o.messageIndex == nil || query.Terms == "" {
		return nil, nil
	}
	return o.messageIndex.Search(ctx, query)
}

// Start hands the background workers to the supervisor and blocks until they stop.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	o.supervisor.Add(o.backgroundWorkers...)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
}

// emit never blocks the delivery path. Telemetry is dropped when the channel is full.
func (o *Orchestrator) emit(t event.Type, payload any) {
	if o.telemetryEvents == nil {
		return
	}
	select {
	case o.telemetryEvents <- event.Event{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}:
	default:
		o.log.Debug("Telemetry channel full, event lost", "type", t)
	}
}
