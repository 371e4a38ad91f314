//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"couple-chat/contract"
	"couple-chat/domain"
	"couple-chat/runtime"
)

type IChatService interface {
	RegisterUser(cmd domain.RegisterCommand) bool
	JoinRoom(cmd domain.JoinCommand, sink contract.EventSink) error
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) error
	Disconnect(connectionID domain.ConnectionID)
	GetMessages(ctx context.Context, query domain.GetMessagesQuery) ([]domain.Message, error)
	DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error
	SearchMessages(ctx context.Context, query domain.SearchQuery) ([]domain.Message, error)
}

type ChatService struct {
	orchestrator *runtime.Orchestrator
}

var _ IChatService = (*ChatService)(nil)

func NewChatService(o *runtime.Orchestrator) *ChatService {
	return &ChatService{orchestrator: o}
}

func (s *ChatService) RegisterUser(cmd domain.RegisterCommand) bool {
	return s.orchestrator.RegisterUser(cmd)
}

func (s *ChatService) JoinRoom(cmd domain.JoinCommand, sink contract.EventSink) error {
	return s.orchestrator.JoinRoom(cmd, sink)
}

func (s *ChatService) SendMessage(ctx context.Context, cmd domain.SendMessageCommand) error {
	return s.orchestrator.Deliver(ctx, cmd)
}

func (s *ChatService) Disconnect(connectionID domain.ConnectionID) {
	s.orchestrator.Disconnect(connectionID)
}

func (s *ChatService) GetMessages(ctx context.Context, query domain.GetMessagesQuery) ([]domain.Message, error) {
	return s.orchestrator.GetMessages(ctx, query)
}

func (s *ChatService) DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	return s.orchestrator.DeleteMessage(ctx, cmd)
}

func (s *ChatService) SearchMessages(ctx context.Context, query domain.SearchQuery) ([]domain.Message, error) {
	return s.orchestrator.SearchMessages(ctx, query)
}
