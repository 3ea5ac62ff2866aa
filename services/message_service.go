package services

import (
	"context"
	"strings"

	"github.com/campuscarry/campuscarry-api/events"
	"github.com/campuscarry/campuscarry-api/metrics"
	"github.com/campuscarry/campuscarry-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageService stores and lists the chat thread of a match
type MessageService struct {
	db       *gorm.DB
	notifier events.Notifier
	logger   *zap.Logger
}

func NewMessageService(db *gorm.DB, notifier events.Notifier, logger *zap.Logger) *MessageService {
	return &MessageService{db: db, notifier: notifier, logger: logger}
}

// SendMessage appends a message to the match thread and broadcasts it to the match room
func (s *MessageService) SendMessage(ctx context.Context, matchID, senderID uint, content string) (*models.Message, error) {
	db := s.db.WithContext(ctx)

	match, err := loadMatch(db, matchID)
	if err != nil {
		return nil, recordFailure(s.logger, "send_message", err)
	}
	if !IsParty(match, senderID) {
		return nil, forbidden("Not authorized to send messages in this match")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidInput("Message content is required")
	}

	message := models.Message{
		MatchID:  match.ID,
		SenderID: senderID,
		Content:  content,
	}
	if err := db.Omit("Sender").Create(&message).Error; err != nil {
		return nil, recordFailure(s.logger, "send_message", unexpected("failed to create message", err))
	}

	// reload so the broadcast carries the sender summary
	if err := db.Preload("Sender", models.UserSummary).First(&message, message.ID).Error; err != nil {
		return nil, recordFailure(s.logger, "send_message", unexpected("failed to load message", err))
	}
	metrics.MessagesSentTotal.Inc()

	if err := s.notifier.Publish(ctx, events.New(events.NewMessage, match.ID, message)); err != nil {
		s.logger.Warn("failed to publish message event",
			zap.Uint("match_id", match.ID),
			zap.Uint("message_id", message.ID),
			zap.Error(err),
		)
	}
	return &message, nil
}

// GetMessages returns the full thread of a match, oldest first, to one of its parties
func (s *MessageService) GetMessages(ctx context.Context, matchID, requesterID uint) ([]models.Message, error) {
	db := s.db.WithContext(ctx)

	match, err := loadMatch(db, matchID)
	if err != nil {
		return nil, recordFailure(s.logger, "get_messages", err)
	}
	if !IsParty(match, requesterID) {
		return nil, forbidden("Not authorized to view messages in this match")
	}

	messages := []models.Message{}
	if err := db.Where("match_id = ?", match.ID).
		Preload("Sender", models.UserSummary).
		Scopes(chronological).
		Find(&messages).Error; err != nil {
		return nil, recordFailure(s.logger, "get_messages", unexpected("failed to fetch messages", err))
	}
	return messages, nil
}
