package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"
	"mentorship-service/pkg/logger"
	"mentorship-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxMessageLength = 5000

// ConversationView is a conversation as returned to one of its participants
type ConversationView struct {
	model.Conversation
	Participants     []uint             `json:"participants"`
	OtherParticipant *model.UserSummary `json:"other_participant,omitempty"`
}

// MessagePage is a window of messages, oldest first
type MessagePage struct {
	Messages   []model.Message `json:"messages"`
	Pagination Pagination      `json:"pagination"`
}

// ConversationService owns every write to a conversation's last message snapshot
// and unread counters.
type ConversationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db, now: time.Now}
}

// FindOrCreate returns the conversation between the caller and participantID, creating it
// when missing. The two users must share a pending or accepted mentorship. created reports
// whether a new row was inserted.
func (s *ConversationService) FindOrCreate(ctx context.Context, actor Actor, participantID uint) (view *ConversationView, created bool, err error) {
	if participantID == 0 {
		return nil, false, apperr.BadRequest("participant id is required")
	}
	if participantID == actor.ID {
		return nil, false, apperr.BadRequest("cannot start a conversation with yourself")
	}

	db := s.db.WithContext(ctx)

	var other model.User
	if err := db.First(&other, participantID).Error; err != nil {
		return nil, false, apperr.NotFoundOr(err, "user not found")
	}

	// Messaging requires a pending or active mentorship between the two
	ok, err := openMentorshipExists(db, actor.ID, participantID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, apperr.Forbidden("you can only message users you have an active mentorship with")
	}

	// Insert, or find the row a concurrent request created first
	one, two := model.OrderedPair(actor.ID, participantID)
	conv := model.NewConversation(one, two)
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(conv)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to create conversation: %w", res.Error)
	}
	created = res.RowsAffected > 0

	var stored model.Conversation
	if err := db.Where("participant_one = ? AND participant_two = ?", one, two).First(&stored).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load conversation: %w", err)
	}
	if err := s.repair(ctx, &stored); err != nil {
		return nil, false, err
	}

	if created {
		prometheus.ConversationsCreatedCounter.Inc()
		logger.FromCtx(ctx).Info("Conversation created",
			zap.Uint("conversation_id", stored.ID),
			zap.Uint("participant_one", one),
			zap.Uint("participant_two", two))
	}

	summary := other.Summary()
	return newConversationView(stored, &summary), created, nil
}

// List returns the caller's conversations, most recently active first
func (s *ConversationService) List(ctx context.Context, actor Actor, page Page) (PageResult[ConversationView], error) {
	query := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("participant_one = ? OR participant_two = ?", actor.ID, actor.ID)

	convs, err := paginate[model.Conversation](query, page, "COALESCE(last_message_at, created_at) DESC, id DESC")
	if err != nil {
		return PageResult[ConversationView]{}, fmt.Errorf("failed to list conversations: %w", err)
	}

	// Load the other participant of each conversation in one query
	others := make([]uint, 0, len(convs.Data))
	for _, c := range convs.Data {
		others = append(others, c.OtherParticipant(actor.ID))
	}
	summaries, err := s.summaries(ctx, others)
	if err != nil {
		return PageResult[ConversationView]{}, err
	}

	views := make([]ConversationView, 0, len(convs.Data))
	for _, c := range convs.Data {
		c.Sanitize()
		views = append(views, *newConversationView(c, summaries[c.OtherParticipant(actor.ID)]))
	}
	return PageResult[ConversationView]{Data: views, Pagination: convs.Pagination}, nil
}

// Get loads one of the caller's conversations
func (s *ConversationService) Get(ctx context.Context, actor Actor, id uint) (*ConversationView, error) {
	conv, err := s.load(s.db.WithContext(ctx), actor, id)
	if err != nil {
		return nil, err
	}
	conv.Sanitize()

	summaries, err := s.summaries(ctx, []uint{conv.OtherParticipant(actor.ID)})
	if err != nil {
		return nil, err
	}
	return newConversationView(*conv, summaries[conv.OtherParticipant(actor.ID)]), nil
}

// SendMessage stores a message from the caller and updates the conversation snapshot.
// The conversation row is locked for the duration so concurrent senders do not lose
// counter updates.
func (s *ConversationService) SendMessage(ctx context.Context, actor Actor, conversationID uint, content string) (*model.Message, error) {
	// Validate content
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.BadRequest("message content is required")
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, apperr.BadRequest(fmt.Sprintf("message content must be at most %d characters", maxMessageLength))
	}

	// Track database operation
	defer prometheus.TrackDBOperation("send_message")(time.Now())

	var msg *model.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := s.load(forUpdate(tx), actor, conversationID)
		if err != nil {
			return err
		}

		// Check the mentorship is still open
		receiver := conv.OtherParticipant(actor.ID)
		ok, err := openMentorshipExists(tx, actor.ID, receiver)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("you can only message users you have an active mentorship with")
		}

		msg = &model.Message{
			ConversationID: conv.ID,
			SenderID:       actor.ID,
			ReceiverID:     receiver,
			Content:        content,
			CreatedAt:      s.now().UTC(),
		}
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		// Update last message and the receiver's unread counter
		conv.RecordMessage(msg)
		return s.saveSnapshot(tx, conv)
	})
	if err != nil {
		return nil, err
	}

	// Update metrics
	prometheus.MessagesSentCounter.Inc()
	return msg, nil
}

// ReadMessages returns a page of messages, newest page first, each page oldest first.
// With markAsRead the caller's unread messages are flipped and their counter zeroed
// inside one transaction before the page is read.
func (s *ConversationService) ReadMessages(ctx context.Context, actor Actor, conversationID uint, page Page, markAsRead bool) (*MessagePage, error) {
	if markAsRead {
		if err := s.MarkRead(ctx, actor, conversationID); err != nil {
			return nil, err
		}
	} else if _, err := s.load(s.db.WithContext(ctx), actor, conversationID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&model.Message{}).Where("conversation_id = ?", conversationID)
	result, err := paginate[model.Message](query, page, "created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	// Reverse so each page reads oldest first
	msgs := result.Data
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return &MessagePage{Messages: msgs, Pagination: result.Pagination}, nil
}

// MarkRead flips every unread message addressed to the caller and zeroes their counter
func (s *ConversationService) MarkRead(ctx context.Context, actor Actor, conversationID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := s.load(forUpdate(tx), actor, conversationID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		err = tx.Model(&model.Message{}).
			Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conv.ID, actor.ID, false).
			Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
		if err != nil {
			return fmt.Errorf("failed to mark messages read: %w", err)
		}

		// Zero the counter in the same transaction
		conv.MarkRead(actor.ID)
		return s.saveSnapshot(tx, conv)
	})
}

// UnreadTotal sums the caller's unread counters over all conversations
func (s *ConversationService) UnreadTotal(ctx context.Context, actor Actor) (int, error) {
	var convs []model.Conversation
	err := s.db.WithContext(ctx).
		Where("participant_one = ? OR participant_two = ?", actor.ID, actor.ID).
		Find(&convs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load conversations: %w", err)
	}

	total := 0
	for i := range convs {
		convs[i].Sanitize()
		total += convs[i].Unread(actor.ID)
	}
	return total, nil
}

// load fetches a conversation the caller takes part in
func (s *ConversationService) load(db *gorm.DB, actor Actor, id uint) (*model.Conversation, error) {
	var conv model.Conversation
	if err := db.First(&conv, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "conversation not found")
	}
	if !conv.HasParticipant(actor.ID) {
		return nil, apperr.Forbidden("not authorized to access this conversation")
	}
	return &conv, nil
}

// repair persists the sanitized counters when they had drifted
func (s *ConversationService) repair(ctx context.Context, conv *model.Conversation) error {
	if !conv.Sanitize() {
		return nil
	}
	logger.FromCtx(ctx).Warn("Repaired unread counters", zap.Uint("conversation_id", conv.ID))
	err := s.db.WithContext(ctx).Model(conv).Update("unread_count", conv.UnreadCount).Error
	if err != nil {
		return fmt.Errorf("failed to repair conversation: %w", err)
	}
	return nil
}

func (s *ConversationService) saveSnapshot(tx *gorm.DB, conv *model.Conversation) error {
	conv.Sanitize()
	err := tx.Model(conv).Updates(map[string]interface{}{
		"last_message":    conv.LastMessage,
		"unread_count":    conv.UnreadCount,
		"last_message_at": conv.LastMessageAt,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return nil
}

func (s *ConversationService) summaries(ctx context.Context, ids []uint) (map[uint]*model.UserSummary, error) {
	out := make(map[uint]*model.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	for i := range users {
		summary := users[i].Summary()
		out[users[i].ID] = &summary
	}
	return out, nil
}

func newConversationView(conv model.Conversation, other *model.UserSummary) *ConversationView {
	return &ConversationView{
		Conversation:     conv,
		Participants:     conv.Participants(),
		OtherParticipant: other,
	}
}
