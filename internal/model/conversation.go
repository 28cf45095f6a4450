package model

import (
	"time"

	"gorm.io/datatypes"
)

// UnreadCounts maps a participant id to the number of messages they have not read
type UnreadCounts map[uint]int

// LastMessage is the denormalized snapshot of the newest message in a conversation
type LastMessage struct {
	MessageID uint       `json:"message_id,omitempty"`
	SenderID  uint       `json:"sender_id,omitempty"`
	Content   string     `json:"content,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// Conversation pairs two users for messaging.
// The pair is stored ordered (ParticipantOne < ParticipantTwo) under a unique index,
// so a pair can have at most one conversation.
type Conversation struct {
	ID             uint                             `json:"id" gorm:"primaryKey"`
	ParticipantOne uint                             `json:"-" gorm:"not null;uniqueIndex:idx_conversation_pair"`
	ParticipantTwo uint                             `json:"-" gorm:"not null;uniqueIndex:idx_conversation_pair;index"`
	LastMessage    datatypes.JSONType[LastMessage]  `json:"last_message"`
	UnreadCount    datatypes.JSONType[UnreadCounts] `json:"unread_count"`
	LastMessageAt  *time.Time                       `json:"last_message_at,omitempty" gorm:"index"`
	CreatedAt      time.Time                        `json:"created_at"`
	UpdatedAt      time.Time                        `json:"updated_at"`
}

// OrderedPair returns the two ids smallest first
func OrderedPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// NewConversation builds a conversation with an empty snapshot and zeroed counters
func NewConversation(a, b uint) *Conversation {
	one, two := OrderedPair(a, b)
	return &Conversation{
		ParticipantOne: one,
		ParticipantTwo: two,
		LastMessage:    datatypes.NewJSONType(LastMessage{}),
		UnreadCount:    datatypes.NewJSONType(UnreadCounts{one: 0, two: 0}),
	}
}

// Participants returns both participant ids
func (c *Conversation) Participants() []uint {
	return []uint{c.ParticipantOne, c.ParticipantTwo}
}

// HasParticipant reports whether userID takes part in the conversation
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.ParticipantOne == userID || c.ParticipantTwo == userID
}

// OtherParticipant returns the participant that is not userID
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.ParticipantOne == userID {
		return c.ParticipantTwo
	}
	return c.ParticipantOne
}

// Sanitize makes the unread counter keys equal the participant set and clamps negatives.
// It is idempotent and reports whether anything changed.
func (c *Conversation) Sanitize() bool {
	current := c.UnreadCount.Data()
	changed := len(current) != 2

	repaired := make(UnreadCounts, 2)
	for _, id := range c.Participants() {
		n, ok := current[id]
		if !ok || n < 0 {
			changed = true
			n = max(n, 0)
		}
		repaired[id] = n
	}

	c.UnreadCount = datatypes.NewJSONType(repaired)
	return changed
}

// Unread returns userID's unread counter
func (c *Conversation) Unread(userID uint) int {
	return c.UnreadCount.Data()[userID]
}

// RecordMessage zeroes the sender's counter, increments the other participant's counter
// and replaces the last message snapshot.
func (c *Conversation) RecordMessage(msg *Message) {
	c.Sanitize()
	counts := c.UnreadCount.Data()
	counts[msg.SenderID] = 0
	counts[c.OtherParticipant(msg.SenderID)]++
	c.UnreadCount = datatypes.NewJSONType(counts)

	sentAt := msg.CreatedAt
	c.LastMessage = datatypes.NewJSONType(LastMessage{
		MessageID: msg.ID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		SentAt:    &sentAt,
	})
	c.LastMessageAt = &sentAt
}

// MarkRead zeroes userID's counter
func (c *Conversation) MarkRead(userID uint) {
	c.Sanitize()
	counts := c.UnreadCount.Data()
	counts[userID] = 0
	c.UnreadCount = datatypes.NewJSONType(counts)
}

// Message belongs to a conversation
type Message struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	ConversationID uint       `json:"conversation_id" gorm:"index:idx_message_conversation_created;not null"`
	SenderID       uint       `json:"sender_id" gorm:"index;not null"`
	ReceiverID     uint       `json:"receiver_id" gorm:"index;not null"`
	Content        string     `json:"content" gorm:"type:text;not null"`
	IsRead         bool       `json:"is_read" gorm:"index"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index:idx_message_conversation_created"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
