package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"zoodate/internal/domain"
	"zoodate/internal/models"

	"gorm.io/gorm"
)

// MessageStore is the persistence contract for chat messages.
type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	GetByClientToken(ctx context.Context, matchID uint, token string) (*models.Message, error)
	ListByMatchID(ctx context.Context, matchID uint, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, matchID, readerPetID uint) (int64, error)
	CountUnread(ctx context.Context, matchID, viewerPetID uint) (int64, error)
	LatestByMatchIDs(ctx context.Context, matchIDs []uint) (map[uint]models.Message, error)
	CountUnreadByMatchIDs(ctx context.Context, matchIDs []uint, viewerPetID uint) (map[uint]int64, error)
}

// PetDirectory resolves pets and their primary photos, batched.
type PetDirectory interface {
	GetByID(ctx context.Context, id uint) (*models.Pet, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Pet, error)
	PrimaryPhotoURLs(ctx context.Context, petIDs []uint) (map[uint]string, error)
}

// Notifier fans a payload out to live subscribers of a match.
// Implemented by ws.ChatHub; tests use a recording fake.
type Notifier interface {
	Publish(matchID uint, payload interface{})
	HasViewer(matchID, petID uint) bool
}

// MessageNotifier pushes "new message" to a pet owner who is not connected.
type MessageNotifier interface {
	NotifyNewMessage(ctx context.Context, userID, matchID uint, senderName, preview string) error
}

// PetSnippet is the counterpart identity shown in a conversation list.
type PetSnippet struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
}

// ConversationSummary combines a match with its counterpart, latest message,
// and unread count.
type ConversationSummary struct {
	Match       models.Match    `json:"match"`
	OtherPet    PetSnippet      `json:"other_pet"`
	LastMessage *models.Message `json:"last_message"`
	UnreadCount int64           `json:"unread_count"`
}

// ChatService owns message append, read tracking, and conversation listing.
type ChatService struct {
	messages MessageStore
	matches  *MatchService
	pets     PetDirectory
	notifier Notifier        // may be nil
	push     MessageNotifier // may be nil
}

func NewChatService(messages MessageStore, matches *MatchService, pets PetDirectory, notifier Notifier, push MessageNotifier) *ChatService {
	return &ChatService{messages: messages, matches: matches, pets: pets, notifier: notifier, push: push}
}

// SendMessage appends a message to the match's conversation and fans it out.
// clientToken is an optional idempotency key: resending with the same token
// returns the already-stored message instead of inserting a duplicate.
//
// Delivery side effects: the insertion is published to live subscribers; if
// the counterpart has the conversation open their read state transitions
// immediately (read-on-arrival), otherwise a push notification goes out.
func (s *ChatService) SendMessage(ctx context.Context, matchID, senderPetID uint, text, clientToken string) (*models.Message, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > domain.MaxMessageLen {
		return nil, domain.ErrMessageTooLong
	}

	match, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(senderPetID) {
		return nil, domain.ErrNotAParticipant
	}

	if clientToken != "" {
		existing, err := s.messages.GetByClientToken(ctx, matchID, clientToken)
		if err != nil {
			return nil, domain.Transient(err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	msg := &models.Message{
		MatchID:     matchID,
		SenderPetID: senderPetID,
		Content:     content,
	}
	if clientToken != "" {
		msg.ClientToken = &clientToken
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && clientToken != "" {
			// Concurrent retry with the same token; the stored row wins.
			existing, gerr := s.messages.GetByClientToken(ctx, matchID, clientToken)
			if gerr != nil || existing == nil {
				return nil, domain.Transient(err)
			}
			return existing, nil
		}
		return nil, domain.Transient(err)
	}

	s.deliver(ctx, match, msg)
	return msg, nil
}

func (s *ChatService) deliver(ctx context.Context, match *models.Match, msg *models.Message) {
	if s.notifier != nil {
		s.notifier.Publish(match.ID, map[string]interface{}{
			"type":          "message",
			"id":            msg.ID,
			"match_id":      msg.MatchID,
			"sender_pet_id": msg.SenderPetID,
			"content":       msg.Content,
			"created_at":    msg.CreatedAt,
		})
	}
	other := match.CounterpartOf(msg.SenderPetID)
	if s.notifier != nil && s.notifier.HasViewer(match.ID, other) {
		// Conversation is open on the other side: read-on-arrival.
		_, _ = s.messages.MarkRead(ctx, match.ID, other)
		return
	}
	if s.push == nil {
		return
	}
	otherPet, err := s.pets.GetByID(ctx, other)
	if err != nil {
		return
	}
	sender, err := s.pets.GetByID(ctx, msg.SenderPetID)
	if err != nil {
		return
	}
	_ = s.push.NotifyNewMessage(ctx, otherPet.UserID, match.ID, sender.Name, preview(msg.Content))
}

func preview(content string) string {
	const max = 80
	if utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	return string(runes[:max])
}

// ListMessages returns a page of the match's messages in insertion order for
// a participant, marking everything from the counterpart as read first (the
// single read policy: any view of the conversation is a full read receipt).
// Marking before the fetch keeps the returned rows consistent with the read
// state the call just produced.
func (s *ChatService) ListMessages(ctx context.Context, matchID, viewerPetID uint, limit, offset int) ([]models.Message, error) {
	match, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(viewerPetID) {
		return nil, domain.ErrNotAParticipant
	}
	if limit <= 0 {
		limit = 50
	}
	if _, err := s.messages.MarkRead(ctx, matchID, viewerPetID); err != nil {
		return nil, domain.Transient(err)
	}
	list, err := s.messages.ListByMatchID(ctx, matchID, limit, offset)
	if err != nil {
		return nil, domain.Transient(err)
	}
	return list, nil
}

// MarkRead transitions every unread counterpart message in the match to read.
// Idempotent: with nothing unread it returns 0.
func (s *ChatService) MarkRead(ctx context.Context, matchID, readerPetID uint) (int64, error) {
	match, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return 0, err
	}
	if !match.HasParticipant(readerPetID) {
		return 0, domain.ErrNotAParticipant
	}
	n, err := s.messages.MarkRead(ctx, matchID, readerPetID)
	if err != nil {
		return 0, domain.Transient(err)
	}
	return n, nil
}

// UnreadCountFor counts counterpart messages the viewer has not read,
// recomputed freshly on each call.
func (s *ChatService) UnreadCountFor(ctx context.Context, matchID, viewerPetID uint) (int64, error) {
	match, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return 0, err
	}
	if !match.HasParticipant(viewerPetID) {
		return 0, domain.ErrNotAParticipant
	}
	c, err := s.messages.CountUnread(ctx, matchID, viewerPetID)
	if err != nil {
		return 0, domain.Transient(err)
	}
	return c, nil
}

// ListConversationSummaries enumerates the viewer's conversations enriched
// with counterpart identity, primary photo, latest message, and unread count,
// ordered by most recent message (match creation when no messages exist yet).
// Enrichment is a constant number of batched queries, not one round-trip per
// match.
func (s *ChatService) ListConversationSummaries(ctx context.Context, viewerPetID uint) ([]ConversationSummary, error) {
	matches, err := s.matches.ListMatchesForPet(ctx, viewerPetID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []ConversationSummary{}, nil
	}

	matchIDs := make([]uint, 0, len(matches))
	otherIDs := make([]uint, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
		otherIDs = append(otherIDs, m.CounterpartOf(viewerPetID))
	}

	pets, err := s.pets.GetByIDs(ctx, otherIDs)
	if err != nil {
		return nil, domain.Transient(err)
	}
	photos, err := s.pets.PrimaryPhotoURLs(ctx, otherIDs)
	if err != nil {
		return nil, domain.Transient(err)
	}
	latest, err := s.messages.LatestByMatchIDs(ctx, matchIDs)
	if err != nil {
		return nil, domain.Transient(err)
	}
	unread, err := s.messages.CountUnreadByMatchIDs(ctx, matchIDs, viewerPetID)
	if err != nil {
		return nil, domain.Transient(err)
	}

	out := make([]ConversationSummary, 0, len(matches))
	for _, m := range matches {
		otherID := m.CounterpartOf(viewerPetID)
		summary := ConversationSummary{
			Match:       m,
			UnreadCount: unread[m.ID],
		}
		if p, ok := pets[otherID]; ok {
			summary.OtherPet = PetSnippet{ID: p.ID, Name: p.Name, PhotoURL: photos[otherID]}
		}
		if lm, ok := latest[m.ID]; ok {
			msg := lm
			summary.LastMessage = &msg
		}
		out = append(out, summary)
	}

	sort.Slice(out, func(i, j int) bool {
		ti, tj := activityTime(out[i]), activityTime(out[j])
		if ti.Equal(tj) {
			return out[i].Match.ID > out[j].Match.ID
		}
		return ti.After(tj)
	})
	return out, nil
}

func activityTime(s ConversationSummary) time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.Match.CreatedAt
}
