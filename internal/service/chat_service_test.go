package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"zoodate/internal/domain"
	"zoodate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	svc      *ChatService
	store    *memStore
	matches  *memMatchStore
	messages *memMessageStore
	notifier *fakeNotifier
	push     *fakePush

	rex, luna models.Pet
	match     *models.Match
}

func setupChatTest(t *testing.T) *chatFixture {
	t.Helper()
	store := newMemStore()
	matchStore := newMemMatchStore()
	messageStore := newMemMessageStore()
	notifier := newFakeNotifier()
	push := &fakePush{}
	matchSvc := NewMatchService(matchStore)

	rex := store.addPet("Rex", 1)
	luna := store.addPet("Luna", 2)
	match, err := matchSvc.GetOrCreateMatch(context.Background(), rex.ID, luna.ID)
	require.NoError(t, err)

	return &chatFixture{
		svc:      NewChatService(messageStore, matchSvc, store, notifier, push),
		store:    store,
		matches:  matchStore,
		messages: messageStore,
		notifier: notifier,
		push:     push,
		rex:      rex,
		luna:     luna,
		match:    match,
	}
}

func TestSendMessage_AppendsAndPublishes(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "  hello Luna  ", "")
	require.NoError(t, err)
	assert.Equal(t, "hello Luna", msg.Content, "content is trimmed")
	assert.Equal(t, f.rex.ID, msg.SenderPetID)
	assert.False(t, msg.IsRead)

	require.Equal(t, 1, f.notifier.publishedCount())
	assert.Equal(t, f.match.ID, f.notifier.published[0].MatchID)
}

func TestSendMessage_EmptyRejected(t *testing.T) {
	f := setupChatTest(t)

	_, err := f.svc.SendMessage(context.Background(), f.match.ID, f.rex.ID, "   \n\t ", "")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	assert.Empty(t, f.messages.messages)
}

func TestSendMessage_LengthCapInRunes(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()

	// 500 multibyte runes pass; 501 fail.
	ok := strings.Repeat("Ü", domain.MaxMessageLen)
	_, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, ok, "")
	require.NoError(t, err)

	tooLong := strings.Repeat("Ü", domain.MaxMessageLen+1)
	_, err = f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, tooLong, "")
	assert.ErrorIs(t, err, domain.ErrMessageTooLong)
}

func TestSendMessage_NonParticipantRejected(t *testing.T) {
	f := setupChatTest(t)
	milo := f.store.addPet("Milo", 3)

	_, err := f.svc.SendMessage(context.Background(), f.match.ID, milo.ID, "hi", "")
	assert.ErrorIs(t, err, domain.ErrNotAParticipant)
}

func TestSendMessage_UnknownMatch(t *testing.T) {
	f := setupChatTest(t)

	_, err := f.svc.SendMessage(context.Background(), 999, f.rex.ID, "hi", "")
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
}

func TestSendMessage_ClientTokenIdempotent(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()

	first, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "hello", "tok-1")
	require.NoError(t, err)

	// Resend with the same token returns the stored row, no new insert.
	second, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "hello", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.messages.messages, 1)
	assert.Equal(t, 1, f.notifier.publishedCount(), "retry must not fan out again")
}

func TestSendMessage_ConcurrentTokenRaceReturnsStoredRow(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()

	first, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "hello", "tok-1")
	require.NoError(t, err)

	// A concurrent retry's row lands between our dedupe check and our insert:
	// the check misses, the insert hits the unique token index, and the
	// stored row wins.
	f.messages.missTokenOnce = true
	second, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "hello", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.messages.messages, 1)
}

func TestSendMessage_PushWhenCounterpartAway(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "hello", "")
	require.NoError(t, err)

	require.Len(t, f.push.messageCall, 1)
	call := f.push.messageCall[0]
	assert.Equal(t, f.luna.UserID, call.UserID)
	assert.Equal(t, f.match.ID, call.MatchID)
	assert.Equal(t, "Rex", call.Name)
	assert.Equal(t, "hello", call.Preview)

	// Message stays unread until Luna looks at it.
	unread, err := f.svc.UnreadCountFor(ctx, f.match.ID, f.luna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestSendMessage_ReadOnArrivalWhenViewing(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()
	f.notifier.setViewing(f.match.ID, f.luna.ID, true)

	_, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "hello", "")
	require.NoError(t, err)

	assert.Empty(t, f.push.messageCall, "viewer must not get a push")
	unread, err := f.svc.UnreadCountFor(ctx, f.match.ID, f.luna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread, "read-on-arrival")
}

func TestSendMessage_LongPreviewTruncated(t *testing.T) {
	f := setupChatTest(t)

	long := strings.Repeat("a", 200)
	_, err := f.svc.SendMessage(context.Background(), f.match.ID, f.rex.ID, long, "")
	require.NoError(t, err)

	require.Len(t, f.push.messageCall, 1)
	assert.Equal(t, strings.Repeat("a", 80), f.push.messageCall[0].Preview)
}

func TestListMessages_OrderAndMarkRead(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, text, "")
		require.NoError(t, err)
	}

	list, err := f.svc.ListMessages(ctx, f.match.ID, f.luna.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "one", list[0].Content)
	assert.Equal(t, "two", list[1].Content)
	assert.Equal(t, "three", list[2].Content)

	// Loading the conversation reads everything pending.
	unread, err := f.svc.UnreadCountFor(ctx, f.match.ID, f.luna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// The sender's own unread view is unaffected by the receiver's read.
	_, err = f.svc.SendMessage(ctx, f.match.ID, f.luna.ID, "reply", "")
	require.NoError(t, err)
	unread, err = f.svc.UnreadCountFor(ctx, f.match.ID, f.rex.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestListMessages_ReturnsPostReadState(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "hello", "")
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "still there?", "")
	require.NoError(t, err)

	// The page the receiver gets already reflects the read it triggered.
	list, err := f.svc.ListMessages(ctx, f.match.ID, f.luna.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, m := range list {
		assert.True(t, m.IsRead, "message %q should come back read", m.Content)
	}
}

func TestListMessages_NonParticipantRejected(t *testing.T) {
	f := setupChatTest(t)
	milo := f.store.addPet("Milo", 3)

	_, err := f.svc.ListMessages(context.Background(), f.match.ID, milo.ID, 50, 0)
	assert.ErrorIs(t, err, domain.ErrNotAParticipant)
}

func TestMarkRead_OnlyCounterpartMessagesAndIdempotent(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "from rex", "")
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.match.ID, f.luna.ID, "from luna", "")
	require.NoError(t, err)

	n, err := f.svc.MarkRead(ctx, f.match.ID, f.luna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only rex's message transitions")

	// Second call finds nothing unread.
	n, err = f.svc.MarkRead(ctx, f.match.ID, f.luna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Rex still has luna's message unread.
	unread, err := f.svc.UnreadCountFor(ctx, f.match.ID, f.rex.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestConversationSummaries_OrderingAndFallback(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()
	milo := f.store.addPet("Milo", 3)
	nala := f.store.addPet("Nala", 4)

	matchMilo, err := f.svc.matches.GetOrCreateMatch(ctx, f.rex.ID, milo.ID)
	require.NoError(t, err)
	matchNala, err := f.svc.matches.GetOrCreateMatch(ctx, f.rex.ID, nala.ID)
	require.NoError(t, err)

	// Seed messages with explicit timestamps: luna's chat is older than the
	// empty match's creation, milo's is newer.
	now := time.Now()
	seed := func(matchID, sender uint, content string, at time.Time) {
		require.NoError(t, f.messages.Create(ctx, &models.Message{
			MatchID: matchID, SenderPetID: sender, Content: content, CreatedAt: at,
		}))
	}
	seed(f.match.ID, f.luna.ID, "old", now.Add(-time.Hour))
	seed(matchMilo.ID, milo.ID, "new", now.Add(30*time.Minute))
	seed(matchMilo.ID, milo.ID, "newest", now.Add(40*time.Minute))

	list, err := f.svc.ListConversationSummaries(ctx, f.rex.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Milo's chat has the latest message, then the no-message match by its
	// creation time, then Luna's older chat.
	assert.Equal(t, matchMilo.ID, list[0].Match.ID)
	assert.Equal(t, "Milo", list[0].OtherPet.Name)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "newest", list[0].LastMessage.Content)
	assert.Equal(t, int64(2), list[0].UnreadCount)

	assert.Equal(t, matchNala.ID, list[1].Match.ID)
	assert.Nil(t, list[1].LastMessage, "fresh match has no messages")
	assert.Equal(t, int64(0), list[1].UnreadCount)

	assert.Equal(t, f.match.ID, list[2].Match.ID)
	assert.Equal(t, "Luna", list[2].OtherPet.Name)
	assert.Equal(t, int64(1), list[2].UnreadCount)
}

func TestConversationSummaries_Empty(t *testing.T) {
	f := setupChatTest(t)
	milo := f.store.addPet("Milo", 3)

	list, err := f.svc.ListConversationSummaries(context.Background(), milo.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUnreadCount_RecomputedFresh(t *testing.T) {
	f := setupChatTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.SendMessage(ctx, f.match.ID, f.rex.ID, "ping", "")
		require.NoError(t, err)
	}
	unread, err := f.svc.UnreadCountFor(ctx, f.match.ID, f.luna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	_, err = f.svc.MarkRead(ctx, f.match.ID, f.luna.ID)
	require.NoError(t, err)
	unread, err = f.svc.UnreadCountFor(ctx, f.match.ID, f.luna.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}
