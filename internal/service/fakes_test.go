package service

import (
	"context"
	"sync"
	"time"

	"zoodate/internal/domain"
	"zoodate/internal/models"

	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the gorm repositories. It honors the
// same uniqueness rules the database indexes enforce, so service-level
// behavior around duplicates and races can be tested without a driver.
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	pets     map[uint]models.Pet
	likes    []models.Like
	matches  []models.Match
	messages []models.Message

	// failNext, when set, makes the next store call return this error once.
	failNext error
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, pets: make(map[uint]models.Pet)}
}

func (s *memStore) takeErr() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *memStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) addPet(name string, userID uint) models.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.Pet{
		ID:       s.id(),
		UserID:   userID,
		Name:     name,
		Species:  domain.SpeciesDog,
		IsActive: true,
	}
	s.pets[p.ID] = p
	return p
}

// PetDirectory / PetGetter / ActivePetStore

func (s *memStore) GetByID(ctx context.Context, id uint) (*models.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	p, ok := s.pets[id]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	return &p, nil
}

func (s *memStore) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	out := make(map[uint]models.Pet)
	for _, id := range ids {
		if p, ok := s.pets[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *memStore) PrimaryPhotoURLs(ctx context.Context, petIDs []uint) (map[uint]string, error) {
	return map[uint]string{}, nil
}

func (s *memStore) GetActiveByUserID(ctx context.Context, userID uint) (*models.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}
	for _, p := range s.pets {
		if p.UserID == userID && p.IsActive {
			pet := p
			return &pet, nil
		}
	}
	return nil, domain.ErrNoActivePet
}

// LikeStore

func (s *memStore) Create(ctx context.Context, l *models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}
	for _, existing := range s.likes {
		if existing.LikerPetID == l.LikerPetID && existing.LikedPetID == l.LikedPetID {
			return domain.ErrDuplicateJudgment
		}
	}
	l.ID = s.id()
	l.CreatedAt = time.Now()
	s.likes = append(s.likes, *l)
	return nil
}

func (s *memStore) HasLike(ctx context.Context, likerPetID, likedPetID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return false, err
	}
	for _, l := range s.likes {
		if l.LikerPetID == likerPetID && l.LikedPetID == likedPetID && l.IsLike {
			return true, nil
		}
	}
	return false, nil
}

// memMatchStore implements MatchStore with the normalized-pair unique index.
type memMatchStore struct {
	mu      sync.Mutex
	nextID  uint
	matches []models.Match

	failNext error

	// missPairOnce makes the next GetByPair report not-found even when the
	// row exists, simulating a concurrent insert landing after our read.
	missPairOnce bool
}

func newMemMatchStore() *memMatchStore {
	return &memMatchStore{nextID: 1}
}

func (s *memMatchStore) Create(ctx context.Context, m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	for _, existing := range s.matches {
		if existing.Pet1ID == m.Pet1ID && existing.Pet2ID == m.Pet2ID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.ID = s.nextID
	s.nextID++
	m.CreatedAt = time.Now()
	s.matches = append(s.matches, *m)
	return nil
}

func (s *memMatchStore) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ID == id {
			match := m
			return &match, nil
		}
	}
	return nil, domain.ErrMatchNotFound
}

func (s *memMatchStore) GetByPair(ctx context.Context, pet1ID, pet2ID uint) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missPairOnce {
		s.missPairOnce = false
		return nil, domain.ErrMatchNotFound
	}
	for _, m := range s.matches {
		if m.Pet1ID == pet1ID && m.Pet2ID == pet2ID {
			match := m
			return &match, nil
		}
	}
	return nil, domain.ErrMatchNotFound
}

func (s *memMatchStore) ListByPetID(ctx context.Context, petID uint) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.matches {
		if m.HasParticipant(petID) {
			out = append(out, m)
		}
	}
	return out, nil
}

// memMessageStore implements MessageStore.
type memMessageStore struct {
	mu       sync.Mutex
	nextID   uint
	messages []models.Message

	failNext error

	// missTokenOnce makes the next GetByClientToken miss, simulating a
	// concurrent retry whose row lands after our dedupe check.
	missTokenOnce bool
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{nextID: 1}
}

func (s *memMessageStore) Create(ctx context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	if m.ClientToken != nil {
		for _, existing := range s.messages {
			if existing.MatchID == m.MatchID && existing.ClientToken != nil && *existing.ClientToken == *m.ClientToken {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	m.ID = s.nextID
	s.nextID++
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, *m)
	return nil
}

func (s *memMessageStore) GetByClientToken(ctx context.Context, matchID uint, token string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missTokenOnce {
		s.missTokenOnce = false
		return nil, nil
	}
	for _, m := range s.messages {
		if m.MatchID == matchID && m.ClientToken != nil && *m.ClientToken == token {
			msg := m
			return &msg, nil
		}
	}
	return nil, nil
}

func (s *memMessageStore) ListByMatchID(ctx context.Context, matchID uint, limit, offset int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.MatchID == matchID {
			out = append(out, m)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memMessageStore) MarkRead(ctx context.Context, matchID, readerPetID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return 0, err
	}
	var n int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.MatchID == matchID && m.SenderPetID != readerPetID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *memMessageStore) CountUnread(ctx context.Context, matchID, viewerPetID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.messages {
		if m.MatchID == matchID && m.SenderPetID != viewerPetID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *memMessageStore) LatestByMatchIDs(ctx context.Context, matchIDs []uint) (map[uint]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]models.Message)
	for _, id := range matchIDs {
		for _, m := range s.messages {
			if m.MatchID != id {
				continue
			}
			if cur, ok := out[id]; !ok || m.ID > cur.ID {
				out[id] = m
			}
		}
	}
	return out, nil
}

func (s *memMessageStore) CountUnreadByMatchIDs(ctx context.Context, matchIDs []uint, viewerPetID uint) (map[uint]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]int64)
	for _, id := range matchIDs {
		for _, m := range s.messages {
			if m.MatchID == id && m.SenderPetID != viewerPetID && !m.IsRead {
				out[id]++
			}
		}
	}
	return out, nil
}

// fakeNotifier records fan-out calls and simulates live viewers.
type fakeNotifier struct {
	mu        sync.Mutex
	published []fanout
	viewers   map[uint]map[uint]bool // matchID -> petID -> viewing
}

type fanout struct {
	MatchID uint
	Payload interface{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{viewers: make(map[uint]map[uint]bool)}
}

func (f *fakeNotifier) Publish(matchID uint, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, fanout{MatchID: matchID, Payload: payload})
}

func (f *fakeNotifier) HasViewer(matchID, petID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewers[matchID][petID]
}

func (f *fakeNotifier) setViewing(matchID, petID uint, viewing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.viewers[matchID] == nil {
		f.viewers[matchID] = make(map[uint]bool)
	}
	f.viewers[matchID][petID] = viewing
}

func (f *fakeNotifier) publishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

// fakePush records push notification calls.
type fakePush struct {
	mu          sync.Mutex
	matchCalls  []pushCall
	messageCall []pushCall
}

type pushCall struct {
	UserID  uint
	MatchID uint
	Name    string
	Preview string
}

func (f *fakePush) NotifyNewMatch(ctx context.Context, userID, matchID uint, otherPetName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchCalls = append(f.matchCalls, pushCall{UserID: userID, MatchID: matchID, Name: otherPetName})
	return nil
}

func (f *fakePush) NotifyNewMessage(ctx context.Context, userID, matchID uint, senderName, preview string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageCall = append(f.messageCall, pushCall{UserID: userID, MatchID: matchID, Name: senderName, Preview: preview})
	return nil
}
