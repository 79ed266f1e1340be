package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
)

// SessionStore сессии в памяти. Сессия на слот помечает его занятым,
// как внешний ключ sessions.slot_id в базе.
type SessionStore struct {
	mu       sync.RWMutex
	nextID   int64
	sessions []model.Session
	slots    *SlotStore
	now      func() time.Time
}

func NewSessionStore(slots *SlotStore) *SessionStore {
	return &SessionStore{slots: slots, now: time.Now}
}

// AddSession сохраняет сессию, заполняет ID и CreatedAt
func (s *SessionStore) AddSession(session *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	session.ID = s.nextID
	session.CreatedAt = s.now()
	if session.Status == "" {
		session.Status = model.SessionPending
	}
	s.sessions = append(s.sessions, *session)

	if session.SlotID != nil && s.slots != nil {
		s.slots.MarkBooked(*session.SlotID)
	}
}

func (s *SessionStore) ListByProvider(_ context.Context, providerID int64) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Session
	for _, session := range s.sessions {
		if session.ProviderID == providerID {
			c := session
			result = append(result, &c)
		}
	}

	slices.SortFunc(result, func(a, b *model.Session) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return result, nil
}
