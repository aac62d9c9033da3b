package memory

import (
	"sync"
	"time"

	"magic-diary-be/pkg/diary"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live diary sessions in memory. A session expires
// after ttl without access and is closed when it leaves the cache.
type SessionRepository struct {
	cache *cache.Cache

	// refreshMu orders Get's read-then-extend against eviction callbacks.
	refreshMu sync.Mutex
}

func NewSessionRepository(ttl, cleanupInterval time.Duration) *SessionRepository {
	r := &SessionRepository{
		cache: cache.New(ttl, cleanupInterval),
	}
	r.cache.OnEvicted(r.evicted)
	return r
}

// evicted closes a session that left the cache, unless a concurrent Get
// already put the same session back.
func (r *SessionRepository) evicted(sessionID string, v interface{}) {
	session, ok := v.(*diary.Session)
	if !ok {
		return
	}

	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	if x, found := r.cache.Get(sessionID); found && x == session {
		return
	}
	session.Close()
}

func (r *SessionRepository) Save(session *diary.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

// Get returns the session and extends its lifetime.
func (r *SessionRepository) Get(sessionID string) (*diary.Session, bool) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	session := x.(*diary.Session)
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return session, true
}

// Delete removes and closes the session. It must not hold refreshMu:
// go-cache runs the eviction callback synchronously.
func (r *SessionRepository) Delete(sessionID string) bool {
	if _, found := r.cache.Get(sessionID); !found {
		return false
	}
	r.cache.Delete(sessionID)
	return true
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
