package scheduler

import (
	"sync"
	"time"

	"xfin/internal/domain/models"
)

// StatusStore holds the RunStatus of every category. Each category's entry
// has a single writer (its runner, under the category guard); reads may come
// from any goroutine. Subscribers receive the full status map on every
// change, which backs the websocket feed.
type StatusStore struct {
	mu       sync.RWMutex
	statuses map[models.Category]models.RunStatus
	subs     map[int]chan map[models.Category]models.RunStatus
	nextSub  int
}

// NewStatusStore initializes every category to the idle zero state.
func NewStatusStore() *StatusStore {
	s := &StatusStore{
		statuses: make(map[models.Category]models.RunStatus, len(models.Categories())),
		subs:     make(map[int]chan map[models.Category]models.RunStatus),
	}
	for _, cat := range models.Categories() {
		s.statuses[cat] = models.RunStatus{LastStatus: models.OutcomeUnknown}
	}
	return s
}

// Get returns the status of one category.
func (s *StatusStore) Get(cat models.Category) (models.RunStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[cat]
	return st, ok
}

// All returns a copy of every category's status.
func (s *StatusStore) All() map[models.Category]models.RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// SetRunning flips the running flag at the start or end of an execution.
func (s *StatusStore) SetRunning(cat models.Category, running bool) {
	s.mu.Lock()
	st := s.statuses[cat]
	st.Running = running
	s.statuses[cat] = st
	s.broadcastLocked()
	s.mu.Unlock()
}

// SetNextRun records when the category is next due.
func (s *StatusStore) SetNextRun(cat models.Category, next time.Time) {
	s.mu.Lock()
	st := s.statuses[cat]
	if st.NextRun != nil && st.NextRun.Equal(next) {
		s.mu.Unlock()
		return
	}
	st.NextRun = &next
	s.statuses[cat] = st
	s.broadcastLocked()
	s.mu.Unlock()
}

// Complete folds a finished job into the category's status.
func (s *StatusStore) Complete(cat models.Category, job models.CollectionJob) {
	s.mu.Lock()
	st := s.statuses[cat]
	st.Running = false
	last := job.FinishedAt
	st.LastRun = &last
	st.LastStatus = job.Outcome
	st.LastError = job.Error
	s.statuses[cat] = st
	s.broadcastLocked()
	s.mu.Unlock()
}

// Subscribe registers a watcher for status changes. The channel carries full
// snapshots; slow consumers miss intermediate updates rather than blocking
// the scheduler.
func (s *StatusStore) Subscribe() (int, <-chan map[models.Category]models.RunStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan map[models.Category]models.RunStatus, 8)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a watcher and closes its channel.
func (s *StatusStore) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *StatusStore) copyLocked() map[models.Category]models.RunStatus {
	out := make(map[models.Category]models.RunStatus, len(s.statuses))
	for cat, st := range s.statuses {
		out[cat] = st
	}
	return out
}

func (s *StatusStore) broadcastLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.copyLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
