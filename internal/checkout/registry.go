package checkout

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/model"
)

// entry is a registered wizard and the expiry of the session that owns it.
type entry struct {
	wizard    *Wizard
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Registry holds at most one wizard per session. A wizard does not outlive
// its session: expired entries are hidden from Get and removed by Sweep.
type Registry struct {
	mu      sync.Mutex
	wizards map[uuid.UUID]entry
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		wizards: make(map[uuid.UUID]entry),
		now:     time.Now,
	}
}

// Start installs w for the session until expiresAt, replacing an earlier
// wizard unless that one is mid-submission. A zero expiresAt never expires.
func (r *Registry) Start(id uuid.UUID, w *Wizard, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.wizards[id]; ok && current.wizard.State() == StateSubmitting {
		return model.ErrSubmissionInProgress
	}
	r.wizards[id] = entry{wizard: w, expiresAt: expiresAt}
	return nil
}

// Get returns the session's wizard.
func (r *Registry) Get(id uuid.UUID) (*Wizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.wizards[id]
	if !ok || e.expired(r.now()) {
		return nil, model.ErrCheckoutNotStarted
	}
	return e.wizard, nil
}

// DropIf removes the session's wizard only if it is still w.
func (r *Registry) DropIf(id uuid.UUID, w *Wizard) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.wizards[id].wizard == w {
		delete(r.wizards, id)
	}
}

// Drop removes the session's wizard, if any.
func (r *Registry) Drop(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.wizards, id)
}

// Sweep removes the wizards of sessions expired at now and returns how many
// it removed. A wizard mid-submission is left for its submission to settle.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.wizards {
		if e.expired(now) && e.wizard.State() != StateSubmitting {
			delete(r.wizards, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of registered wizards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wizards)
}
