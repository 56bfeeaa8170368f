package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// HeaderStepUpTicket carries a step-up ticket on a guarded edit request.
const HeaderStepUpTicket = "X-Step-Up-Ticket"

// StepUpTickets issues and redeems single-use tickets proving a recent
// password re-check. A ticket is bound to one user, expires quickly and
// is consumed on first redemption, so a successful verify-password call
// authorizes exactly one private-note edit. This closes the gap where
// nothing server-side binds the password check to the edit that follows.
type StepUpTickets struct {
	mu      sync.Mutex
	tickets map[string]stepUpTicket
	ttl     time.Duration

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type stepUpTicket struct {
	userID    uint
	expiresAt time.Time
}

// NewStepUpTickets creates a ticket store. ttl defaults to 5 minutes.
func NewStepUpTickets(ttl time.Duration) *StepUpTickets {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	s := &StepUpTickets{
		tickets:     make(map[string]stepUpTicket),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

// Issue creates a ticket for the given user.
func (s *StepUpTickets) Issue(userID uint) string {
	ticket := uuid.NewString()

	s.mu.Lock()
	s.tickets[ticket] = stepUpTicket{
		userID:    userID,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return ticket
}

// Redeem consumes a ticket. It succeeds at most once per ticket and only
// for the user it was issued to; expired, unknown and reused tickets all
// fail identically.
func (s *StepUpTickets) Redeem(ticket string, userID uint) bool {
	if ticket == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticket]
	if !ok {
		return false
	}

	// Single use: remove regardless of outcome.
	delete(s.tickets, ticket)

	if time.Now().After(t.expiresAt) {
		return false
	}
	return t.userID == userID
}

// Stop stops the background cleanup goroutine.
func (s *StepUpTickets) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCleanup)
	})
}

// cleanupLoop periodically drops expired tickets that were never redeemed.
func (s *StepUpTickets) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *StepUpTickets) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for ticket, t := range s.tickets {
		if now.After(t.expiresAt) {
			delete(s.tickets, ticket)
		}
	}
}
