// Package memory implements the document store in process memory for
// development (STORE=memory) and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayushbhandari/event-tickets/internal/events"
)

// Store keeps users, events and tickets in insertion order. Every method
// holds one lock for its whole duration, which gives the same per-document
// atomicity as the Mongo conditional updates.
type Store struct {
	mu      sync.Mutex
	users   []*events.User
	events  []*events.Event
	tickets []events.Ticket
}

func New() *Store {
	return &Store{}
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (*events.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, events.ErrEmailTaken
		}
	}
	u := &events.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: time.Now().UTC(),
	}
	s.users = append(s.users, u)
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*events.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*events.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == oid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- events ---

func (s *Store) CreateEvent(ctx context.Context, e *events.Event) (*events.Event, error) {
	e.PrepareForInsert()
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}
	e.ID = primitive.NewObjectID()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, cloneEvent(e))
	return cloneEvent(e), nil
}

func (s *Store) ListEvents(ctx context.Context) ([]events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]events.Event, 0, len(s.events))
	for _, e := range s.events {
		result = append(result, *cloneEvent(e))
	}
	return result, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(id)
	if e == nil {
		return nil, nil
	}
	return cloneEvent(e), nil
}

func (s *Store) ToggleLike(ctx context.Context, eventID, userID string) (*events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findEvent(eventID)
	if e == nil {
		return nil, events.ErrEventNotFound
	}

	idx := slices.Index(e.LikedBy, userID)
	if idx < 0 {
		e.Likes++
		e.LikedBy = append(e.LikedBy, userID)
		return cloneEvent(e), nil
	}
	if e.Likes <= 0 {
		return nil, events.ErrLikeCounterInvalid
	}
	e.Likes--
	e.LikedBy = slices.Delete(e.LikedBy, idx, idx+1)
	return cloneEvent(e), nil
}

func (s *Store) findEvent(id string) *events.Event {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	for _, e := range s.events {
		if e.ID == oid {
			return e
		}
	}
	return nil
}

func cloneEvent(e *events.Event) *events.Event {
	cp := *e
	cp.LikedBy = slices.Clone(e.LikedBy)
	cp.Comment = slices.Clone(e.Comment)
	cp.BookedBy = slices.Clone(e.BookedBy)
	if cp.LikedBy == nil {
		cp.LikedBy = []string{}
	}
	return &cp
}

// --- tickets ---

func (s *Store) CreateTicket(ctx context.Context, t events.Ticket) (events.Ticket, error) {
	doc := cloneTicket(t)
	doc[events.TicketIDField] = primitive.NewObjectID()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets = append(s.tickets, doc)
	return cloneTicket(doc), nil
}

func (s *Store) ListTickets(ctx context.Context) ([]events.Ticket, error) {
	return s.filterTickets(func(events.Ticket) bool { return true }), nil
}

func (s *Store) ListTicketsByID(ctx context.Context, id string) ([]events.Ticket, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return []events.Ticket{}, nil
	}
	return s.filterTickets(func(t events.Ticket) bool { return t.ID() == oid }), nil
}

func (s *Store) ListTicketsByUser(ctx context.Context, userID string) ([]events.Ticket, error) {
	return s.filterTickets(func(t events.Ticket) bool { return t.UserID() == userID }), nil
}

func (s *Store) filterTickets(keep func(events.Ticket) bool) []events.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []events.Ticket{}
	for _, t := range s.tickets {
		if keep(t) {
			result = append(result, cloneTicket(t))
		}
	}
	return result
}

func (s *Store) DeleteTicket(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets = slices.DeleteFunc(s.tickets, func(t events.Ticket) bool { return t.ID() == oid })
	return nil
}

// cloneTicket is shallow: nested values are shared, which is fine because
// nothing mutates a stored ticket.
func cloneTicket(t events.Ticket) events.Ticket {
	cp := make(events.Ticket, len(t)+1)
	for k, v := range t {
		cp[k] = v
	}
	return cp
}
