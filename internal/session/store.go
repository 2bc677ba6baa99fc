// Package session keeps the per-chat conversation state: whether a chat is
// open, where it is in the rating flow, and the conversation log used for
// fallback prompts and cleanup.
package session

import (
	"strconv"
	"strings"
	"sync"

	"github.com/set-night/mesabot/internal/domain"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateAwaitingRating
	StateAwaitingComment
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateAwaitingRating:
		return "awaiting_rating"
	case StateAwaitingComment:
		return "awaiting_comment"
	default:
		return "closed"
	}
}

type chat struct {
	state         State
	pendingRating int
	log           []domain.Message
	greetingIDs   []int
	// generation changes on every start and teardown so late results from
	// a previous session can be recognized.
	generation uint64
}

// Teardown lists the transport messages to remove when a session closes.
type Teardown struct {
	GreetingIDs []int
	MessageIDs  []int
}

// Store is safe for concurrent use. Chats never share state. Closed chats
// are dropped, so only open ones are held in memory.
type Store struct {
	mu    sync.Mutex
	chats map[int64]*chat
	// generations are drawn from one counter so a chat that is closed and
	// opened again never reuses a generation.
	lastGeneration uint64
}

func NewStore() *Store {
	return &Store{chats: make(map[int64]*chat)}
}

// get returns the chat entry, or a detached closed one when the chat is not
// held. The caller must hold mu.
func (s *Store) get(chatID int64) *chat {
	if c, ok := s.chats[chatID]; ok {
		return c
	}
	return &chat{state: StateClosed}
}

func (s *Store) nextGeneration() uint64 {
	s.lastGeneration++
	return s.lastGeneration
}

// Len returns the number of chats held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

func (s *Store) State(chatID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return StateClosed
	}
	return c.state
}

// Start opens the chat, dropping any previous log and rating progress. The
// message ids of the dropped log are returned for cleanup.
func (s *Store) Start(chatID int64) Teardown {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		c = &chat{}
		s.chats[chatID] = c
	}
	td := c.teardown()
	c.state = StateOpen
	c.generation = s.nextGeneration()
	return td
}

// SetGreeting records the greeting messages to delete at teardown.
func (s *Store) SetGreeting(chatID int64, messageIDs []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.chats[chatID]; ok {
		c.greetingIDs = messageIDs
	}
}

// Append adds msg to the log of an open chat.
func (s *Store) Append(chatID int64, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(chatID)
	if c.state != StateOpen {
		return domain.ErrSessionClosed
	}
	c.log = append(c.log, msg)
	return nil
}

// History returns a copy of the log in insertion order together with the
// session generation it belongs to.
func (s *Store) History(chatID int64) ([]domain.Message, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(chatID)
	if c.state != StateOpen {
		return nil, c.generation, domain.ErrSessionClosed
	}
	history := make([]domain.Message, len(c.log))
	copy(history, c.log)
	return history, c.generation, nil
}

// AppendIfCurrent appends msg only when the chat is still open in the given
// generation. It reports whether the message was kept.
func (s *Store) AppendIfCurrent(chatID int64, generation uint64, msg domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(chatID)
	if c.state != StateOpen || c.generation != generation {
		return false
	}
	c.log = append(c.log, msg)
	return true
}

// IsCurrent reports whether generation still names the open session.
func (s *Store) IsCurrent(chatID int64, generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(chatID)
	return c.state == StateOpen && c.generation == generation
}

// BeginRating moves an open chat into the rating flow. Asking again while
// the flow is running restarts it at the rating prompt.
func (s *Store) BeginRating(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(chatID)
	if c.state == StateClosed {
		return domain.ErrSessionClosed
	}
	c.state = StateAwaitingRating
	c.pendingRating = 0
	// In-flight fallback replies must not land in a session being rated.
	c.generation = s.nextGeneration()
	return nil
}

// SubmitRating validates input as a 1..5 rating. Invalid input keeps the
// chat waiting for a rating and returns domain.ErrInvalidRating.
func (s *Store) SubmitRating(chatID int64, input string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(chatID)
	if c.state != StateAwaitingRating {
		return 0, domain.ErrSessionClosed
	}

	rating, err := ParseRating(input)
	if err != nil {
		return 0, err
	}
	c.pendingRating = rating
	c.state = StateAwaitingComment
	return rating, nil
}

// PendingRating returns the rating waiting for its comment.
func (s *Store) PendingRating(chatID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(chatID)
	if c.state != StateAwaitingComment {
		return 0, domain.ErrSessionClosed
	}
	return c.pendingRating, nil
}

// Close tears the chat down, forgets it and returns the messages to delete.
func (s *Store) Close(chatID int64) Teardown {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return Teardown{}
	}
	delete(s.chats, chatID)
	return c.teardown()
}

func (c *chat) teardown() Teardown {
	td := Teardown{GreetingIDs: c.greetingIDs}
	for _, m := range c.log {
		td.MessageIDs = append(td.MessageIDs, m.MessageIDs...)
	}
	c.log = nil
	c.greetingIDs = nil
	c.pendingRating = 0
	return td
}

// ParseRating accepts a decimal digit string between domain.MinRating and
// domain.MaxRating, surrounding spaces allowed.
func ParseRating(input string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || rating < domain.MinRating || rating > domain.MaxRating {
		return 0, domain.ErrInvalidRating
	}
	return rating, nil
}
