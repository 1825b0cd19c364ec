// Package session holds the panel-wide state shared by every feature: the
// global loading flag, the transient message shown to the operator and whether
// the operator is still authenticated.
package session

import "time"

// MessageKind is the severity of a global message.
type MessageKind string

const (
	MessageOK    MessageKind = "ok"
	MessageError MessageKind = "error"
)

// Message is a transient status line.
type Message struct {
	Text string
	Kind MessageKind
}

// LoadingSetter toggles the global loading indicator.
type LoadingSetter interface {
	SetIsLoading(bool)
}

// MessageSetter publishes a global message.
type MessageSetter interface {
	SetGlobalMessage(Message)
}

// AuthSetter flips the authenticated flag.
type AuthSetter interface {
	SetIsAuth(bool)
}

// Store implements the three setters and exposes their values for rendering.
// It is owned by the bubbletea update loop and is not safe for concurrent use.
type Store struct {
	loading  bool
	auth     bool
	message  *Message
	shownAt  time.Time
	revision int
	now      func() time.Time
}

// NewStore returns an authenticated, idle store.
func NewStore() *Store {
	return &Store{auth: true, now: time.Now}
}

func (s *Store) SetIsLoading(v bool) { s.loading = v }

func (s *Store) SetIsAuth(v bool) { s.auth = v }

func (s *Store) SetGlobalMessage(m Message) {
	s.message = &m
	s.shownAt = s.now()
	s.revision++
}

func (s *Store) IsLoading() bool { return s.loading }

func (s *Store) IsAuth() bool { return s.auth }

// Message returns the current message, if any.
func (s *Store) Message() (Message, bool) {
	if s.message == nil {
		return Message{}, false
	}
	return *s.message, true
}

// Revision increases every time a message is published. Expiry timers carry it
// so a late tick cannot clear a newer message.
func (s *Store) Revision() int { return s.revision }

// ClearMessage drops the message if it is still the one published at rev.
func (s *Store) ClearMessage(rev int) bool {
	if s.message == nil || rev != s.revision {
		return false
	}
	s.message = nil
	return true
}

// ShownAt is when the current message was published.
func (s *Store) ShownAt() time.Time { return s.shownAt }
