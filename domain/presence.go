// Package domain contains the core concepts of the presence layer.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"fmt"
	"time"
)

// UserID is the stable identifier of an application account.
type UserID string

// ConnectionID is an opaque identifier unique to one live transport session.
type ConnectionID string

func (u UserID) IsAnonymous() bool { return u == "" }

type ConnectionState int

const (
	Connecting ConnectionState = iota
	Established
	Closed
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Established:
		return "established"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection is one live transport session.
// The claimed user identity is fixed at construction and never changes.
type Connection struct {
	ID        ConnectionID
	UserID    UserID
	CreatedAt time.Time
	State     ConnectionState
}

func NewConnection(id ConnectionID, userID UserID, createdAt time.Time) Connection {
	return Connection{
		ID:        id,
		UserID:    userID,
		CreatedAt: createdAt,
		State:     Connecting,
	}
}

// Establish moves a connection with a claimed identity to Established.
func (c Connection) Establish() (Connection, error) {
	if c.State != Connecting {
		return c, fmt.Errorf("cannot establish connection %s in state %s", c.ID, c.State)
	}
	if c.UserID.IsAnonymous() {
		return c, fmt.Errorf("cannot establish anonymous connection %s", c.ID)
	}
	c.State = Established
	return c, nil
}

// Close is allowed from any state, Closed is terminal.
func (c Connection) Close() Connection {
	c.State = Closed
	return c
}

func (c Connection) IsEstablished() bool { return c.State == Established }

func (c Connection) String() string {
	who := string(c.UserID)
	if c.UserID.IsAnonymous() {
		who = "anonymous"
	}
	return who + "@" + string(c.ID) + "(" + c.State.String() + ")"
}
