// Package dialog is the per-chat conversation state machine of the bot.
//
// Transition is a pure function from (session, event) to the next session
// and the reply to send. Machine runs it against a session store and a
// Messenger.
package dialog

import (
	"github.com/m3rciful/espertofit/core/telegram/state"
	"github.com/m3rciful/espertofit/fit/catalog"
)

// StateBrowsing is the state of a chat that has been shown the training menu.
const StateBrowsing state.State = "browsing_trainings"

// Session is the conversation state of one chat. The zero value is idle.
type Session struct {
	State state.State `json:"state"`
	// Snapshot is the catalog as it was when the menu was shown. Only set while browsing.
	Snapshot map[string]catalog.Training `json:"snapshot,omitempty"`
}

// Idle returns the initial session.
func Idle() Session { return Session{State: state.StateIdle} }

// Browsing returns a session browsing the given snapshot.
func Browsing(snapshot map[string]catalog.Training) Session {
	return Session{State: StateBrowsing, Snapshot: snapshot}
}

// SessionState implements state.Value.
func (s Session) SessionState() state.State {
	if s.State == "" {
		return state.StateIdle
	}
	return s.State
}

// IsBrowsing reports whether the chat is browsing trainings.
func (s Session) IsBrowsing() bool { return s.SessionState() == StateBrowsing }
