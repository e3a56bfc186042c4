package entity

import (
	"time"

	"github.com/garyjia/trip-expenses/internal/domain/workflow"
)

// Speaker identifies who wrote a chat message
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ChatMessage is one transcript entry. Draft is attached to confirmation cards.
type ChatMessage struct {
	Speaker   Speaker    `json:"speaker"`
	Text      string     `json:"text"`
	Draft     *TripDraft `json:"draft,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Transcript is the append-only message history of one wizard session
type Transcript []ChatMessage

// Append returns the transcript with msg added at the end
func (t Transcript) Append(msg ChatMessage) Transcript {
	return append(t, msg)
}

// Last returns the most recent message, or nil for an empty transcript
func (t Transcript) Last() *ChatMessage {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// EntryMode selects how the wizard collects the first answer
type EntryMode string

const (
	// EntryModeGuided asks for one field per turn
	EntryModeGuided EntryMode = "guided"
	// EntryModeFreeText extracts every field it can from the first message, then asks for the rest
	EntryModeFreeText EntryMode = "free_text"
)

// IsValid returns true if the mode is one of the defined constants
func (m EntryMode) IsValid() bool {
	return m == EntryModeGuided || m == EntryModeFreeText
}

// ChatSession is the serializable state of one wizard conversation
type ChatSession struct {
	ID         string         `json:"id"`
	OwnerID    string         `json:"owner_id"`
	Mode       EntryMode      `json:"mode"`
	State      workflow.State `json:"state"`
	Draft      TripDraft      `json:"draft"`
	Transcript Transcript     `json:"transcript"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
