package history

import "time"

// Origin tells who authored a message.
type Origin int

const (
	OriginUser Origin = iota
	OriginBot
)

func (o Origin) String() string {
	if o == OriginUser {
		return "user"
	}
	return "bot"
}

// Message represents a single conversational message shown in the chat log.
type Message struct {
	ID        string    `json:"id"`
	Origin    Origin    `json:"origin"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
