package models

import "time"

// Message is a directed note between two accounts. Read flips to true only
// when the recipient views the message and never reverts. Messages are never
// deleted.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Subject     string
	Content     string
	Timestamp   time.Time
	Read        bool

	// Sender and Recipient are populated by store reads that join the
	// accounts table; only public profile fields are filled in.
	Sender    *Correspondent
	Recipient *Correspondent
}

// Correspondent is the public slice of an account shown alongside a message.
type Correspondent struct {
	ID       string
	Username string
	Forename string
	Surname  string
	Role     Role
}

// FullName is the display name for inbox and message views.
func (c *Correspondent) FullName() string {
	if c == nil {
		return ""
	}
	return c.Forename + " " + c.Surname
}
