package model

// Sender identifies who sent a message. Color is a display tag only.
type Sender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Color string `json:"color"`
}

// Email is one inbound message as seen by the client.
type Email struct {
	ID      string `json:"id"`
	Sender  Sender `json:"sender"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
	Body    string `json:"body"`
	// Preview and PreviewImage are derived from Body when fetched.
	Preview      string `json:"preview,omitempty"`
	PreviewImage string `json:"previewImage,omitempty"`
	Date         string `json:"date"`
	Timestamp    int64  `json:"timestamp"`
	IsPinned     bool   `json:"isPinned"`
	HasSummary   bool   `json:"hasSummary"`
	Summary      string `json:"summary,omitempty"`
}

// ContextEntry is the compact projection of an Email sent to the assistant.
type ContextEntry struct {
	ID      string `json:"id"`
	Sender  Sender `json:"sender"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

func (e Email) Context() ContextEntry {
	return ContextEntry{
		ID:      e.ID,
		Sender:  e.Sender,
		Subject: e.Subject,
		Date:    e.Date,
	}
}
