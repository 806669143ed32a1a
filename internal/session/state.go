package session

import "mailsage/internal/view"

// UIState is everything a client needs to redraw one session besides the
// messages themselves.
type UIState struct {
	Filter        view.Filter `json:"filter"`
	DarkMode      bool        `json:"darkMode"`
	SearchOpen    bool        `json:"searchOpen"`
	ShowChat      bool        `json:"showChat"`
	ShowShortcuts bool        `json:"showShortcuts"`
	ShowSettings  bool        `json:"showSettings"`
	ExpandedID    string      `json:"expandedId,omitempty"`
	ViewingID     string      `json:"viewingId,omitempty"`
}

func defaultUIState() UIState {
	return UIState{
		Filter:   view.DefaultFilter(),
		DarkMode: true,
	}
}

func (u UIState) overlayOpen() bool {
	return u.ViewingID != "" || u.ShowChat || u.ShowShortcuts || u.ShowSettings
}
