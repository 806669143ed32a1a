package session

import (
	"errors"
	"fmt"

	"mailsage/internal/view"
)

type ActionType string

const (
	ActionSetTab          ActionType = "set_tab"
	ActionSetSearch       ActionType = "set_search"
	ActionSetTimeRange    ActionType = "set_time_range"
	ActionOpenSearch      ActionType = "open_search"
	ActionCloseSearch     ActionType = "close_search"
	ActionToggleDarkMode  ActionType = "toggle_dark_mode"
	ActionToggleChat      ActionType = "toggle_chat"
	ActionCloseChat       ActionType = "close_chat"
	ActionToggleShortcuts ActionType = "toggle_shortcuts"
	ActionToggleSettings  ActionType = "toggle_settings"
	ActionToggleExpand    ActionType = "toggle_expand"
	ActionOpenEmail       ActionType = "open_email"
	ActionCloseEmail      ActionType = "close_email"
	ActionNext            ActionType = "next"
	ActionPrev            ActionType = "prev"
	ActionEscape          ActionType = "escape"
)

// Action is one user interaction with the view.
type Action struct {
	Type  ActionType `json:"type"`
	ID    string     `json:"id,omitempty"`
	Value string     `json:"value,omitempty"`
}

var ErrUnknownAction = errors.New("unknown action")

// Dispatch applies actions to the session's UI state in order and returns
// the new state. Every action is checked first; if any is invalid nothing
// is applied.
func (s *Session) Dispatch(actions ...Action) (UIState, error) {
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return s.UI(), err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range actions {
		s.apply(a)
	}
	return s.ui, nil
}

// Validate reports whether a names a known action with a usable value.
func (a Action) Validate() error {
	switch a.Type {
	case ActionSetTab:
		_, err := view.ParseTab(a.Value)
		return err
	case ActionSetTimeRange:
		_, err := view.ParseTimeRange(a.Value)
		return err
	case ActionSetSearch, ActionOpenSearch, ActionCloseSearch, ActionToggleDarkMode,
		ActionToggleChat, ActionCloseChat, ActionToggleShortcuts, ActionToggleSettings,
		ActionToggleExpand, ActionOpenEmail, ActionCloseEmail, ActionNext, ActionPrev, ActionEscape:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
}

// apply mutates state for an action that already passed Validate.
func (s *Session) apply(a Action) {
	ui := &s.ui
	switch a.Type {
	case ActionSetTab:
		if tab, err := view.ParseTab(a.Value); err == nil {
			ui.Filter.ActiveTab = tab
		}
	case ActionSetSearch:
		ui.Filter.SearchQuery = a.Value
		if a.Value != "" {
			ui.SearchOpen = true
		}
	case ActionSetTimeRange:
		if r, err := view.ParseTimeRange(a.Value); err == nil {
			ui.Filter.TimeRange = r
		}
	case ActionOpenSearch:
		ui.SearchOpen = true
	case ActionCloseSearch:
		s.closeSearch()
	case ActionToggleDarkMode:
		ui.DarkMode = !ui.DarkMode
	case ActionToggleChat:
		if ui.ShowChat {
			s.closeChat()
		} else {
			ui.ShowShortcuts = false
			ui.ShowSettings = false
			ui.ShowChat = true
		}
	case ActionCloseChat:
		s.closeChat()
	case ActionToggleShortcuts:
		ui.ShowShortcuts = !ui.ShowShortcuts
	case ActionToggleSettings:
		ui.ShowSettings = !ui.ShowSettings
	case ActionToggleExpand:
		if ui.ExpandedID == a.ID {
			ui.ExpandedID = ""
		} else {
			ui.ExpandedID = a.ID
		}
	case ActionOpenEmail:
		id := a.ID
		if id == "" {
			id = ui.ExpandedID
		}
		if id != "" {
			ui.ViewingID = id
		}
	case ActionCloseEmail:
		ui.ViewingID = ""
		ui.ExpandedID = ""
	case ActionNext, ActionPrev:
		if ui.overlayOpen() {
			break
		}
		delta := 1
		if a.Type == ActionPrev {
			delta = -1
		}
		if id, ok := view.Neighbor(s.viewLocked(), ui.ExpandedID, delta); ok {
			ui.ExpandedID = id
		}
	case ActionEscape:
		s.closeChat()
		ui.ShowShortcuts = false
		ui.ShowSettings = false
		ui.ViewingID = ""
		ui.ExpandedID = ""
		s.closeSearch()
	}
}

// closeSearch keeps the search box open while it still holds a query.
func (s *Session) closeSearch() {
	if s.ui.Filter.SearchQuery == "" {
		s.ui.SearchOpen = false
	}
}
