package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsage/internal/model"
	"mailsage/internal/view"
)

var fixedNow = time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, pinned ...string) *Session {
	t.Helper()
	s := New("user-1", pinned)
	s.now = func() time.Time { return fixedNow }
	s.Inbox.ApplyFetch([]model.Email{
		{ID: "a", Subject: "Quarterly report", Timestamp: fixedNow.Add(-1 * time.Hour).UnixMilli()},
		{ID: "b", Subject: "Lunch", Timestamp: fixedNow.Add(-2 * time.Hour).UnixMilli()},
		{ID: "c", Subject: "Old invoice", Timestamp: fixedNow.Add(-20 * 24 * time.Hour).UnixMilli()},
	})
	return s
}

func viewIDs(s *Session) []string {
	var out []string
	for _, e := range s.View() {
		out = append(out, e.ID)
	}
	return out
}

func TestDefaults(t *testing.T) {
	s := New("u", nil)
	ui := s.UI()
	assert.True(t, ui.DarkMode)
	assert.Equal(t, view.DefaultFilter(), ui.Filter)
	chat := s.Chat()
	require.Len(t, chat, 1)
	assert.Equal(t, model.RoleAI, chat[0].Role)
	assert.Equal(t, model.ChatGreeting, chat[0].Content)
}

func TestFilterActionsDriveView(t *testing.T) {
	s := newTestSession(t, "c")
	assert.Equal(t, []string{"a", "b", "c"}, viewIDs(s))

	_, err := s.Dispatch(Action{Type: ActionSetTimeRange, Value: "7d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, viewIDs(s))

	_, err = s.Dispatch(Action{Type: ActionSetTimeRange, Value: "30d"})
	require.NoError(t, err)
	_, err = s.Dispatch(Action{Type: ActionSetTab, Value: "Pinned"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, viewIDs(s))

	_, err = s.Dispatch(Action{Type: ActionSetTab, Value: "inbox"})
	require.NoError(t, err)
	ui, err := s.Dispatch(Action{Type: ActionSetSearch, Value: "REPORT"})
	require.NoError(t, err)
	assert.True(t, ui.SearchOpen)
	assert.Equal(t, []string{"a"}, viewIDs(s))
}

func TestInvalidFilterValuesLeaveStateAlone(t *testing.T) {
	s := newTestSession(t)
	before := s.UI()

	_, err := s.Dispatch(Action{Type: ActionSetTab, Value: "Spam"})
	assert.Error(t, err)
	_, err = s.Dispatch(Action{Type: ActionSetTimeRange, Value: "365d"})
	assert.Error(t, err)
	_, err = s.Dispatch(Action{Type: "teleport"})
	assert.True(t, errors.Is(err, ErrUnknownAction))

	assert.Equal(t, before, s.UI())
}

func TestDispatchBatchIsAllOrNothing(t *testing.T) {
	s := newTestSession(t)
	before := s.UI()

	ui, err := s.Dispatch(
		Action{Type: ActionSetTab, Value: "Pinned"},
		Action{Type: ActionToggleChat},
		Action{Type: ActionSetTimeRange, Value: "bogus"},
	)
	assert.ErrorIs(t, err, view.ErrInvalidFilter)
	assert.Equal(t, before, ui)
	assert.Equal(t, before, s.UI())

	ui, err = s.Dispatch(
		Action{Type: ActionSetTab, Value: "Pinned"},
		Action{Type: ActionSetTimeRange, Value: "7d"},
	)
	require.NoError(t, err)
	assert.Equal(t, view.TabPinned, ui.Filter.ActiveTab)
	assert.Equal(t, view.Range7d, ui.Filter.TimeRange)
}

func TestSearchStaysOpenWhileQueryPresent(t *testing.T) {
	s := newTestSession(t)
	s.Dispatch(Action{Type: ActionSetSearch, Value: "lunch"})

	ui, _ := s.Dispatch(Action{Type: ActionCloseSearch})
	assert.True(t, ui.SearchOpen)

	s.Dispatch(Action{Type: ActionSetSearch, Value: ""})
	ui, _ = s.Dispatch(Action{Type: ActionCloseSearch})
	assert.False(t, ui.SearchOpen)
}

func TestChatToggleClosesOtherOverlaysAndResetsTranscript(t *testing.T) {
	s := newTestSession(t)
	s.Dispatch(Action{Type: ActionToggleSettings})
	s.Dispatch(Action{Type: ActionToggleShortcuts})

	ui, _ := s.Dispatch(Action{Type: ActionToggleChat})
	assert.True(t, ui.ShowChat)
	assert.False(t, ui.ShowSettings)
	assert.False(t, ui.ShowShortcuts)

	s.AppendChat(model.NewChatMessage(model.RoleUser, "hi"))
	assert.Len(t, s.Chat(), 2)

	ui, _ = s.Dispatch(Action{Type: ActionToggleChat})
	assert.False(t, ui.ShowChat)
	assert.Len(t, s.Chat(), 1)
}

func TestKeyboardNavigation(t *testing.T) {
	s := newTestSession(t)

	ui, _ := s.Dispatch(Action{Type: ActionNext})
	assert.Equal(t, "a", ui.ExpandedID)
	ui, _ = s.Dispatch(Action{Type: ActionNext})
	assert.Equal(t, "b", ui.ExpandedID)
	ui, _ = s.Dispatch(Action{Type: ActionPrev})
	assert.Equal(t, "a", ui.ExpandedID)
	ui, _ = s.Dispatch(Action{Type: ActionPrev})
	assert.Equal(t, "a", ui.ExpandedID)

	ui, _ = s.Dispatch(Action{Type: ActionOpenEmail})
	assert.Equal(t, "a", ui.ViewingID)

	// navigation is ignored while an overlay is open
	ui, _ = s.Dispatch(Action{Type: ActionNext})
	assert.Equal(t, "a", ui.ExpandedID)

	ui, _ = s.Dispatch(Action{Type: ActionEscape})
	assert.Empty(t, ui.ViewingID)
	assert.Empty(t, ui.ExpandedID)
}

func TestToggleExpandAndForget(t *testing.T) {
	s := newTestSession(t)
	ui, _ := s.Dispatch(Action{Type: ActionToggleExpand, ID: "b"})
	assert.Equal(t, "b", ui.ExpandedID)
	ui, _ = s.Dispatch(Action{Type: ActionToggleExpand, ID: "b"})
	assert.Empty(t, ui.ExpandedID)

	s.Dispatch(Action{Type: ActionOpenEmail, ID: "c"})
	s.Forget("c")
	assert.Empty(t, s.UI().ViewingID)
}

func TestToggleDarkMode(t *testing.T) {
	s := New("u", nil)
	ui, _ := s.Dispatch(Action{Type: ActionToggleDarkMode})
	assert.False(t, ui.DarkMode)
}

func TestManagerLoadsPinsOnce(t *testing.T) {
	calls := 0
	m := NewManager(func(ctx context.Context, userID string) ([]string, error) {
		calls++
		return []string{"p1"}, nil
	})

	s1, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	s2, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, calls)
	assert.True(t, s1.Inbox.Pins().Has("p1"))

	m.Drop("u1")
	s3, err := m.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotSame(t, s1, s3)
	assert.Equal(t, 2, calls)
}

func TestManagerPropagatesLoadError(t *testing.T) {
	calls := 0
	m := NewManager(func(ctx context.Context, userID string) ([]string, error) {
		calls++
		return nil, errors.New("db down")
	})

	_, err := m.Get(context.Background(), "u1")
	assert.ErrorContains(t, err, "db down")
	_, err = m.Get(context.Background(), "u1")
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}
