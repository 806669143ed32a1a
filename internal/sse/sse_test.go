package sse

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mailsage/internal/logger"
	"mailsage/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard)
}

func TestBroadcastFansOutToUserClients(t *testing.T) {
	manager := NewSSEManager(quietLogger())
	defer manager.Close()

	a := manager.AddClient("u1")
	b := manager.AddClient("u1")
	other := manager.AddClient("u2")
	assert.Equal(t, 2, manager.GetUserConnectionCount("u1"))

	manager.BroadcastToUser("u1", "pin_changed", map[string]interface{}{"id": "m1", "pinned": true})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Events:
			var event Event
			require.NoError(t, json.Unmarshal(raw, &event))
			assert.Equal(t, "pin_changed", event.Type)
			assert.Equal(t, "m1", event.Data.(map[string]interface{})["id"])
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
	select {
	case <-other.Events:
		t.Fatal("event leaked to another user")
	default:
	}
}

func TestRemoveClient(t *testing.T) {
	manager := NewSSEManager(quietLogger())
	defer manager.Close()

	c := manager.AddClient("u1")
	manager.RemoveClient(c)
	manager.RemoveClient(c)

	_, open := <-c.Events
	assert.False(t, open)
	assert.False(t, manager.HasUserConnection("u1"))
	assert.Empty(t, manager.ConnectedUsers())
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	manager := NewSSEManager(quietLogger())
	defer manager.Close()

	c := manager.AddClient("u1")
	for i := 0; i < cap(c.Events)+5; i++ {
		manager.BroadcastToUser("u1", "notice", i)
	}
	assert.Len(t, c.Events, cap(c.Events))
}

func TestCloseSignalsDone(t *testing.T) {
	manager := NewSSEManager(quietLogger())
	c := manager.AddClient("u1")
	manager.Close()

	select {
	case <-manager.Done():
	default:
		t.Fatal("done not closed")
	}
	_, open := <-c.Events
	assert.False(t, open)
	manager.RemoveClient(c)
}

type fakeInbox struct {
	mu        sync.Mutex
	refreshed []string
	onRefresh func(userID string)
}

func (f *fakeInbox) Refresh(ctx context.Context, userID string) ([]model.Email, error) {
	f.mu.Lock()
	f.refreshed = append(f.refreshed, userID)
	hook := f.onRefresh
	f.mu.Unlock()
	if hook != nil {
		hook(userID)
	}
	return nil, nil
}

func (f *fakeInbox) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.refreshed...)
}

func (f *fakeInbox) TogglePin(ctx context.Context, userID, messageID string) (bool, error) {
	return false, nil
}

func (f *fakeInbox) SetPinned(ctx context.Context, userID, messageID string, pinned bool) (bool, error) {
	return false, nil
}

func (f *fakeInbox) Archive(ctx context.Context, userID, messageID string) error { return nil }

func (f *fakeInbox) Delete(ctx context.Context, userID, messageID string) error { return nil }

func TestRunOnceRefreshesConnectedUsersOnly(t *testing.T) {
	manager := NewSSEManager(quietLogger())
	defer manager.Close()
	inbox := &fakeInbox{}

	manager.AddClient("connected")
	job := NewInboxRefreshJob(inbox, manager, time.Minute, quietLogger())
	job.RunOnce()

	assert.Equal(t, []string{"connected"}, inbox.calls())
}

func TestJobStartStop(t *testing.T) {
	manager := NewSSEManager(quietLogger())
	defer manager.Close()
	inbox := &fakeInbox{}
	manager.AddClient("u1")

	job := NewInboxRefreshJob(inbox, manager, 10*time.Millisecond, quietLogger())
	job.Start()
	assert.Eventually(t, func() bool { return len(inbox.calls()) > 0 }, time.Second, 5*time.Millisecond)
	job.Stop()

	calls := len(inbox.calls())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, len(inbox.calls()))
}

func TestRunOnceSkipsUsersThatDisconnected(t *testing.T) {
	manager := NewSSEManager(quietLogger())
	defer manager.Close()

	clients := map[string]*Client{
		"a": manager.AddClient("a"),
		"b": manager.AddClient("b"),
	}
	inbox := &fakeInbox{}
	inbox.onRefresh = func(userID string) {
		for id, c := range clients {
			if id != userID {
				manager.RemoveClient(c)
			}
		}
	}

	NewInboxRefreshJob(inbox, manager, time.Minute, quietLogger()).RunOnce()
	assert.Len(t, inbox.calls(), 1)
}
