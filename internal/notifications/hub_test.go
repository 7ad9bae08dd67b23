package notifications

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func dialHub(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(userID, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, err := websocket.Dial(url, "", server.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// Wait for the hub to register the subscriber.
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(userID) == 1
	}, time.Second, 10*time.Millisecond)

	return conn
}

func TestHubDeliversEvents(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "user-1")

	count := int64(3)
	hub.Broadcast("user-1", Event{
		Event:          "notification.created",
		NotificationID: "n-1",
		UnreadCount:    &count,
	})

	var received Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, websocket.JSON.Receive(conn, &received))
	require.Equal(t, "notification.created", received.Event)
	require.Equal(t, "n-1", received.NotificationID)
	require.NotNil(t, received.UnreadCount)
	require.EqualValues(t, 3, *received.UnreadCount)
}

func TestHubScopesEventsToUser(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, "listener")

	hub.Broadcast("someone-else", Event{Event: "notification.created"})
	hub.Broadcast("listener", Event{Event: "notification.read"})

	var received Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, websocket.JSON.Receive(conn, &received))
	require.Equal(t, "notification.read", received.Event)
}

func TestHubBroadcastWithoutSubscribers(t *testing.T) {
	hub := NewHub()

	// Must not panic or block.
	hub.Broadcast("ghost", Event{Event: "notification.created"})
	require.Zero(t, hub.SubscriberCount("ghost"))
}
