package hub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"lunch-picker/internal/domain"
	redisstate "lunch-picker/internal/infra/state/redis"
	"lunch-picker/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	err error
}

func (l stubLoader) GetRoom(ctx context.Context, roomID string) (*service.RoomView, error) {
	if l.err != nil {
		return nil, l.err
	}
	name := "Team " + roomID
	return &service.RoomView{RoomID: roomID, RoomName: &name, DayKey: "2024-03-04", AttemptsLeft: domain.MaxAttempts}, nil
}

func receive(t *testing.T, c *Client) OutboundMessage {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg OutboundMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered to client")
		return OutboundMessage{}
	}
}

func TestHub_RegisterSendsSnapshot(t *testing.T) {
	h := NewHub(stubLoader{})
	c := NewClient(h, nil, "r1")

	h.registerClient(c)
	assert.Equal(t, 1, h.ClientCount("r1"))

	msg := receive(t, c)
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Room)
	assert.Equal(t, "r1", msg.Room.RoomID)
	assert.Equal(t, 2, msg.Room.AttemptsLeft)
}

func TestHub_SnapshotFailureSendsError(t *testing.T) {
	h := NewHub(stubLoader{err: errors.New("store down")})
	c := NewClient(h, nil, "r1")

	h.registerClient(c)
	msg := receive(t, c)
	assert.Equal(t, "error", msg.Type)
	assert.Nil(t, msg.Room)
}

func TestHub_DispatchChangeOnlyReachesItsRoom(t *testing.T) {
	h := NewHub(stubLoader{})
	a := NewClient(h, nil, "r1")
	b := NewClient(h, nil, "r2")
	h.registerClient(a)
	h.registerClient(b)
	receive(t, a)
	receive(t, b)

	payload, _ := json.Marshal(domain.ChangeEvent{RoomID: "r1", Type: domain.ChangePick, DayKey: "2024-03-04"})
	h.dispatchChange(payload)

	msg := receive(t, a)
	assert.Equal(t, "change", msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, domain.ChangePick, msg.Event.Type)
	assert.Empty(t, b.send)
}

func TestHub_DispatchChangeDropsMalformedPayload(t *testing.T) {
	h := NewHub(stubLoader{})
	c := NewClient(h, nil, "r1")
	h.registerClient(c)
	receive(t, c)

	h.dispatchChange([]byte("not json"))
	h.dispatchChange([]byte(`{"type":"pick"}`))
	assert.Empty(t, c.send)
}

func TestHub_UnregisterClosesSendOnce(t *testing.T) {
	h := NewHub(stubLoader{})
	c := NewClient(h, nil, "r1")
	h.registerClient(c)
	receive(t, c)

	h.unregisterClient(c)
	h.unregisterClient(c)
	assert.Equal(t, 0, h.ClientCount("r1"))

	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHub_RunProcessesQueuedMessages(t *testing.T) {
	h := NewHub(stubLoader{})
	go h.Run()

	c := NewClient(h, nil, "r1")
	require.True(t, h.QueueMessage(HubMessage{Type: "register", RoomID: "r1", Client: c}))
	require.Eventually(t, func() bool { return h.ClientCount("r1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.True(t, h.QueueMessage(HubMessage{Type: "unregister", RoomID: "r1", Client: c}))
	require.Eventually(t, func() bool { return h.ClientCount("r1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ListenChangesForwardsRedisEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := redisstate.NewRedisStore(rdb, "test:")

	h := NewHub(stubLoader{})
	c := NewClient(h, nil, "room-42")
	h.registerClient(c)
	receive(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.ListenChanges(ctx, rdb, redisstate.ChangeChannelPattern("test:")) }()
	require.Eventually(t, func() bool { return mr.PubSubNumPat() == 1 }, 2*time.Second, 10*time.Millisecond)

	event := domain.ChangeEvent{RoomID: "room-42", Type: domain.ChangeCatalog, DayKey: "2024-03-04"}
	require.NoError(t, store.PublishChange(context.Background(), event))

	msg := receive(t, c)
	assert.Equal(t, "change", msg.Type)
	assert.Equal(t, "room-42", msg.Event.RoomID)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ListenChanges did not stop after cancel")
	}
}
