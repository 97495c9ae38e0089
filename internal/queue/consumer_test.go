package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerHandleAppendsLines(t *testing.T) {
	c := &Consumer{LogPath: filepath.Join(t.TempDir(), "logs", "adoptions.log")}

	created, err := json.Marshal(AdoptionCreatedEvent{
		AdoptionID:  1,
		SpaceID:     3,
		SpaceName:   "Bagno 1",
		SpaceCost:   3000,
		SponsorName: "Acme",
		WantsToHelp: true,
		CreatedAt:   "2026-10-15T10:00:00Z",
	})
	require.NoError(t, err)
	changed, err := json.Marshal(AdoptionStatusChangedEvent{AdoptionID: 1, Status: "confirmed", ChangedAt: "2026-10-15T11:00:00Z"})
	require.NoError(t, err)

	require.NoError(t, c.Handle(AdoptionCreatedQueue, created))
	require.NoError(t, c.Handle(AdoptionStatusChangedQueue, changed))

	data, err := os.ReadFile(c.LogPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `[2026-10-15T10:00:00Z] Adoption created | adoption_id=1 | space_id=3 | space="Bagno 1" | cost=3000 | sponsor="Acme" | wants_to_help=true`, lines[0])
	assert.Equal(t, `[2026-10-15T11:00:00Z] Adoption status changed | adoption_id=1 | status=confirmed`, lines[1])
}

func TestConsumerHandleRejectsBadMessages(t *testing.T) {
	c := &Consumer{LogPath: filepath.Join(t.TempDir(), "adoptions.log")}

	assert.Error(t, c.Handle(AdoptionCreatedQueue, []byte("{")))
	assert.Error(t, c.Handle("booking.confirmed", []byte("{}")))
	_, err := os.Stat(c.LogPath)
	assert.True(t, os.IsNotExist(err))
}

type recordingAck struct {
	mu      sync.Mutex
	requeue []bool
}

func (r *recordingAck) Ack(uint64, bool) error { return nil }

func (r *recordingAck) Nack(_ uint64, _ bool, requeue bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requeue = append(r.requeue, requeue)
	return nil
}

func (r *recordingAck) Reject(uint64, bool) error { return nil }

func TestForwardReleasedWhenLoopEnds(t *testing.T) {
	ack := &recordingAck{}
	msgs := make(chan amqp.Delivery, 1)
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1}
	out := make(chan amqp.Delivery) // nobody receives, as after a closed connection
	done := make(chan struct{})

	finished := make(chan struct{})
	go func() {
		forward(context.Background(), done, msgs, out)
		close(finished)
	}()
	close(done)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder still blocked after the loop ended")
	}
	ack.mu.Lock()
	defer ack.mu.Unlock()
	assert.Equal(t, []bool{true}, ack.requeue)
}

func TestForwardHandsOverUntilSourceCloses(t *testing.T) {
	msgs := make(chan amqp.Delivery, 2)
	msgs <- amqp.Delivery{RoutingKey: AdoptionCreatedQueue}
	msgs <- amqp.Delivery{RoutingKey: AdoptionStatusChangedQueue}
	close(msgs)
	out := make(chan amqp.Delivery)

	go forward(context.Background(), make(chan struct{}), msgs, out)

	assert.Equal(t, AdoptionCreatedQueue, (<-out).RoutingKey)
	assert.Equal(t, AdoptionStatusChangedQueue, (<-out).RoutingKey)
}
