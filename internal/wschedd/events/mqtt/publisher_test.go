package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	mqtt.Client
	token *fakeToken
	sent  []published
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic, qos, payload.([]byte)})
	return c.token
}

func TestPublish(t *testing.T) {
	client := &fakeClient{token: completedToken(nil)}
	pub := NewPublisher(client, "wsched", 1)

	err := pub.Publish(context.Background(), events.Event{Type: events.PermissionDeleted, DeviceID: 5, EntryID: 2})
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	assert.Equal(t, "wsched/devices/5/schedule", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	var got events.Event
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &got))
	assert.Equal(t, events.PermissionDeleted, got.Type)
}

func TestPublishErrors(t *testing.T) {
	broken := &fakeClient{token: completedToken(errors.New("not connected"))}
	err := NewPublisher(broken, "wsched", 0).Publish(context.Background(), events.Event{DeviceID: 1})
	assert.ErrorContains(t, err, "not connected")

	stuck := &fakeClient{token: &fakeToken{done: make(chan struct{})}}
	pub := NewPublisher(stuck, "wsched", 0)
	pub.timeout = 10 * time.Millisecond
	assert.ErrorIs(t, pub.Publish(context.Background(), events.Event{DeviceID: 1}), ErrPublishTimeout)
}
