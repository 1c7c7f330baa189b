package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.got = append(r.got, e)
	return r.err
}

func TestMultiDeliversToAll(t *testing.T) {
	failing := &recorder{err: errors.New("broker down")}
	ok := &recorder{}
	m := NewMulti(slog.New(slog.NewTextHandler(io.Discard, nil)), failing, nil, ok)

	err := m.Publish(context.Background(), Event{Type: ShowSaved, DeviceID: 3})

	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, failing.got, 1)
	assert.Len(t, ok.got, 1)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "wsched/devices/12/schedule", Topic("wsched", 12))
}
