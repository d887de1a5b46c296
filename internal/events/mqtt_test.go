package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct {
	done chan struct{}
	err  error
}

func newDoneToken(err error) *doneToken {
	t := &doneToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{}          { return t.done }
func (t *doneToken) Error() error                   { return t.err }

// fakeClient records publishes. Methods not overridden panic through the
// nil embedded interface.
type fakeClient struct {
	mqtt.Client
	topic        string
	qos          byte
	payload      []byte
	err          error
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.topic = topic
	c.qos = qos
	c.payload = payload.([]byte)
	return newDoneToken(c.err)
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestTopic(t *testing.T) {
	assert.Equal(t, "fleetquote/t1/quotation.created", Topic("t1", QuotationCreated))
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	p := newMQTTPublisher(client, 1, time.Second)

	err := p.Publish(context.Background(), Event{
		Type:     QuotationCreated,
		TenantID: "t1",
		Data:     map[string]string{"reference": "01J0000000000000000000000A"},
	})
	require.NoError(t, err)

	assert.Equal(t, "fleetquote/t1/quotation.created", client.topic)
	assert.Equal(t, byte(1), client.qos)

	var sent Event
	require.NoError(t, json.Unmarshal(client.payload, &sent))
	assert.Equal(t, QuotationCreated, sent.Type)
	assert.False(t, sent.OccurredAt.IsZero())

	p.Close()
	assert.True(t, client.disconnected)
}

func TestMQTTPublisher_PublishError(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	p := newMQTTPublisher(client, 0, time.Second)

	err := p.Publish(context.Background(), Event{Type: QuotationCreated, TenantID: "t1"})
	assert.EqualError(t, err, "not connected")
}

func TestNewMQTTPublisher_NoBroker(t *testing.T) {
	_, err := NewMQTTPublisher(MQTTConfig{})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	p.Close()
}
