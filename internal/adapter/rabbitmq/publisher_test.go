package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/realestate-backend/internal/config"
	"github.com/heartmarshall/realestate-backend/internal/domain"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
	deadline bool
}

type fakeChannel struct {
	declareErr error
	publishErr error
	declared   []string
	published  []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	_, hasDeadline := ctx.Deadline()
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg, deadline: hasDeadline})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeConn struct{ closed bool }

func (f *fakeConn) IsClosed() bool { return f.closed }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func testBrokerConfig() config.BrokerConfig {
	return config.BrokerConfig{
		Enabled:        true,
		Exchange:       "realestate.events",
		PublishTimeout: time.Second,
	}
}

func priceTrace() domain.PropertyTrace {
	oldTotal := decimal.RequireFromString("110.00")
	newTotal := decimal.RequireFromString("220.00")
	actor := "agent"
	return domain.PropertyTrace{
		ID:         uuid.New(),
		PropertyID: uuid.New(),
		EventType:  domain.TraceEventPriceChange,
		EventDate:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ActorName:  &actor,
		OldTotal:   &oldTotal,
		NewTotal:   &newTotal,
		Notes:      "price: 110.00 -> 220.00",
	}
}

func TestNewPublisher_DeclaresTopicExchange(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	_, err := newPublisher(&fakeConn{}, ch, testBrokerConfig(), slog.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"realestate.events:topic"}, ch.declared)
}

func TestNewPublisher_DeclareError(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newPublisher(&fakeConn{}, ch, testBrokerConfig(), slog.Default())
	require.Error(t, err)
	assert.True(t, ch.closed, "channel must be closed on failure")
}

func TestPublishTraces_Message(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	p, err := newPublisher(&fakeConn{}, ch, testBrokerConfig(), slog.Default())
	require.NoError(t, err)

	tr := priceTrace()
	require.NoError(t, p.PublishTraces(context.Background(), []domain.PropertyTrace{tr}))
	require.Len(t, ch.published, 1)

	got := ch.published[0]
	assert.Equal(t, "realestate.events", got.exchange)
	assert.Equal(t, "property.price_change", got.key)
	assert.True(t, got.deadline, "publish must run under the configured timeout")
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, tr.ID.String(), got.msg.MessageId)
	assert.Equal(t, "PRICE_CHANGE", got.msg.Type)
	assert.True(t, got.msg.Timestamp.Equal(tr.EventDate))

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, tr.PropertyID.String(), body["property_id"])
	assert.Equal(t, "110", body["old_total"])
	assert.Equal(t, "agent", body["actor_name"])
	assert.NotContains(t, body, "new_base")
}

func TestPublishTraces_Empty(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{publishErr: errors.New("must not be called")}
	p, err := newPublisher(&fakeConn{}, ch, testBrokerConfig(), slog.Default())
	require.NoError(t, err)

	assert.NoError(t, p.PublishTraces(context.Background(), nil))
}

func TestPublishTraces_Error(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{publishErr: amqp.ErrClosed}
	p, err := newPublisher(&fakeConn{}, ch, testBrokerConfig(), slog.Default())
	require.NoError(t, err)

	err = p.PublishTraces(context.Background(), []domain.PropertyTrace{priceTrace()})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestRoutingKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "property.created", RoutingKey(domain.TraceEventCreated))
	assert.Equal(t, "property.deleted", RoutingKey(domain.TraceEventDeleted))
}

func TestClose(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	conn := &fakeConn{}
	p, err := newPublisher(conn, ch, testBrokerConfig(), slog.Default())
	require.NoError(t, err)

	require.NoError(t, p.Ping(context.Background()))
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.True(t, conn.closed)
	assert.ErrorIs(t, p.Ping(context.Background()), amqp.ErrClosed)
}
