package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func TestEncode(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	msg, err := encode(domain.ChangeEvent{
		Type:     domain.ChangeTransactionAdded,
		Email:    "ana@exemplo.com",
		EntityID: "tx-1",
		Context:  domain.ContextBusiness,
		At:       at,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp091.Persistent {
		t.Errorf("unexpected message properties %+v", msg)
	}
	if msg.Type != "transaction.added" || !msg.Timestamp.Equal(at) {
		t.Errorf("unexpected type/timestamp: %s %s", msg.Type, msg.Timestamp)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["entity_id"] != "tx-1" || decoded["context"] != "pj" || decoded["email"] != "ana@exemplo.com" {
		t.Errorf("unexpected body %s", msg.Body)
	}
}

func TestEncode_StampsMissingTime(t *testing.T) {
	msg, err := encode(domain.ChangeEvent{Type: domain.ChangeThemeUpdated})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected a timestamp to be set")
	}
}

func TestNop(t *testing.T) {
	if err := (Nop{}).Notify(context.Background(), domain.ChangeEvent{}); err != nil {
		t.Errorf("Nop should never fail, got %v", err)
	}
}

// fakeChannel records publishings instead of talking to a broker.
type fakeChannel struct {
	mu        sync.Mutex
	exchanges []string
	keys      []string
	msgs      []amqp091.Publishing
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.exchanges = append(f.exchanges, exchange)
	f.keys = append(f.keys, key)
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Notify(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "controletok.events", logger: zap.NewNop()}

	var wg sync.WaitGroup
	for _, typ := range []domain.ChangeType{domain.ChangeTransactionAdded, domain.ChangeGoalDeposit, domain.ChangeThemeUpdated} {
		wg.Add(1)
		go func(typ domain.ChangeType) {
			defer wg.Done()
			if err := p.Notify(context.Background(), domain.ChangeEvent{Type: typ, Email: "ana@exemplo.com"}); err != nil {
				t.Errorf("notify %s: %v", typ, err)
			}
		}(typ)
	}
	wg.Wait()

	if len(ch.msgs) != 3 {
		t.Fatalf("expected 3 publishings, got %d", len(ch.msgs))
	}
	for i, key := range ch.keys {
		if ch.exchanges[i] != "controletok.events" {
			t.Errorf("unexpected exchange %q", ch.exchanges[i])
		}
		if key != ch.msgs[i].Type {
			t.Errorf("routing key %q does not match message type %q", key, ch.msgs[i].Type)
		}
	}

	if err := p.Close(); err != nil || !ch.closed {
		t.Errorf("expected channel closed, got err=%v closed=%v", err, ch.closed)
	}
}

func TestAMQPPublisher_NotifyError(t *testing.T) {
	p := &AMQPPublisher{channel: &fakeChannel{err: errors.New("channel closed")}, exchange: "x", logger: zap.NewNop()}

	err := p.Notify(context.Background(), domain.ChangeEvent{Type: domain.ChangeGoalDeleted})
	if err == nil || !strings.Contains(err.Error(), "goal.deleted") {
		t.Errorf("expected wrapped publish error, got %v", err)
	}
}

func TestAMQPPublisher_Publish(t *testing.T) {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		t.Skip("AMQP_URL not set")
	}

	p, err := NewAMQPPublisher(url, "controletok.test", zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer p.Close()

	err = p.Notify(context.Background(), domain.ChangeEvent{
		Type:  domain.ChangeGoalDeposit,
		Email: "ana@exemplo.com",
	})
	if err != nil {
		t.Errorf("publish: %v", err)
	}
}
