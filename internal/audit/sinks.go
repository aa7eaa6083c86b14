package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"posu-analytics/internal/model"
)

type TableSink struct {
	db *gorm.DB
}

func NewTableSink(db *gorm.DB) *TableSink {
	return &TableSink{db: db}
}

func (s *TableSink) Name() string { return "table" }

func (s *TableSink) Write(ctx context.Context, entry Entry) error {
	row := model.AuditLog{
		ActorRole:   entry.ActorRole,
		ActorID:     entry.ActorID,
		ActorName:   entry.ActorName,
		Action:      entry.Action,
		TargetType:  entry.TargetType,
		TargetID:    entry.TargetID,
		TargetName:  entry.TargetName,
		Description: entry.Description,
		CreatedAt:   entry.At,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// BrokerSink publishes entries as persistent JSON messages on a durable queue.
// One connection and channel are shared by all writes and reopened if the broker drops them.
type BrokerSink struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewBrokerSink dials the broker and declares the queue up front.
func NewBrokerSink(url, queue string) (*BrokerSink, error) {
	s := &BrokerSink{url: url, queue: queue}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BrokerSink) Name() string { return "amqp" }

func (s *BrokerSink) Write(ctx context.Context, entry Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch == nil || s.ch.IsClosed() {
		if err := s.connect(); err != nil {
			return err
		}
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    entry.At,
		Type:         entry.Action,
		Body:         body,
	}
	if err := s.ch.PublishWithContext(ctx, "", s.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (s *BrokerSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.release()
}

// connect must be called with mu held.
func (s *BrokerSink) connect() error {
	if err := s.release(); err != nil {
		return err
	}

	conn, err := amqp.Dial(s.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return errors.Join(fmt.Errorf("open channel: %w", err), closeErr("close connection", conn.Close()))
	}
	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		return errors.Join(fmt.Errorf("declare queue: %w", err),
			closeErr("close channel", ch.Close()),
			closeErr("close connection", conn.Close()))
	}

	s.conn, s.ch = conn, ch
	return nil
}

func (s *BrokerSink) release() error {
	var errs []error
	if s.ch != nil {
		errs = append(errs, closeErr("close channel", s.ch.Close()))
		s.ch = nil
	}
	if s.conn != nil {
		errs = append(errs, closeErr("close connection", s.conn.Close()))
		s.conn = nil
	}
	return errors.Join(errs...)
}

// closeErr ignores resources the broker already closed.
func closeErr(op string, err error) error {
	if err == nil || errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
