package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/yukikurage/taskflow-api/internal/logger"
)

// DeadLetter records a side effect that could not complete.
type DeadLetter struct {
	Job      string      `json:"job"`
	Payload  interface{} `json:"payload,omitempty"`
	Error    string      `json:"error"`
	FailedAt time.Time   `json:"failed_at"`
}

type DeadLetterSink interface {
	Record(ctx context.Context, letter DeadLetter) error
}

// LogSink writes dead letters to the process log.
type LogSink struct{}

func (LogSink) Record(ctx context.Context, letter DeadLetter) error {
	logger.Warn("Side effect failed",
		"job", letter.Job,
		"payload", letter.Payload,
		"error", letter.Error,
		"failed_at", letter.FailedAt,
	)
	return nil
}

// MultiSink fans a dead letter out to every sink and returns the first error.
type MultiSink []DeadLetterSink

func (m MultiSink) Record(ctx context.Context, letter DeadLetter) error {
	var firstErr error
	for _, sink := range m {
		if err := sink.Record(ctx, letter); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NATSSink publishes dead letters as JSON on a subject.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

func NewNATSSink(conn *nats.Conn, subject string) *NATSSink {
	return &NATSSink{conn: conn, subject: subject}
}

func (s *NATSSink) Record(ctx context.Context, letter DeadLetter) error {
	data, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter: %w", err)
	}

	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish dead letter: %w", err)
	}
	return s.conn.FlushWithContext(ctx)
}

// ConnectNATS opens a connection that reconnects forever.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("taskflow-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}
