package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogTransport writes messages to the logger instead of sending them. It is the
// default outside production so codes can be read from the console.
type LogTransport struct {
	log *zap.SugaredLogger
}

// NewLogTransport creates a LogTransport.
func NewLogTransport(log *zap.SugaredLogger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Deliver(_ context.Context, msg Message) error {
	t.log.Infow("email",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
