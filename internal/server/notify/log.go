package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/sethnnections/authkeeper/internal/logging"
)

func newMessageID() string { return uuid.NewString() }

// LogSender writes messages to the logger instead of delivering them. The
// link, which embeds the token, is only emitted at debug level.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "notify")}
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
	s.logger.Info(ctx, "email queued", "id", m.ID, "kind", m.Kind, "to", m.To, "subject", m.Subject)
	s.logger.Debug(ctx, "email link", "id", m.ID, "link", m.Link)
	return nil
}
