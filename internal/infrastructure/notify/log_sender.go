package notify

import (
	"context"

	"github.com/jhoicas/trek-api/internal/application/notification"
	"github.com/jhoicas/trek-api/pkg/logger"
)

var _ notification.Sender = (*LogSender)(nil)

// LogSender sin SMTP configurado: registra el aviso y reporta éxito.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender construye el sender de desarrollo.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, m notification.Message) error {
	ev := s.log.Info().Str("to", m.To).Str("subject", m.Subject).Str("body", m.Body)
	if m.Attachment != nil {
		ev = ev.Str("attachment", m.Attachment.FileName).Int("attachment_bytes", len(m.Attachment.Content))
	}
	ev.Msg("e-mail simulado (SMTP no configurado)")
	return nil
}
