package contact

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wichananm65/boutique-backend/internal/logger"
	"github.com/wichananm65/boutique-backend/internal/mailer"
	"go.uber.org/zap"
)

type Service struct {
	mail mailer.EmailSender
	to   string
}

// NewService forwards messages to inbox through m. An empty inbox only logs.
func NewService(m mailer.EmailSender, inbox string) *Service {
	return &Service{mail: m, to: inbox}
}

func (s *Service) Submit(ctx context.Context, msg Message) error {
	logger.Log.Info("contact message received",
		zap.String("email", msg.Email),
		zap.String("subject", msg.Subject),
		zap.Int("length", len(msg.Message)))
	if s.to == "" {
		return nil
	}

	body := fmt.Sprintf("<p><strong>De :</strong> %s &lt;%s&gt;</p><p><strong>Sujet :</strong> %s</p><p>%s</p>",
		html.EscapeString(msg.Name), html.EscapeString(msg.Email), html.EscapeString(msg.Subject), html.EscapeString(msg.Message))
	subject := strings.Join(strings.Fields("Contact : "+msg.Subject), " ")
	return s.mail.SendEmail(ctx, s.to, subject, body)
}
