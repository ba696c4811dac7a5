// Package mailer implements the notification dispatcher boundary: SMTP
// delivery of confirmation emails with an optional access-pass attachment.
// All transport failures fold into the DispatchResult; nothing here ever
// raises past the boundary or blocks a committed confirmation.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/iux-juridico/invitaciones/backend/internal/confirmations"
	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const sendSubject = "✅ Confirmación de Asistencia - Posgrado en TIC's"

// Config carries the SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Logger   *zap.Logger
}

// Mailer delivers confirmation emails over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
	logger *zap.Logger
}

// New builds an SMTP-backed dispatcher.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mailer: smtp host is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	options := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, options...)
	if err != nil {
		return nil, err
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &Mailer{client: client, from: from, logger: logger}, nil
}

// SendConfirmationEmail delivers the confirmation mail, attaching the
// pass image when one is supplied. The verdict is always a result value.
func (m *Mailer) SendConfirmationEmail(ctx context.Context, msg confirmations.Message) confirmations.DispatchResult {
	message := mail.NewMsg()
	if err := message.From(m.from); err != nil {
		return failure(err)
	}
	if err := message.To(msg.ToEmail); err != nil {
		return failure(err)
	}
	message.Subject(sendSubject)
	message.SetBodyString(mail.TypeTextHTML, renderBody(msg))

	if msg.PassImage != "" {
		if err := attachPass(message, msg.PassImage, msg.GuestName); err != nil {
			// A broken attachment does not block the mail.
			m.logger.Warn("pass attachment skipped", zap.Error(err))
		}
	}

	if err := m.client.DialAndSendWithContext(ctx, message); err != nil {
		m.logger.Warn("email send failed",
			zap.String("to", msg.ToEmail), zap.Error(err))
		return failure(err)
	}

	return confirmations.DispatchResult{Success: true, Message: "Email enviado exitosamente"}
}

func failure(err error) confirmations.DispatchResult {
	return confirmations.DispatchResult{
		Success: false,
		Message: fmt.Sprintf("Error enviando email: %v", err),
	}
}

// attachPass decodes the base64 data URI produced by the pass renderer
// and attaches it as a PNG named after the guest.
func attachPass(message *mail.Msg, passImage, guestName string) error {
	encoded := passImage
	if _, after, found := strings.Cut(passImage, ","); found {
		encoded = after
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode pass image: %w", err)
	}
	return message.AttachReader(
		attachmentFilename(guestName),
		bytes.NewReader(data),
		mail.WithFileContentType(mail.ContentType("image/png")),
	)
}

// Disabled returns a dispatcher that reports every send as a soft
// failure. Used when SMTP is not configured so notification outcomes
// stay observable without a transport.
func Disabled(logger *zap.Logger) confirmations.Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return disabledDispatcher{logger: logger}
}

type disabledDispatcher struct {
	logger *zap.Logger
}

func (d disabledDispatcher) SendConfirmationEmail(_ context.Context, msg confirmations.Message) confirmations.DispatchResult {
	d.logger.Info("email delivery disabled, notification dropped",
		zap.String("to", msg.ToEmail))
	return confirmations.DispatchResult{Success: false, Message: "Envío de email deshabilitado"}
}
