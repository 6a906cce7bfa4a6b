package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-restlets/internal/jobs"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, msg SendEmailPayload) error
}

// SMTPSender delivers mail through a plain SMTP relay such as Mailpit.
type SMTPSender struct {
	Host string
	Port int
	From string

	// sendMail is swapped in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	clock    func() time.Time
}

// NewSMTPSender builds a sender for host:port.
func NewSMTPSender(host string, port int, from string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		From:     from,
		sendMail: smtp.SendMail,
		clock:    time.Now,
	}
}

// Send writes the message to the relay. The context only guards the start of
// the call since net/smtp has no cancellation support.
func (s *SMTPSender) Send(ctx context.Context, msg SendEmailPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	if err := s.sendMail(addr, nil, s.From, []string{msg.To}, s.render(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) render(msg SendEmailPayload) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", headerValue(msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.clock().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@odyssey>\r\n", uuid.NewString())
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// EmailJob processes TaskTypeSendEmail tasks.
type EmailJob struct {
	Sender  Sender
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewEmailJob wires the email handler.
func NewEmailJob(sender Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *EmailJob {
	return &EmailJob{Sender: sender, Logger: logger, Metrics: metrics}
}

// Handle decodes the payload and hands it to the sender. Malformed payloads
// are not retried.
func (j *EmailJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Sender == nil {
		return errors.New("send email: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger().Warn("discarding malformed email task", slog.Any("error", err))
		return fmt.Errorf("decode email payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email task without recipient: %w", asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskTypeSendEmail)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Sender.Send(ctx, payload); err != nil {
		j.logger().Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	j.Metrics.AddProcessed(TaskTypeSendEmail, 1)
	j.logger().Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}

func (j *EmailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
