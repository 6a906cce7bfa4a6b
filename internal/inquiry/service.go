package inquiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-restlets/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-restlets/internal/shared"
	"github.com/odyssey-erp/odyssey-restlets/jobs"
)

const notificationSubject = "New Customer Inquiry"

// Notifier queues outbound email. *jobs.Client satisfies it.
type Notifier interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Service records inquiries and dispatches notifications.
type Service struct {
	repo       Repository
	notifier   Notifier
	adminEmail string
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewService constructs the service. notifier may be nil to disable email.
func NewService(repo Repository, notifier Notifier, adminEmail string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		notifier:   notifier,
		adminEmail: adminEmail,
		validate:   shared.NewValidator(),
		logger:     logger,
	}
}

// Submit validates and stores the inquiry, then runs the post-submit
// notifications. Notification failures are logged and never returned.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (int64, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := s.validate.Struct(req); err != nil {
		if fields := shared.FieldErrors(err); len(fields) > 0 {
			return 0, fmt.Errorf("%w: %s", httpx.ErrValidation, shared.JoinFieldErrors(fields))
		}
		return 0, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	inq := Inquiry{
		Name:       req.Name,
		Email:      req.Email,
		Subject:    req.Subject,
		Message:    req.Message,
		CustomerID: req.CustomerRef,
	}
	id, err := s.repo.Create(ctx, inq)
	if err != nil {
		return 0, err
	}
	inq.ID = id

	s.afterSubmit(ctx, inq)
	return id, nil
}

func (s *Service) afterSubmit(ctx context.Context, inq Inquiry) {
	if inq.Email == "" {
		s.logger.DebugContext(ctx, "inquiry without email, skipping notifications", slog.Int64("inquiry_id", inq.ID))
		return
	}

	s.notify(ctx, "admin", s.adminEmail, adminBody(inq))

	if inq.CustomerID != nil {
		return
	}
	customer, err := s.repo.FindCustomerByEmail(ctx, NormalizeEmail(inq.Email))
	if errors.Is(err, ErrCustomerNotFound) {
		s.logger.DebugContext(ctx, "no customer matches inquiry email", slog.Int64("inquiry_id", inq.ID))
		return
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "find customer by email", slog.Int64("inquiry_id", inq.ID), slog.Any("error", err))
		return
	}

	if err := s.repo.LinkCustomer(ctx, inq.ID, customer.ID); err != nil {
		s.logger.ErrorContext(ctx, "link customer to inquiry", slog.Int64("inquiry_id", inq.ID), slog.Any("error", err))
	} else {
		s.logger.DebugContext(ctx, "customer linked to inquiry",
			slog.Int64("inquiry_id", inq.ID), slog.Int64("customer_id", customer.ID))
	}

	if customer.SalesRepEmail == "" {
		s.logger.DebugContext(ctx, "customer has no sales rep", slog.Int64("customer_id", customer.ID))
		return
	}
	s.notify(ctx, "sales_rep", customer.SalesRepEmail, salesRepBody(inq))
}

func (s *Service) notify(ctx context.Context, audience, to, body string) {
	if s.notifier == nil || to == "" {
		return
	}
	info, err := s.notifier.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      to,
		Subject: notificationSubject,
		Body:    body,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "enqueue inquiry notification", slog.String("audience", audience), slog.Any("error", err))
		return
	}
	attrs := []any{slog.String("audience", audience)}
	if info != nil {
		attrs = append(attrs, slog.String("task_id", info.ID))
	}
	s.logger.DebugContext(ctx, "inquiry notification queued", attrs...)
}

func adminBody(inq Inquiry) string {
	var b strings.Builder
	b.WriteString("Dear Admin,\n\nA new customer inquiry has been submitted.\n\nDetails:\n")
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nSubject: %s\nMessage: %s\n\n", inq.Name, inq.Email, inq.Subject, inq.Message)
	b.WriteString("Please review the inquiry.\n")
	return b.String()
}

func salesRepBody(inq Inquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear Sales Representative,\n\nYour customer (%s, %s) has submitted a new inquiry.\n\n", inq.Name, inq.Email)
	fmt.Fprintf(&b, "Subject: %s\nMessage: %s\n\n", inq.Subject, inq.Message)
	b.WriteString("Please follow up accordingly.\n")
	return b.String()
}
