package inquiry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-restlets/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-restlets/jobs"
)

type mockRepository struct {
	nextID    int64
	created   []Inquiry
	customers map[string]*Customer
	links     map[int64]int64

	createErr error
	findErr   error
	linkErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{nextID: 41, customers: map[string]*Customer{}, links: map[int64]int64{}}
}

func (m *mockRepository) Create(_ context.Context, in Inquiry) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.nextID++
	in.ID = m.nextID
	m.created = append(m.created, in)
	return in.ID, nil
}

func (m *mockRepository) FindCustomerByEmail(_ context.Context, email string) (*Customer, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.customers[email]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

func (m *mockRepository) LinkCustomer(_ context.Context, inquiryID, customerID int64) error {
	if m.linkErr != nil {
		return m.linkErr
	}
	m.links[inquiryID] = customerID
	return nil
}

type stubNotifier struct {
	sent []jobs.SendEmailPayload
	err  error
}

func (s *stubNotifier) EnqueueSendEmail(_ context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, payload)
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueDefault}, nil
}

func (s *stubNotifier) recipients() []string {
	out := make([]string, 0, len(s.sent))
	for _, p := range s.sent {
		out = append(out, p.To)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Name:    "Ada Lovelace",
		Email:   "Ada@Example.com ",
		Subject: "Bulk pricing",
		Message: "Do you offer discounts above 100 units?",
	}
}

func TestSubmitNotifiesAdminAndSalesRep(t *testing.T) {
	repo := newMockRepository()
	repo.customers["ada@example.com"] = &Customer{ID: 7, SalesRepEmail: "rep@example.com"}
	notifier := &stubNotifier{}
	svc := NewService(repo, notifier, "admin@example.com", discardLogger())

	id, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(42), id)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Ada@Example.com", repo.created[0].Email)
	assert.Equal(t, int64(7), repo.links[id])
	assert.Equal(t, []string{"admin@example.com", "rep@example.com"}, notifier.recipients())
	for _, p := range notifier.sent {
		assert.Equal(t, "New Customer Inquiry", p.Subject)
		assert.Contains(t, p.Body, "Bulk pricing")
	}
	assert.Contains(t, notifier.sent[0].Body, "Dear Admin")
	assert.Contains(t, notifier.sent[1].Body, "Dear Sales Representative")
}

func TestSubmitWithoutMatchingCustomer(t *testing.T) {
	repo := newMockRepository()
	notifier := &stubNotifier{}
	svc := NewService(repo, notifier, "admin@example.com", discardLogger())

	_, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Empty(t, repo.links)
	assert.Equal(t, []string{"admin@example.com"}, notifier.recipients())
}

func TestSubmitCustomerWithoutSalesRep(t *testing.T) {
	repo := newMockRepository()
	repo.customers["ada@example.com"] = &Customer{ID: 9}
	notifier := &stubNotifier{}
	svc := NewService(repo, notifier, "admin@example.com", discardLogger())

	id, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(9), repo.links[id])
	assert.Equal(t, []string{"admin@example.com"}, notifier.recipients())
}

func TestSubmitWithExplicitCustomerSkipsLookup(t *testing.T) {
	repo := newMockRepository()
	repo.findErr = errors.New("lookup must not run")
	notifier := &stubNotifier{}
	svc := NewService(repo, notifier, "admin@example.com", discardLogger())

	ref := int64(3)
	req := validRequest()
	req.CustomerRef = &ref
	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, repo.created[0].CustomerID)
	assert.Equal(t, int64(3), *repo.created[0].CustomerID)
	assert.Empty(t, repo.links)
	assert.Equal(t, []string{"admin@example.com"}, notifier.recipients())
}

func TestSubmitValidation(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &stubNotifier{}, "admin@example.com", discardLogger())

	req := validRequest()
	req.Email = "not-an-email"
	req.Message = ""
	_, err := svc.Submit(context.Background(), req)

	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "email: must be a valid email address")
	assert.Contains(t, err.Error(), "message: is required")
	assert.Empty(t, repo.created)
}

func TestSubmitPropagatesCreateFailure(t *testing.T) {
	repo := newMockRepository()
	repo.createErr = errors.New("db down")
	notifier := &stubNotifier{}
	svc := NewService(repo, notifier, "admin@example.com", discardLogger())

	_, err := svc.Submit(context.Background(), validRequest())

	require.Error(t, err)
	assert.Empty(t, notifier.sent)
}

func TestSubmitSwallowsNotificationFailures(t *testing.T) {
	repo := newMockRepository()
	repo.customers["ada@example.com"] = &Customer{ID: 7, SalesRepEmail: "rep@example.com"}
	repo.linkErr = errors.New("link failed")
	svc := NewService(repo, &stubNotifier{err: errors.New("redis unavailable")}, "admin@example.com", discardLogger())

	id, err := svc.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestSubmitWithoutNotifier(t *testing.T) {
	repo := newMockRepository()
	repo.customers["ada@example.com"] = &Customer{ID: 7, SalesRepEmail: "rep@example.com"}
	svc := NewService(repo, nil, "admin@example.com", discardLogger())

	id, err := svc.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(7), repo.links[id])
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  ADA@Example.COM "))
	assert.Equal(t, "strasse@example.com", NormalizeEmail("STRASSE@example.com"))
}
