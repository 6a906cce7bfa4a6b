package donors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-restlets/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-restlets/internal/shared"
)

// Service validates searches before they reach the repository.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService wires the donor service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: shared.NewValidator()}
}

// Search finds donors matching the query. Both filters are mandatory.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]Donor, error) {
	q.BloodGroup = strings.TrimSpace(q.BloodGroup)
	q.LastDonationBefore = strings.TrimSpace(q.LastDonationBefore)
	if err := s.validate.Struct(q); err != nil {
		return nil, fmt.Errorf("%w: bloodGroup and lastDonationBefore are required", httpx.ErrValidation)
	}
	before, err := time.Parse(DateLayout, q.LastDonationBefore)
	if err != nil {
		return nil, fmt.Errorf("%w: lastDonationBefore must be YYYY-MM-DD", httpx.ErrValidation)
	}
	return s.repo.Search(ctx, Criteria{BloodGroup: q.BloodGroup, Before: before})
}
