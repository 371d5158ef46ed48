package professions

import (
	"context"
	"fmt"
	"strings"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
)

// Service handles profession catalog logic.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns professions.
func (s *Service) List(ctx context.Context, onlyActive bool) ([]Profession, error) {
	return s.repo.List(ctx, onlyActive)
}

// Get returns one profession.
func (s *Service) Get(ctx context.Context, id int64) (Profession, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new active profession.
func (s *Service) Create(ctx context.Context, name string) (Profession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profession{}, fmt.Errorf("profession name is required: %w", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, name)
}

// SetActive toggles the active flag.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}
