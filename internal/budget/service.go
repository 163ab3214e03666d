package budget

import (
	"fmt"
	"strings"

	"github.com/fundcast/fundcast/internal/model"
)

// GrantNotFoundError is returned when a grant is looked up by a name that
// does not exist. Available lists the valid ids so callers can recover.
type GrantNotFoundError struct {
	ID        string
	Available []string
}

func (e *GrantNotFoundError) Error() string {
	return fmt.Sprintf("grant %q not found (available: %s)", e.ID, strings.Join(e.Available, ", "))
}

// Service provides lookup over a loaded budget.
type Service struct {
	budget *model.Budget
}

// NewService wraps a budget.
func NewService(b *model.Budget) *Service {
	return &Service{budget: b}
}

// Budget returns the underlying snapshot.
func (s *Service) Budget() *model.Budget {
	return s.budget
}

// Grant looks up a grant by id or display name.
func (s *Service) Grant(name string) (string, model.Grant, error) {
	id := NormalizeID(name)
	g, ok := s.budget.Grants[id]
	if !ok {
		return "", model.Grant{}, &GrantNotFoundError{ID: id, Available: s.budget.GrantIDs()}
	}
	return id, g, nil
}

// Exists reports whether a grant id exists.
func (s *Service) Exists(name string) bool {
	_, ok := s.budget.Grants[NormalizeID(name)]
	return ok
}

// Grants returns every grant id in sorted order.
func (s *Service) Grants() []string {
	return s.budget.GrantIDs()
}
