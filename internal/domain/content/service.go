package content

import (
	"context"
)

// Record is a stored row keyed by JSON field name, always carrying "id" and
// "createdAt" alongside the descriptor's fields.
type Record map[string]any

// Repository is the persistence surface for one collection. Implementations
// assign ids (unique, monotonically increasing) and order List by id
// descending.
type Repository interface {
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, values map[string]any) (Record, error)
	Update(ctx context.Context, id int64, values map[string]any) (Record, error)
	Delete(ctx context.Context, id int64) error
}

// Service applies normalization and required-field rules in front of a
// Repository. One Service is instantiated per descriptor; the behavior is
// identical across kinds.
type Service struct {
	desc Descriptor
	repo Repository
}

func NewService(desc Descriptor, repo Repository) *Service {
	return &Service{desc: desc, repo: repo}
}

func (s *Service) Descriptor() Descriptor {
	return s.desc
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	if id <= 0 {
		return nil, ValidationError{Message: "id must be a positive integer"}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, payload map[string]any) (Record, error) {
	values, err := Normalize(s.desc, payload)
	if err != nil {
		return nil, err
	}

	if missing := missingRequired(s.desc, values); len(missing) > 0 {
		return nil, ValidationError{Fields: missing}
	}

	return s.repo.Create(ctx, values)
}

// Update merges the supplied fields onto the existing record. Fields absent
// from the payload keep their stored values.
func (s *Service) Update(ctx context.Context, id int64, payload map[string]any) (Record, error) {
	if id <= 0 {
		return nil, ValidationError{Message: "id must be a positive integer"}
	}

	values, err := Normalize(s.desc, payload)
	if err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, values)
}

// Delete removes the record. Deleting an absent id fails with ErrNotFound
// rather than succeeding silently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ValidationError{Message: "id must be a positive integer"}
	}
	return s.repo.Delete(ctx, id)
}

func missingRequired(desc Descriptor, values map[string]any) []string {
	var missing []string
	for _, field := range desc.Fields {
		if !field.Required {
			continue
		}
		value, ok := values[field.Name]
		if !ok {
			missing = append(missing, field.Name)
			continue
		}
		if text, isString := value.(string); isString && text == "" {
			missing = append(missing, field.Name)
		}
	}
	return missing
}
