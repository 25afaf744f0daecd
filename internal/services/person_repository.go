package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/pablogoliveira/personia-hub/internal/models"
)

// ErrNotFound is returned by repositories when no record matches
var ErrNotFound = errors.New("record not found")

// PersonRepository persists person records. Implementations enforce cpf and
// email uniqueness and report violations as models.ErrCPFAlreadyExists or
// models.ErrEmailAlreadyExists.
type PersonRepository interface {
	Create(ctx context.Context, person *models.Person) error
	FindByID(ctx context.Context, id string) (*models.Person, error)
	FindByCPF(ctx context.Context, cpf string) (*models.Person, error)
	FindByEmail(ctx context.Context, email string) (*models.Person, error)
	List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int64, error)
	Update(ctx context.Context, person *models.Person) error
	Delete(ctx context.Context, id string) error
}

// MemoryPersonRepository keeps persons in a map. Used for local development
// and tests.
type MemoryPersonRepository struct {
	mu      sync.RWMutex
	persons map[string]models.Person
}

// NewMemoryPersonRepository creates an empty in-memory repository
func NewMemoryPersonRepository() *MemoryPersonRepository {
	return &MemoryPersonRepository{persons: make(map[string]models.Person)}
}

func (r *MemoryPersonRepository) checkUniqueLocked(p *models.Person) error {
	for id, existing := range r.persons {
		if id == p.ID {
			continue
		}
		if existing.CPF == p.CPF {
			return models.ErrCPFAlreadyExists
		}
		if strings.EqualFold(existing.Email, p.Email) {
			return models.ErrEmailAlreadyExists
		}
	}
	return nil
}

// Create stores a new person
func (r *MemoryPersonRepository) Create(ctx context.Context, person *models.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUniqueLocked(person); err != nil {
		return err
	}
	r.persons[person.ID] = *person
	return nil
}

// FindByID returns the person with id
func (r *MemoryPersonRepository) FindByID(ctx context.Context, id string) (*models.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.persons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryPersonRepository) findBy(match func(models.Person) bool) (*models.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.persons {
		if match(p) {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// FindByCPF returns the person with cpf
func (r *MemoryPersonRepository) FindByCPF(ctx context.Context, cpf string) (*models.Person, error) {
	return r.findBy(func(p models.Person) bool { return p.CPF == cpf })
}

// FindByEmail returns the person with email, compared case-insensitively
func (r *MemoryPersonRepository) FindByEmail(ctx context.Context, email string) (*models.Person, error) {
	return r.findBy(func(p models.Person) bool { return strings.EqualFold(p.Email, email) })
}

// List returns one page of persons sorted by name, optionally filtered by a
// case-insensitive search on nome, cpf and email
func (r *MemoryPersonRepository) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Person, 0, len(r.persons))
	for _, p := range r.persons {
		if search == "" ||
			strings.Contains(strings.ToLower(p.Nome), search) ||
			strings.Contains(p.CPF, search) ||
			strings.Contains(strings.ToLower(p.Email), search) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Nome == matched[j].Nome {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Nome < matched[j].Nome
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start >= len(matched) {
		return []models.Person{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

// Update replaces a stored person
func (r *MemoryPersonRepository) Update(ctx context.Context, person *models.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.persons[person.ID]; !ok {
		return ErrNotFound
	}
	if err := r.checkUniqueLocked(person); err != nil {
		return err
	}
	r.persons[person.ID] = *person
	return nil
}

// Delete removes a person
func (r *MemoryPersonRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.persons[id]; !ok {
		return ErrNotFound
	}
	delete(r.persons, id)
	return nil
}
