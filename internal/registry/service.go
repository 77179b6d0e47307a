package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vetdesk/clinic-scheduling/internal/sequence"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	CreatePractitioner(ctx context.Context, p Practitioner) (*Practitioner, error)
	PractitionerByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	CreateOwner(ctx context.Context, o Owner) (*Owner, error)
	OwnerByID(ctx context.Context, id uuid.UUID) (*Owner, error)
	CreatePet(ctx context.Context, p Pet) (*Pet, error)
	PetByID(ctx context.Context, id uuid.UUID) (*Pet, error)
}

// CodeSource issues the human-readable code assigned at creation time.
type CodeSource interface {
	Next(ctx context.Context, scope sequence.Scope) (string, error)
}

type Service struct {
	repo  Repository
	codes CodeSource
}

func NewService(repo Repository, codes CodeSource) *Service {
	return &Service{repo: repo, codes: codes}
}

func (s *Service) CreatePractitioner(ctx context.Context, name string, specialty *string) (*Practitioner, error) {
	if name == "" {
		return nil, errors.New("practitioner name is required")
	}
	return s.repo.CreatePractitioner(ctx, Practitioner{Name: name, Specialty: specialty})
}

// CreateOwner assigns the owner code before insert. The code draw is its own
// short operation; if the insert fails the number is simply skipped.
func (s *Service) CreateOwner(ctx context.Context, name string, email, phone *string) (*Owner, error) {
	if name == "" {
		return nil, errors.New("owner name is required")
	}

	code, err := s.codes.Next(ctx, sequence.ScopeOwner)
	if err != nil {
		return nil, fmt.Errorf("assign owner code: %w", err)
	}

	return s.repo.CreateOwner(ctx, Owner{Code: code, Name: name, Email: email, Phone: phone})
}

func (s *Service) CreatePet(ctx context.Context, ownerID uuid.UUID, name, species string, breed *string) (*Pet, error) {
	if name == "" || species == "" {
		return nil, errors.New("pet name and species are required")
	}
	if _, err := s.repo.OwnerByID(ctx, ownerID); err != nil {
		return nil, err
	}

	code, err := s.codes.Next(ctx, sequence.ScopePet)
	if err != nil {
		return nil, fmt.Errorf("assign pet code: %w", err)
	}

	return s.repo.CreatePet(ctx, Pet{Code: code, OwnerID: ownerID, Name: name, Species: species, Breed: breed})
}
