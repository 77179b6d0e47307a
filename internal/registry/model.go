// Package registry holds the thin owner/pet/practitioner records the
// scheduling engine books against. Full CRM workflows live elsewhere; this
// covers creation with sequence codes and the lookups the engine needs.
package registry

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOwnerNotFound        = errors.New("owner not found")
	ErrPetNotFound          = errors.New("pet not found")
	ErrPractitionerNotFound = errors.New("practitioner not found")
)

type Practitioner struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Owner struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Pet struct {
	ID        uuid.UUID
	Code      string
	OwnerID   uuid.UUID
	Name      string
	Species   string
	Breed     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
