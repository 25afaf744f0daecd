package form

//go:generate mockgen -source=collaborators.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/pablogoliveira/personia-hub/internal/models"
)

// Submitter persists a completed form. Conflicts are reported as an
// *models.APIError with status 409 and the offending field, or as one of the
// models uniqueness sentinels.
type Submitter interface {
	SubmitPerson(ctx context.Context, input models.PersonInput) (*models.Person, error)
}

// AddressLookup resolves an 8-digit CEP. It returns (nil, nil) when the CEP
// has no address.
type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (*models.AddressLookupResult, error)
}

// Notifier receives user-facing notifications
type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}
