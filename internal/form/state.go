package form

import (
	"github.com/pablogoliveira/personia-hub/internal/models"
)

// Phase is the externally visible state of a form
type Phase int

const (
	PhasePersonal Phase = iota
	PhaseAddress
	PhaseContact
	PhaseSubmitting
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhasePersonal:
		return "personal"
	case PhaseAddress:
		return "address"
	case PhaseContact:
		return "contact"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase name in JSON payloads
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// stepGates are the fields that must be filled and valid to leave a step
var stepGates = [][]string{
	{models.FieldNome, models.FieldDataNascimento, models.FieldNomeMae, models.FieldRG, models.FieldCPF},
	{models.FieldCEP, models.FieldLogradouro, models.FieldNumero, models.FieldBairro, models.FieldCidade, models.FieldEstado},
	{models.FieldTelefone, models.FieldEmail},
}

// stepInputs are the fields shown on each step
var stepInputs = [][]string{
	stepGates[0],
	{models.FieldCEP, models.FieldLogradouro, models.FieldNumero, models.FieldComplemento, models.FieldBairro, models.FieldCidade, models.FieldEstado},
	stepGates[2],
}

// StepFields returns the fields shown on step
func StepFields(step int) []string {
	if step < 0 || step >= len(stepInputs) {
		return nil
	}
	return append([]string(nil), stepInputs[step]...)
}

// LastStep is the index of the contact step
const LastStep = 2

// State is a point-in-time copy of a form
type State struct {
	Values         models.PersonInput `json:"values"`
	Touched        map[string]bool    `json:"touched"`
	Errors         models.FieldErrors `json:"errors"`
	VisibleErrors  models.FieldErrors `json:"visibleErrors"`
	Step           int                `json:"step"`
	Phase          Phase              `json:"phase"`
	Valid          bool               `json:"valid"`
	Submitting     bool               `json:"submitting"`
	Success        bool               `json:"success"`
	LoadingAddress bool               `json:"loadingAddress"`
	Focus          string             `json:"focus,omitempty"`
}
