// Package form implements the three-step person registration form: per-field
// validation on edit, touched-gated error display, step gates, the CEP
// address autofill and submission with a delayed reset.
package form

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/logging"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"github.com/pablogoliveira/personia-hub/internal/validation"
	"go.uber.org/zap"
)

// Notifications
const (
	MsgStepIncomplete = "Por favor, preencha todos os campos obrigatórios corretamente."
	MsgCEPNotFound    = "CEP não encontrado. Por favor, verifique o CEP informado."
	MsgSubmitSuccess  = "Cadastro realizado com sucesso!"
	MsgSubmitFailure  = "Erro ao realizar cadastro. Tente novamente."
)

// Default delays
const (
	DefaultResetDelay = 3 * time.Second
	DefaultFocusDelay = 100 * time.Millisecond
)

var (
	ErrUnknownField      = errors.New("form: unknown field")
	ErrSubmitting        = errors.New("form: submission in progress")
	ErrInvalidTransition = errors.New("form: invalid transition")
	ErrStepIncomplete    = errors.New("form: step incomplete")
	ErrFormInvalid       = errors.New("form: invalid values")
	ErrClosed            = errors.New("form: closed")
)

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

func timeAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config wires a Form to its collaborators. Submitter is required; a nil
// AddressLookup disables the CEP autofill.
type Config struct {
	Submitter     Submitter
	AddressLookup AddressLookup
	Notifier      Notifier
	Registry      *validation.Registry

	ResetDelay time.Duration
	FocusDelay time.Duration
	AfterFunc  AfterFunc

	// OnChange is called after state changes that happen outside a method
	// call: the delayed reset and focus moves
	OnChange func()

	Logger *zap.Logger
}

// Form is one registration form instance. It is safe for concurrent use;
// collaborator calls run without holding the lock.
type Form struct {
	cfg Config

	mu             sync.Mutex
	values         models.PersonInput
	touched        map[string]bool
	errors         models.FieldErrors
	valid          bool
	step           int
	submitting     bool
	success        bool
	loadingAddress bool
	focus          string
	closed         bool

	resetTimer Timer
	focusTimer Timer
}

type nopNotifier struct{}

func (nopNotifier) NotifySuccess(string) {}
func (nopNotifier) NotifyError(string)   {}

// New returns an empty form at the personal step
func New(cfg Config) *Form {
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	if cfg.Registry == nil {
		cfg.Registry = validation.Default()
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = DefaultResetDelay
	}
	if cfg.FocusDelay <= 0 {
		cfg.FocusDelay = DefaultFocusDelay
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = timeAfterFunc
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Named("form")
	}

	f := &Form{cfg: cfg}
	f.clearLocked()
	return f
}

func (f *Form) clearLocked() {
	f.values = models.PersonInput{}
	f.touched = make(map[string]bool)
	f.errors = models.FieldErrors{}
	f.valid = false
	f.step = 0
	f.success = false
	f.focus = ""
}

// setValueLocked stores value and re-validates field alone
func (f *Form) setValueLocked(field, value string) {
	f.values.SetField(field, value)
	if msg := f.cfg.Registry.ValidateField(field, value); msg != "" {
		f.errors[field] = msg
	} else {
		delete(f.errors, field)
	}
	f.valid = len(f.errors) == 0
}

func (f *Form) checkEditableLocked(field string) error {
	if f.closed {
		return ErrClosed
	}
	if !models.IsPersonField(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if f.submitting {
		return ErrSubmitting
	}
	return nil
}

// Edit sets field to value and re-validates that field
func (f *Form) Edit(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkEditableLocked(field); err != nil {
		return err
	}
	f.setValueLocked(field, value)
	return nil
}

// Blur marks field as touched. Blurring the CEP with exactly 8 digits looks
// the address up and fills logradouro, bairro, cidade and estado; the call
// blocks until the lookup finishes and LoadingAddress is set meanwhile.
// Like Edit, Blur is refused while a submission is in flight.
func (f *Form) Blur(ctx context.Context, field string) error {
	f.mu.Lock()
	if err := f.checkEditableLocked(field); err != nil {
		f.mu.Unlock()
		return err
	}
	f.touched[field] = true

	cep := utils.OnlyDigits(f.values.CEP)
	if field != models.FieldCEP || len(cep) != 8 || f.cfg.AddressLookup == nil || f.loadingAddress {
		f.mu.Unlock()
		return nil
	}
	f.loadingAddress = true
	f.mu.Unlock()

	address, err := f.cfg.AddressLookup.Lookup(ctx, cep)

	f.mu.Lock()
	f.loadingAddress = false
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if err != nil || address == nil {
		f.mu.Unlock()
		if err != nil {
			f.cfg.Logger.Warn("address lookup failed", zap.String("cep", cep), zap.Error(err))
		}
		f.cfg.Notifier.NotifyError(MsgCEPNotFound)
		return nil
	}

	// a submission started during the lookup owns the values now
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitting
	}
	if f.success {
		f.mu.Unlock()
		return nil
	}

	// otherwise a stale result is applied to whatever the form holds now
	f.setValueLocked(models.FieldLogradouro, address.Logradouro)
	f.setValueLocked(models.FieldBairro, address.Bairro)
	f.setValueLocked(models.FieldCidade, address.Cidade)
	f.setValueLocked(models.FieldEstado, address.Estado)

	if f.focusTimer != nil {
		f.focusTimer.Stop()
	}
	f.focusTimer = f.cfg.AfterFunc(f.cfg.FocusDelay, f.moveFocusToNumero)
	f.mu.Unlock()
	return nil
}

func (f *Form) moveFocusToNumero() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.focus = models.FieldNumero
	f.focusTimer = nil
	f.mu.Unlock()
	f.changed()
}

func (f *Form) changed() {
	if f.cfg.OnChange != nil {
		f.cfg.OnChange()
	}
}

// TakeFocus returns and clears the pending focus request
func (f *Form) TakeFocus() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	focus := f.focus
	f.focus = ""
	return focus
}

// AdvanceStep moves to the next step when every gated field of the current
// step is filled and valid. Otherwise the empty gated fields are touched so
// their required errors show, and ErrStepIncomplete is returned.
func (f *Form) AdvanceStep() error {
	f.mu.Lock()
	if err := f.checkTransitionLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.step >= LastStep {
		f.mu.Unlock()
		return ErrInvalidTransition
	}

	gate := stepGates[f.step]
	incomplete := false
	for _, field := range gate {
		value, _ := f.values.Field(field)
		if value == "" || f.errors[field] != "" {
			incomplete = true
			break
		}
	}
	if !incomplete {
		f.step++
		f.mu.Unlock()
		return nil
	}

	for _, field := range gate {
		if value, _ := f.values.Field(field); value == "" {
			f.touched[field] = true
			f.setValueLocked(field, "")
		}
	}
	f.mu.Unlock()

	f.cfg.Notifier.NotifyError(MsgStepIncomplete)
	return ErrStepIncomplete
}

// RetreatStep moves back one step without validating
func (f *Form) RetreatStep() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkTransitionLocked(); err != nil {
		return err
	}
	if f.step == 0 {
		return ErrInvalidTransition
	}
	f.step--
	return nil
}

func (f *Form) checkTransitionLocked() error {
	if f.closed {
		return ErrClosed
	}
	if f.submitting {
		return ErrSubmitting
	}
	if f.success {
		return ErrInvalidTransition
	}
	return nil
}

// Submit validates every field and, when all are valid, hands the values to
// the Submitter. It is only allowed on the contact step. On success the form
// schedules its own reset after ResetDelay.
func (f *Form) Submit(ctx context.Context) (*models.Person, error) {
	f.mu.Lock()
	if err := f.checkTransitionLocked(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.step != LastStep {
		f.mu.Unlock()
		return nil, ErrInvalidTransition
	}

	f.errors = f.cfg.Registry.ValidatePerson(f.values)
	f.valid = len(f.errors) == 0
	for _, field := range models.FieldNames() {
		f.touched[field] = true
	}
	if !f.valid {
		f.mu.Unlock()
		return nil, ErrFormInvalid
	}

	f.submitting = true
	input := f.values
	f.mu.Unlock()

	person, err := f.cfg.Submitter.SubmitPerson(ctx, input)

	f.mu.Lock()
	f.submitting = false
	if f.closed {
		f.mu.Unlock()
		return person, err
	}
	if err != nil {
		msg := f.applySubmitErrorLocked(err)
		f.mu.Unlock()
		f.cfg.Logger.Warn("form submission failed", zap.Error(err))
		f.cfg.Notifier.NotifyError(msg)
		return nil, fmt.Errorf("submit person: %w", err)
	}

	f.success = true
	if f.resetTimer != nil {
		f.resetTimer.Stop()
	}
	f.resetTimer = f.cfg.AfterFunc(f.cfg.ResetDelay, f.autoReset)
	f.mu.Unlock()

	f.cfg.Notifier.NotifySuccess(MsgSubmitSuccess)
	return person, nil
}

// applySubmitErrorLocked maps server-side failures onto field errors and
// returns the notification to show
func (f *Form) applySubmitErrorLocked(err error) string {
	if field := models.ConflictField(err); field != "" {
		f.setFieldErrorLocked(field, err.Error())
		return err.Error()
	}

	var apiErr *models.APIError
	if !errors.As(err, &apiErr) {
		return MsgSubmitFailure
	}

	switch {
	case apiErr.Status == http.StatusConflict && models.IsPersonField(apiErr.Field):
		f.setFieldErrorLocked(apiErr.Field, apiErr.Message)
		return apiErr.Message
	case apiErr.Status == http.StatusBadRequest && len(apiErr.Details) > 0:
		mapped := false
		for _, d := range apiErr.Details {
			if models.IsPersonField(d.Field) {
				f.setFieldErrorLocked(d.Field, d.Message)
				mapped = true
			}
		}
		if mapped {
			return MsgStepIncomplete
		}
	}
	return MsgSubmitFailure
}

func (f *Form) setFieldErrorLocked(field, msg string) {
	f.errors[field] = msg
	f.touched[field] = true
	f.valid = false
}

func (f *Form) autoReset() {
	f.mu.Lock()
	if f.closed || !f.success {
		f.mu.Unlock()
		return
	}
	f.resetTimer = nil
	f.clearLocked()
	f.mu.Unlock()
	f.changed()
}

// Reset returns the form to its initial empty state
func (f *Form) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.submitting {
		return ErrSubmitting
	}
	f.stopTimersLocked()
	f.clearLocked()
	return nil
}

func (f *Form) stopTimersLocked() {
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
	if f.focusTimer != nil {
		f.focusTimer.Stop()
		f.focusTimer = nil
	}
}

// Close cancels pending timers. A closed form rejects every operation.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimersLocked()
	f.closed = true
}

// Phase returns the current phase
func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phaseLocked()
}

func (f *Form) phaseLocked() Phase {
	switch {
	case f.submitting:
		return PhaseSubmitting
	case f.success:
		return PhaseSuccess
	default:
		return Phase(f.step)
	}
}

// Snapshot returns a copy of the current state. VisibleErrors holds only the
// errors of touched fields.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	touched := make(map[string]bool, len(f.touched))
	for k, v := range f.touched {
		touched[k] = v
	}
	errs := make(models.FieldErrors, len(f.errors))
	visible := models.FieldErrors{}
	for k, v := range f.errors {
		errs[k] = v
		if f.touched[k] {
			visible[k] = v
		}
	}

	return State{
		Values:         f.values,
		Touched:        touched,
		Errors:         errs,
		VisibleErrors:  visible,
		Step:           f.step,
		Phase:          f.phaseLocked(),
		Valid:          f.valid,
		Submitting:     f.submitting,
		Success:        f.success,
		LoadingAddress: f.loadingAddress,
		Focus:          f.focus,
	}
}
