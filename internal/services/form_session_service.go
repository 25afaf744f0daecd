package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/pablogoliveira/personia-hub/internal/form"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/observability"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"github.com/pablogoliveira/personia-hub/internal/validation"
	"go.uber.org/zap"
)

// ErrFormSessionNotFound is returned for unknown or expired sessions
var ErrFormSessionNotFound = errors.New("form session not found")

// Notification kinds
const (
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// Notification is one toast raised by a form
type Notification struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// queueNotifier collects notifications until the next response drains them
type queueNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (q *queueNotifier) push(kind, message string) {
	q.mu.Lock()
	q.items = append(q.items, Notification{Kind: kind, Message: message})
	q.mu.Unlock()
}

func (q *queueNotifier) NotifySuccess(message string) { q.push(NotificationSuccess, message) }
func (q *queueNotifier) NotifyError(message string)   { q.push(NotificationError, message) }

func (q *queueNotifier) drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// FormSession is a server-side registration form
type FormSession struct {
	ID        string
	CreatedAt time.Time

	form     *form.Form
	notifier *queueNotifier

	mu       sync.Mutex
	lastSeen time.Time
}

// Form returns the session's form
func (s *FormSession) Form() *form.Form {
	return s.form
}

// DrainNotifications returns and clears the pending notifications
func (s *FormSession) DrainNotifications() []Notification {
	return s.notifier.drain()
}

func (s *FormSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *FormSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// FormSessionConfig holds session timing
type FormSessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	ResetDelay    time.Duration
	FocusDelay    time.Duration
}

// DefaultFormSessionConfig returns the defaults used when config leaves them unset
func DefaultFormSessionConfig() FormSessionConfig {
	return FormSessionConfig{
		TTL:           30 * time.Minute,
		SweepInterval: time.Minute,
		ResetDelay:    form.DefaultResetDelay,
		FocusDelay:    form.DefaultFocusDelay,
	}
}

// meteredSubmitter counts submissions by outcome
type meteredSubmitter struct {
	next form.Submitter
}

func (m meteredSubmitter) SubmitPerson(ctx context.Context, input models.PersonInput) (*models.Person, error) {
	person, err := m.next.SubmitPerson(ctx, input)
	observability.FormSubmissions.WithLabelValues(submissionStatus(err)).Inc()
	return person, err
}

func submissionStatus(err error) string {
	if err == nil {
		return "success"
	}
	if models.ConflictField(err) != "" {
		return "conflict"
	}
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusConflict:
			return "conflict"
		case http.StatusBadRequest:
			return "invalid"
		}
	}
	return "error"
}

// FormSessionService keeps form sessions in memory and expires idle ones
type FormSessionService struct {
	submitter form.Submitter
	lookup    form.AddressLookup
	registry  *validation.Registry
	cfg       FormSessionConfig
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*FormSession

	stopOnce sync.Once
	stop     chan struct{}
}

// FormSessionOption configures a FormSessionService
type FormSessionOption func(*FormSessionService)

// WithFormRegistry sets the validation registry used by new forms
func WithFormRegistry(registry *validation.Registry) FormSessionOption {
	return func(s *FormSessionService) { s.registry = registry }
}

// WithFormSessionClock overrides the clock used for expiry
func WithFormSessionClock(now func() time.Time) FormSessionOption {
	return func(s *FormSessionService) { s.now = now }
}

// NewFormSessionService creates the session registry. lookup may be nil.
func NewFormSessionService(submitter form.Submitter, lookup form.AddressLookup, cfg FormSessionConfig, logger *zap.Logger, opts ...FormSessionOption) *FormSessionService {
	defaults := DefaultFormSessionConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = defaults.ResetDelay
	}
	if cfg.FocusDelay <= 0 {
		cfg.FocusDelay = defaults.FocusDelay
	}

	s := &FormSessionService{
		submitter: meteredSubmitter{next: submitter},
		lookup:    lookup,
		registry:  validation.Default(),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*FormSession),
		stop:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new empty form session
func (s *FormSessionService) Create() *FormSession {
	now := s.now()
	notifier := &queueNotifier{}
	cfg := form.Config{
		Submitter:     s.submitter,
		AddressLookup: s.lookup,
		Notifier:      notifier,
		Registry:      s.registry,
		ResetDelay:    s.cfg.ResetDelay,
		FocusDelay:    s.cfg.FocusDelay,
		Logger:        s.logger.Named("form"),
	}

	session := &FormSession{
		ID:        utils.GenerateUUID(),
		CreatedAt: now,
		form:      form.New(cfg),
		notifier:  notifier,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	count := len(s.sessions)
	s.mu.Unlock()

	observability.ActiveFormSessions.Set(float64(count))
	s.logger.Debug("form session created", zap.String("session_id", session.ID))
	return session
}

// Get returns a live session and refreshes its idle timer
func (s *FormSessionService) Get(id string) (*FormSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrFormSessionNotFound
	}
	session.touch(s.now())
	return session, nil
}

// Delete closes and removes a session
func (s *FormSessionService) Delete(id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrFormSessionNotFound
	}
	session.form.Close()
	observability.ActiveFormSessions.Set(float64(count))
	return nil
}

// Len returns the number of live sessions
func (s *FormSessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed
func (s *FormSessionService) Sweep() int {
	cutoff := s.now().Add(-s.cfg.TTL)

	var expired []*FormSession
	s.mu.Lock()
	for id, session := range s.sessions {
		if session.idleSince().Before(cutoff) {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	for _, session := range expired {
		session.form.Close()
	}
	if len(expired) > 0 {
		observability.ActiveFormSessions.Set(float64(count))
		s.logger.Info("expired form sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Start runs the sweeper until Stop is called
func (s *FormSessionService) Start() {
	go func() {
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the sweeper and closes every session
func (s *FormSessionService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*FormSession)
	s.mu.Unlock()

	for _, session := range sessions {
		session.form.Close()
	}
	observability.ActiveFormSessions.Set(0)
}
