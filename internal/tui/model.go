// Package tui renders the registration form in the terminal. The model is a
// thin view over form.Form: every key press is forwarded to the form and the
// screen is rebuilt from a snapshot of its state.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablogoliveira/personia-hub/internal/form"
	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"go.uber.org/zap"
)

var stepTitles = []string{"Dados Pessoais", "Endereço", "Contato"}

var fieldLabels = map[string]string{
	models.FieldNome:           "Nome Completo",
	models.FieldDataNascimento: "Data de Nascimento",
	models.FieldNomeMae:        "Nome da Mãe",
	models.FieldRG:             "RG",
	models.FieldCPF:            "CPF",
	models.FieldCEP:            "CEP",
	models.FieldLogradouro:     "Logradouro",
	models.FieldNumero:         "Número",
	models.FieldComplemento:    "Complemento",
	models.FieldBairro:         "Bairro",
	models.FieldCidade:         "Cidade",
	models.FieldEstado:         "Estado",
	models.FieldTelefone:       "Telefone com DDD",
	models.FieldEmail:          "E-mail",
}

var fieldPlaceholders = map[string]string{
	models.FieldNome:           "Digite seu nome completo",
	models.FieldDataNascimento: "AAAA-MM-DD",
	models.FieldNomeMae:        "Digite o nome da mãe",
	models.FieldRG:             "00.000.000-0",
	models.FieldCPF:            "000.000.000-00",
	models.FieldCEP:            "00000-000",
	models.FieldLogradouro:     "Rua, Avenida, etc.",
	models.FieldNumero:         "123",
	models.FieldComplemento:    "Apto, Bloco, etc.",
	models.FieldBairro:         "Digite o bairro",
	models.FieldCidade:         "Digite a cidade",
	models.FieldEstado:         "UF",
	models.FieldTelefone:       "(00) 00000-0000",
	models.FieldEmail:          "exemplo@email.com",
}

// Toast is a notification shown in the status line
type Toast struct {
	Error   bool
	Message string
}

// toastQueue is the form's Notifier. The form calls it from whichever
// goroutine runs the operation, so the model drains it on every sync.
type toastQueue struct {
	mu    sync.Mutex
	items []Toast
}

func (q *toastQueue) NotifySuccess(message string) { q.push(Toast{Message: message}) }
func (q *toastQueue) NotifyError(message string)   { q.push(Toast{Error: true, Message: message}) }

func (q *toastQueue) push(t Toast) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
}

func (q *toastQueue) drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Messages
type (
	formChangedMsg struct{}

	blurDoneMsg struct {
		field string
		err   error
	}

	submitDoneMsg struct {
		person *models.Person
		err    error
	}
)

// Config wires the terminal form to its collaborators
type Config struct {
	Submitter     form.Submitter
	AddressLookup form.AddressLookup
	ResetDelay    time.Duration
	FocusDelay    time.Duration
	Logger        *zap.Logger
}

// Model is the terminal registration form
type Model struct {
	form    *form.Form
	toasts  *toastQueue
	changes chan struct{}
	logger  *zap.Logger

	state   form.State
	fields  []string
	inputs  []textinput.Model
	focused int
	spinner spinner.Model

	// busy is the spinner caption while a lookup or submission runs
	busy   string
	status Toast
	last   *models.Person
	width  int
}

// NewModel creates the model and its form
func NewModel(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	toasts := &toastQueue{}
	changes := make(chan struct{}, 1)
	f := form.New(form.Config{
		Submitter:     cfg.Submitter,
		AddressLookup: cfg.AddressLookup,
		Notifier:      toasts,
		ResetDelay:    cfg.ResetDelay,
		FocusDelay:    cfg.FocusDelay,
		OnChange: func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		},
		Logger: cfg.Logger.Named("form"),
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	m := Model{
		form:    f,
		toasts:  toasts,
		changes: changes,
		logger:  cfg.Logger,
		spinner: sp,
	}
	m.sync()
	return m
}

// Close stops the form's timers
func (m Model) Close() {
	m.form.Close()
}

// Init starts listening for changes the form makes on its own
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange delivers the delayed reset and focus moves to Update
func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		<-changes
		return formChangedMsg{}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case formChangedMsg:
		m.sync()
		return m, m.waitForChange()

	case blurDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.logger.Debug("blur rejected", zap.String("field", msg.field), zap.Error(msg.err))
		}
		m.sync()
		return m, nil

	case submitDoneMsg:
		m.busy = ""
		if msg.err == nil {
			m.last = msg.person
		}
		m.sync()
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	}

	// input is locked while a lookup or submission runs
	if m.busy != "" {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		return m.moveFocus(1)
	case "shift+tab", "up":
		return m.moveFocus(-1)
	case "ctrl+n":
		return m.advance()
	case "ctrl+p":
		if err := m.form.RetreatStep(); err != nil {
			m.logger.Debug("retreat rejected", zap.Error(err))
		}
		m.sync()
		return m, nil
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.state.Step < form.LastStep {
			return m.advance()
		}
		return m.submit()
	}

	return m.edit(msg)
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	if err := m.form.AdvanceStep(); err != nil {
		m.logger.Debug("advance rejected", zap.Error(err))
	}
	m.sync()
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state.Step != form.LastStep || m.state.Success {
		return m, nil
	}
	m.busy = "Enviando..."
	return m, tea.Batch(m.spinner.Tick, m.submitCmd())
}

func (m Model) submitCmd() tea.Cmd {
	f := m.form
	return func() tea.Msg {
		person, err := f.Submit(context.Background())
		return submitDoneMsg{person: person, err: err}
	}
}

// edit forwards the key to the focused input and stores the unmasked value
func (m Model) edit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}

	field := m.fields[m.focused]
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)

	raw := utils.UnmaskValue(field, m.inputs[m.focused].Value())
	if current, _ := m.state.Values.Field(field); raw != current {
		if err := m.form.Edit(field, raw); err != nil {
			m.logger.Debug("edit rejected", zap.String("field", field), zap.Error(err))
		}
	}
	m.sync()
	if utils.HasMask(field) {
		m.inputs[m.focused].CursorEnd()
	}
	return m, cmd
}

// moveFocus blurs the focused field and focuses its neighbour. Leaving a
// complete CEP runs the address lookup in the background.
func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}

	field := m.fields[m.focused]
	next := (m.focused + delta + len(m.inputs)) % len(m.inputs)
	m.setFocus(next)

	if field == models.FieldCEP && len(utils.OnlyDigits(m.state.Values.CEP)) == 8 {
		m.busy = "Buscando endereço..."
		return m, tea.Batch(m.spinner.Tick, m.blurCmd(field))
	}

	if err := m.form.Blur(context.Background(), field); err != nil {
		m.logger.Debug("blur rejected", zap.String("field", field), zap.Error(err))
	}
	m.sync()
	return m, nil
}

func (m Model) blurCmd(field string) tea.Cmd {
	f := m.form
	return func() tea.Msg {
		return blurDoneMsg{field: field, err: f.Blur(context.Background(), field)}
	}
}

func (m *Model) setFocus(i int) {
	if i < 0 || i >= len(m.inputs) {
		return
	}
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[i].Focus()
}

// sync rebuilds the view state from a form snapshot
func (m *Model) sync() {
	prevStep := m.state.Step
	m.state = m.form.Snapshot()
	if m.inputs == nil || m.state.Step != prevStep {
		m.buildInputs()
	}

	for i, field := range m.fields {
		value, _ := m.state.Values.Field(field)
		if masked := utils.ApplyMask(field, value); m.inputs[i].Value() != masked {
			m.inputs[i].SetValue(masked)
		}
	}

	if focus := m.form.TakeFocus(); focus != "" {
		for i, field := range m.fields {
			if field == focus {
				m.setFocus(i)
				break
			}
		}
	}

	for _, t := range m.toasts.drain() {
		m.status = t
	}
}

func (m *Model) buildInputs() {
	m.fields = form.StepFields(m.state.Step)
	m.inputs = make([]textinput.Model, len(m.fields))
	for i, field := range m.fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = fieldPlaceholders[field]
		ti.CharLimit = 120
		ti.Width = 40
		ti.Cursor.SetMode(cursor.CursorStatic)
		m.inputs[i] = ti
	}
	m.focused = 0
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

// View renders the form
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Cadastro de Pessoa"))
	s.WriteString("\n")
	s.WriteString(m.renderSteps())
	s.WriteString("\n\n")

	if m.state.Success {
		s.WriteString(SuccessStyle.Render("Cadastro concluído."))
		if m.last != nil {
			s.WriteString(SubtitleStyle.Render(fmt.Sprintf(" ID: %s", m.last.ID)))
		}
		s.WriteString("\n\n")
	}

	for i, field := range m.fields {
		label := LabelStyle
		if i == m.focused {
			label = FocusedLabelStyle
		}
		s.WriteString(label.Render(fieldLabels[field]))
		s.WriteString("\n")
		s.WriteString(m.inputs[i].View())
		s.WriteString("\n")
		if msg := m.state.VisibleErrors[field]; msg != "" {
			s.WriteString(FieldErrorStyle.Render(msg))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	switch {
	case m.busy != "":
		s.WriteString(m.spinner.View())
		s.WriteString(" ")
		s.WriteString(m.busy)
	case m.status.Message != "" && m.status.Error:
		s.WriteString(ErrorStyle.Render("✗ " + m.status.Message))
	case m.status.Message != "":
		s.WriteString(SuccessStyle.Render("✓ " + m.status.Message))
	}
	s.WriteString("\n")

	s.WriteString(HelpStyle.Render("tab/shift+tab: campo • ctrl+n/ctrl+p: etapa • ctrl+s: enviar • esc: sair"))
	return s.String()
}

func (m Model) renderSteps() string {
	steps := make([]string, len(stepTitles))
	for i, title := range stepTitles {
		label := fmt.Sprintf("%d %s", i+1, title)
		switch {
		case i == m.state.Step:
			steps[i] = ActiveStepStyle.Render(label)
		case i < m.state.Step:
			steps[i] = DoneStepStyle.Render(label)
		default:
			steps[i] = StepStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, steps...)
}
