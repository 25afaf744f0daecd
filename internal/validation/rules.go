package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pablogoliveira/personia-hub/internal/utils"
)

// CheckKind tags the variant of a Check
type CheckKind int

const (
	// KindMinLength requires at least N runes after trimming
	KindMinLength CheckKind = iota
	// KindExactLength requires exactly N runes in the untrimmed value
	KindExactLength
	// KindPattern requires Pattern to match the trimmed value
	KindPattern
	// KindRawPattern requires Pattern to match the value as typed
	KindRawPattern
	// KindDigitCount requires between N and Max digits after stripping
	KindDigitCount
	// KindCPF requires a valid CPF checksum
	KindCPF
	// KindPastDate requires a parseable date that is not after today
	KindPastDate
	// KindMobilePrefix requires 11-digit numbers to carry a 9 after the area code
	KindMobilePrefix
)

// Check is one validation step of a Rule. Only the fields relevant to Kind
// are read.
type Check struct {
	Kind    CheckKind
	Message string

	N       int
	Max     int
	Pattern *regexp.Regexp

	// InvalidMessage is reported by KindPastDate when the value does not parse
	InvalidMessage string
}

// MinLength builds a KindMinLength check
func MinLength(n int, msg string) Check {
	return Check{Kind: KindMinLength, N: n, Message: msg}
}

// ExactLength builds a KindExactLength check
func ExactLength(n int, msg string) Check {
	return Check{Kind: KindExactLength, N: n, Message: msg}
}

// Matches builds a KindPattern check
func Matches(re *regexp.Regexp, msg string) Check {
	return Check{Kind: KindPattern, Pattern: re, Message: msg}
}

// MatchesRaw builds a KindRawPattern check
func MatchesRaw(re *regexp.Regexp, msg string) Check {
	return Check{Kind: KindRawPattern, Pattern: re, Message: msg}
}

// DigitCount builds a KindDigitCount check
func DigitCount(min, max int, msg string) Check {
	return Check{Kind: KindDigitCount, N: min, Max: max, Message: msg}
}

// CPFChecksum builds a KindCPF check
func CPFChecksum(msg string) Check {
	return Check{Kind: KindCPF, Message: msg}
}

// PastDate builds a KindPastDate check
func PastDate(futureMsg, invalidMsg string) Check {
	return Check{Kind: KindPastDate, Message: futureMsg, InvalidMessage: invalidMsg}
}

// MobilePrefix builds a KindMobilePrefix check
func MobilePrefix(msg string) Check {
	return Check{Kind: KindMobilePrefix, Message: msg}
}

// Rule validates one field. A blank value fails with RequiredMessage unless
// the rule is Optional; Checks run in order and the first failure wins.
type Rule struct {
	Field           string
	RequiredMessage string
	Optional        bool
	Checks          []Check
}

// dateLayouts are the accepted birth date formats
var dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

// ParseDate parses a birth date in any accepted layout
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (c Check) run(value string, now time.Time) string {
	switch c.Kind {
	case KindMinLength:
		if utf8.RuneCountInString(strings.TrimSpace(value)) < c.N {
			return c.Message
		}
	case KindExactLength:
		if utf8.RuneCountInString(value) != c.N {
			return c.Message
		}
	case KindPattern:
		if !c.Pattern.MatchString(strings.TrimSpace(value)) {
			return c.Message
		}
	case KindRawPattern:
		if !c.Pattern.MatchString(value) {
			return c.Message
		}
	case KindDigitCount:
		if n := len(utils.OnlyDigits(value)); n < c.N || n > c.Max {
			return c.Message
		}
	case KindCPF:
		if !utils.ValidateCPF(value) {
			return c.Message
		}
	case KindPastDate:
		date, ok := ParseDate(value)
		if !ok {
			return c.InvalidMessage
		}
		y, m, d := date.Date()
		ty, tm, td := now.Date()
		if time.Date(y, m, d, 0, 0, 0, 0, time.UTC).After(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)) {
			return c.Message
		}
	case KindMobilePrefix:
		if digits := utils.OnlyDigits(value); len(digits) == 11 && digits[2] != '9' {
			return c.Message
		}
	}
	return ""
}

var (
	rgPattern    = regexp.MustCompile(`^\d{1,3}(\.?\d{3}){1,2}-?[\dXx]?$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// PersonRules returns the rules for every person field
func PersonRules() []Rule {
	return []Rule{
		{Field: "nome", RequiredMessage: MsgNomeRequired, Checks: []Check{
			MinLength(3, MsgNomeTooShort),
		}},
		{Field: "dataNascimento", RequiredMessage: MsgDataNascimentoRequired, Checks: []Check{
			PastDate(MsgDataNascimentoFuture, MsgDataNascimentoInvalid),
		}},
		{Field: "nomeMae", RequiredMessage: MsgNomeMaeRequired, Checks: []Check{
			MinLength(3, MsgNomeMaeTooShort),
		}},
		{Field: "rg", RequiredMessage: MsgRGRequired, Checks: []Check{
			Matches(rgPattern, MsgRGInvalid),
		}},
		{Field: "cpf", RequiredMessage: MsgCPFRequired, Checks: []Check{
			DigitCount(11, 11, MsgCPFDigitCount),
			CPFChecksum(MsgCPFInvalid),
		}},
		{Field: "cep", RequiredMessage: MsgCEPRequired, Checks: []Check{
			DigitCount(8, 8, MsgCEPInvalid),
		}},
		{Field: "logradouro", RequiredMessage: MsgLogradouroRequired},
		{Field: "numero", RequiredMessage: MsgNumeroRequired},
		{Field: "complemento", Optional: true},
		{Field: "bairro", RequiredMessage: MsgBairroRequired},
		{Field: "cidade", RequiredMessage: MsgCidadeRequired},
		{Field: "estado", RequiredMessage: MsgEstadoRequired, Checks: []Check{
			ExactLength(2, MsgEstadoLength),
		}},
		{Field: "telefone", RequiredMessage: MsgTelefoneRequired, Checks: []Check{
			DigitCount(10, 11, MsgTelefoneDigitCount),
			MobilePrefix(MsgTelefoneMobilePrefix),
		}},
		{Field: "email", RequiredMessage: MsgEmailRequired, Checks: []Check{
			MatchesRaw(emailPattern, MsgEmailInvalid),
		}},
	}
}
