package utils

import "strings"

// Maximum digit counts kept by each mask
const (
	cpfDigits   = 11
	phoneDigits = 11
	cepDigits   = 8
	rgDigits    = 9
)

// OnlyDigits drops every character that is not an ASCII digit
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// FormatCPF renders up to 11 digits as 000.000.000-00, formatting partial
// input progressively
func FormatCPF(value string) string {
	d := truncate(OnlyDigits(value), cpfDigits)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

// FormatPhone renders up to 11 digits as (00) 0000-0000 or (00) 00000-0000
func FormatPhone(value string) string {
	d := truncate(OnlyDigits(value), phoneDigits)
	switch {
	case len(d) == 0:
		return ""
	case len(d) < 2:
		return "(" + d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

// FormatCEP renders up to 8 digits as 00000-000
func FormatCEP(value string) string {
	d := truncate(OnlyDigits(value), cepDigits)
	if len(d) <= 5 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

// FormatRG renders up to 9 digits as 00.000.000-0
func FormatRG(value string) string {
	d := truncate(OnlyDigits(value), rgDigits)
	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 5:
		return d[:2] + "." + d[2:]
	case len(d) <= 8:
		return d[:2] + "." + d[2:5] + "." + d[5:]
	default:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "-" + d[8:]
	}
}

var maskers = map[string]func(string) string{
	"cpf":      FormatCPF,
	"telefone": FormatPhone,
	"phone":    FormatPhone,
	"cep":      FormatCEP,
	"rg":       FormatRG,
}

// HasMask reports whether field has a display mask
func HasMask(field string) bool {
	_, ok := maskers[field]
	return ok
}

// ApplyMask formats value for display according to field. Fields without a
// mask are returned unchanged.
func ApplyMask(field, value string) string {
	if mask, ok := maskers[field]; ok {
		return mask(value)
	}
	return value
}

// UnmaskValue strips display formatting from masked fields so only the raw
// digits are kept as the field value
func UnmaskValue(field, value string) string {
	if HasMask(field) {
		return OnlyDigits(value)
	}
	return value
}
