package observability

import (
	"strings"
	"unicode"
)

// sensitiveFields are person attributes never written to logs in clear text
var sensitiveFields = map[string]bool{
	"cpf":          true,
	"rg":           true,
	"nomeMae":      true,
	"nome_mae":     true,
	"telefone":     true,
	"telefoneE164": true,
	"email":        true,
}

// MaskCPF masks a CPF for logging, keeping only the first three and the
// middle block of digits. Formatting characters in the input are ignored.
func MaskCPF(cpf string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cpf)
	if len(digits) != 11 {
		return "***.***.***-**"
	}
	return digits[:3] + ".***." + digits[6:9] + "-**"
}

// MaskEmail keeps the first character of the local part and the domain
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "********"
	}
	return email[:1] + "***" + email[at:]
}

// MaskSensitiveData masks sensitive person fields in a map
func MaskSensitiveData(data map[string]interface{}) map[string]interface{} {
	masked := make(map[string]interface{}, len(data))
	for k, v := range data {
		if sensitiveFields[k] {
			masked[k] = "********"
			continue
		}
		masked[k] = v
	}
	return masked
}
