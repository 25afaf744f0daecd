package utils

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name  string
		cpf   string
		valid bool
	}{
		// Valid CPFs
		{name: "Valid CPF without formatting", cpf: "12345678909", valid: true},
		{name: "Valid CPF with formatting", cpf: "123.456.789-09", valid: true},
		{name: "Valid CPF - real example 1", cpf: "11144477735", valid: true},
		{name: "Valid CPF - real example 2", cpf: "52998224725", valid: true},
		{name: "Valid CPF with surrounding noise", cpf: " 529.982.247-25 ", valid: true},

		// Invalid CPFs
		{name: "Invalid CPF - wrong check digit", cpf: "12345678900", valid: false},
		{name: "Invalid CPF - wrong second digit", cpf: "12345678901", valid: false},
		{name: "Invalid CPF - all zeros", cpf: "00000000000", valid: false},
		{name: "Invalid CPF - all ones", cpf: "11111111111", valid: false},
		{name: "Invalid CPF - all nines", cpf: "999.999.999-99", valid: false},
		{name: "Invalid CPF - too short", cpf: "1234567890", valid: false},
		{name: "Invalid CPF - too long", cpf: "529982247250", valid: false},
		{name: "Invalid CPF - empty", cpf: "", valid: false},
		{name: "Invalid CPF - letters only", cpf: "abcdefghijk", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateCPF(tt.cpf))
		})
	}
}

func TestCPFCheckDigits(t *testing.T) {
	tests := []struct {
		base          string
		first, second int
	}{
		{base: "529982247", first: 2, second: 5},
		{base: "111444777", first: 3, second: 5},
		{base: "123456789", first: 0, second: 9},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			first, second, ok := CPFCheckDigits(tt.base)
			assert.True(t, ok)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.second, second)
		})
	}
}

func TestCPFCheckDigits_RejectsMalformedBase(t *testing.T) {
	for _, base := range []string{"", "12345678", "1234567890", "12345678a"} {
		_, _, ok := CPFCheckDigits(base)
		assert.False(t, ok, base)
	}
}

// Appending the computed check digits to any nine-digit base that is not a
// repdigit always yields a valid CPF, and changing either check digit breaks it.
func TestValidateCPF_ComputedDigitsAlwaysValid(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		base := fmt.Sprintf("%09d", rng.Intn(1_000_000_000))
		first, second, _ := CPFCheckDigits(base)
		cpf := fmt.Sprintf("%s%d%d", base, first, second)
		if allSameDigit(cpf) {
			continue
		}

		assert.True(t, ValidateCPF(cpf), cpf)

		wrong := fmt.Sprintf("%s%d%d", base, (first+1)%10, second)
		assert.False(t, ValidateCPF(wrong), wrong)
		wrong = fmt.Sprintf("%s%d%d", base, first, (second+1)%10)
		assert.False(t, ValidateCPF(wrong), wrong)
	}
}
