package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhoneNumber(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFull  string
		wantDDD   string
		wantValor string
		wantErr   bool
	}{
		{
			name:      "mobile raw digits",
			input:     "21987654321",
			wantFull:  "+5521987654321",
			wantDDD:   "21",
			wantValor: "987654321",
		},
		{
			name:      "mobile masked",
			input:     "(11) 98765-4321",
			wantFull:  "+5511987654321",
			wantDDD:   "11",
			wantValor: "987654321",
		},
		{
			name:      "with country code",
			input:     "+55 21 98765-4321",
			wantFull:  "+5521987654321",
			wantDDD:   "21",
			wantValor: "987654321",
		},
		{name: "empty", input: "   ", wantErr: true},
		{name: "garbage", input: "not a phone", wantErr: true},
		{name: "too short", input: "2198", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePhoneNumber(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "55", got.DDI)
			assert.Equal(t, tt.wantFull, got.Full)
			assert.Equal(t, tt.wantDDD, got.DDD)
			assert.Equal(t, tt.wantValor, got.Valor)
		})
	}
}

func TestFormatPhoneE164(t *testing.T) {
	assert.Equal(t, "+5521987654321", FormatPhoneE164("21987654321"))
	assert.Equal(t, "", FormatPhoneE164("123"))
}
