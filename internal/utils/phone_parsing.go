package utils

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// PhoneComponents represents the parsed components of a Brazilian phone number
type PhoneComponents struct {
	DDI    string `json:"ddi"`
	DDD    string `json:"ddd"`
	Valor  string `json:"valor"`
	Full   string `json:"full"`
	Mobile bool   `json:"mobile"`
}

// ParsePhoneNumber parses a national phone number (10 or 11 digits, any
// formatting) and returns its components with the E.164 form in Full.
// Numbers without a country code are assumed to be Brazilian.
func ParsePhoneNumber(phoneString string) (*PhoneComponents, error) {
	cleanPhone := strings.TrimSpace(phoneString)
	if cleanPhone == "" {
		return nil, fmt.Errorf("empty phone number")
	}

	num, err := phonenumbers.Parse(cleanPhone, "BR")
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return nil, fmt.Errorf("invalid phone number: %s", phoneString)
	}

	nationalNumber := phonenumbers.GetNationalSignificantNumber(num)
	components := &PhoneComponents{
		DDI:    fmt.Sprintf("%d", num.GetCountryCode()),
		Full:   phonenumbers.Format(num, phonenumbers.E164),
		Mobile: phonenumbers.GetNumberType(num) == phonenumbers.MOBILE,
	}
	if len(nationalNumber) > 2 {
		components.DDD = nationalNumber[:2]
		components.Valor = nationalNumber[2:]
	} else {
		components.Valor = nationalNumber
	}

	return components, nil
}

// FormatPhoneE164 returns the E.164 form of a Brazilian phone number or an
// empty string when the number cannot be parsed
func FormatPhoneE164(phoneString string) string {
	components, err := ParsePhoneNumber(phoneString)
	if err != nil {
		return ""
	}
	return components.Full
}
