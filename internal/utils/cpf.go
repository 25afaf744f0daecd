package utils

// ValidateCPF reports whether cpf is a valid Brazilian CPF. Non-digit
// characters are ignored, so both "529.982.247-25" and "52998224725" pass.
func ValidateCPF(cpf string) bool {
	digits := OnlyDigits(cpf)
	if len(digits) != 11 {
		return false
	}
	if allSameDigit(digits) {
		return false
	}

	first, second, _ := CPFCheckDigits(digits[:9])
	return int(digits[9]-'0') == first && int(digits[10]-'0') == second
}

// CPFCheckDigits computes both check digits for the first nine digits of a
// CPF. ok is false unless base holds exactly nine ASCII digits.
func CPFCheckDigits(base string) (first, second int, ok bool) {
	if len(base) != 9 || OnlyDigits(base) != base {
		return 0, 0, false
	}
	first = cpfCheckDigit(base, 10)
	second = cpfCheckDigit(base+string(rune('0'+first)), 11)
	return first, second, true
}

// cpfCheckDigit weights digits from startWeight down to 2 and applies the
// (sum*10) mod 11 rule, where 10 collapses to 0.
func cpfCheckDigit(digits string, startWeight int) int {
	sum := 0
	for i := 0; i < startWeight-1; i++ {
		sum += int(digits[i]-'0') * (startWeight - i)
	}
	rem := (sum * 10) % 11
	if rem >= 10 {
		return 0
	}
	return rem
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
