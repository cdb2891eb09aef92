package domain

import "strings"

// ValidCPF checks a Brazilian CPF tax id: 11 digits with two modulus-11
// verifier digits. Punctuation is ignored; repeated-digit numbers (which
// pass the arithmetic) are rejected.
func ValidCPF(cpf string) bool {
	var digits []int
	for _, r := range cpf {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case strings.ContainsRune(".- ", r):
			// formatting, skip
		default:
			return false
		}
	}
	if len(digits) != 11 {
		return false
	}

	allSame := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	return digits[9] == cpfVerifier(digits, 9) && digits[10] == cpfVerifier(digits, 10)
}

func cpfVerifier(digits []int, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += digits[i] * (n + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
