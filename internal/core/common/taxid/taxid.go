// Package taxid validates Brazilian national tax identifiers (CPF and CNPJ).
package taxid

import "strings"

type Kind string

const (
	KindUnknown Kind = "UNKNOWN"
	KindCPF     Kind = "CPF"
	KindCNPJ    Kind = "CNPJ"
)

const (
	cpfLength  = 11
	cnpjLength = 14
)

// Digits strips every non-digit character from raw.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid reports whether raw reduces to a CPF or CNPJ with correct check digits.
func IsValid(raw string) bool {
	d := Digits(raw)
	switch len(d) {
	case cpfLength:
		return validCPF(d)
	case cnpjLength:
		return validCNPJ(d)
	default:
		return false
	}
}

// IsValidOrBlank treats a blank value as valid. Missing documents are a
// required-field concern, not a checksum one.
func IsValidOrBlank(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	return IsValid(raw)
}

func IsCPF(raw string) bool {
	d := Digits(raw)
	return len(d) == cpfLength && validCPF(d)
}

func IsCNPJ(raw string) bool {
	d := Digits(raw)
	return len(d) == cnpjLength && validCNPJ(d)
}

// KindOf returns the identifier kind of a valid value, or KindUnknown.
func KindOf(raw string) Kind {
	d := Digits(raw)
	switch {
	case len(d) == cpfLength && validCPF(d):
		return KindCPF
	case len(d) == cnpjLength && validCNPJ(d):
		return KindCNPJ
	default:
		return KindUnknown
	}
}

func validCPF(d string) bool {
	if repeated(d) {
		return false
	}
	return cpfCheckDigit(d, 10) == digit(d, 9) && cpfCheckDigit(d, 11) == digit(d, 10)
}

// cpfCheckDigit weights the first weight-1 digits from weight down to 2.
func cpfCheckDigit(d string, weight int) int {
	sum := 0
	for i := 0; i < weight-1; i++ {
		sum += digit(d, i) * (weight - i)
	}
	return checkDigit(sum)
}

func validCNPJ(d string) bool {
	if repeated(d) {
		return false
	}
	return cnpjCheckDigit(d, 12) == digit(d, 12) && cnpjCheckDigit(d, 13) == digit(d, 13)
}

// cnpjCheckDigit walks the first n digits with weights 5..2,9..2 (n=12)
// or 6..2,9..2 (n=13).
func cnpjCheckDigit(d string, n int) int {
	weight := n - 7
	sum := 0
	for i := 0; i < n; i++ {
		sum += digit(d, i) * weight
		if weight == 2 {
			weight = 9
		} else {
			weight--
		}
	}
	return checkDigit(sum)
}

func checkDigit(sum int) int {
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func repeated(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

func digit(d string, i int) int {
	return int(d[i] - '0')
}
