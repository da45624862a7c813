package domain

import "strings"

const (
	MinPhoneDigits = 10
	OTPLength      = 6
)

// NormalizePhone strips separators from a phone number and checks that what
// remains is at least MinPhoneDigits digits, optionally led by '+'.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	digits := 0
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", ErrInvalidPhone
		}
	}
	if digits < MinPhoneDigits {
		return "", ErrInvalidPhone
	}
	return b.String(), nil
}

// ValidateOTP checks that otp is exactly OTPLength ASCII digits.
func ValidateOTP(otp string) error {
	if len(otp) != OTPLength {
		return ErrInvalidOTP
	}
	for i := 0; i < len(otp); i++ {
		if otp[i] < '0' || otp[i] > '9' {
			return ErrInvalidOTP
		}
	}
	return nil
}
