package utils

import (
	"fmt"
	"strings"
)

// PhoneNumberLength is the stored length of a phone number including the leading "+".
const PhoneNumberLength = 12

// PhoneError represents a phone number validation error
type PhoneError struct {
	Code    string
	Message string
}

func (e *PhoneError) Error() string {
	return e.Message
}

// NormalizePhone converts a phone number shared by a chat client into the
// stored form. Clients send the number with or without the leading "+".
func NormalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", &PhoneError{Code: "MISSING_PHONE", Message: "Phone number is required"}
	}

	digits := strings.TrimPrefix(phone, "+")
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return "", &PhoneError{
			Code:    "INVALID_PHONE",
			Message: fmt.Sprintf("Phone number %q must contain only digits", raw),
		}
	}

	if len(phone) == PhoneNumberLength || strings.HasPrefix(phone, "+") {
		return phone, nil
	}
	return "+" + phone, nil
}
