package service

import (
	"net/mail"
	"regexp"
	"strings"

	"xpointconnect/backend/libs/password"
)

var (
	nicPattern   = regexp.MustCompile(`^[0-9]{9}[vVxX]$|^[0-9]{12}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
)

// ValidNIC reports whether nic is an old (9 digits + V/X) or new (12 digits) NIC number.
func ValidNIC(nic string) bool {
	return nicPattern.MatchString(nic)
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return validationf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationf("invalid email %q", email)
	}
	return nil
}

func validatePhone(phone string) error {
	normalized := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	if !phonePattern.MatchString(normalized) {
		return validationf("invalid phone number %q", phone)
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < password.MinLength {
		return validationf("password must be at least %d characters", password.MinLength)
	}
	if len(pw) > password.MaxLength {
		return validationf("password must be at most %d bytes", password.MaxLength)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return validationf("%s is required", field)
	}
	return nil
}
