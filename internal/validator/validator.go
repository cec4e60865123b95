// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted on register and reset.
const MinPasswordLength = 8

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

var otpCodeRegex = regexp.MustCompile(`^[0-9]{6}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("password_strength", validatePasswordStrength)
		_ = v.RegisterValidation("otp_code", validateOTPCode)
	}
}

// PasswordStrong reports whether s has at least MinPasswordLength characters,
// at most MaxPasswordBytes bytes and includes one letter and one digit.
func PasswordStrong(s string) bool {
	if len([]rune(s)) < MinPasswordLength || len(s) > MaxPasswordBytes {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	return PasswordStrong(fl.Field().String())
}

func validateOTPCode(fl validator.FieldLevel) bool {
	return otpCodeRegex.MatchString(fl.Field().String())
}
