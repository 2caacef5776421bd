package conversation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxInputChars caps the length of a single user message.
const MaxInputChars = 1000

var (
	ErrEmptyInput   = errors.New("message is empty")
	ErrInputTooLong = errors.New("message exceeds maximum length")
)

// ValidateInput checks user text before anything is recorded or sent.
func ValidateInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(text) > MaxInputChars {
		return ErrInputTooLong
	}
	return nil
}
