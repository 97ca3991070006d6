// Package validator parses and sanitizes request input for the mail and
// notification routes.
package validator

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidRecipients = errors.New("recipients must be a list of user ids")
)

// Input limits
const (
	MaxSubjectLength  = 255
	MaxTitleLength    = 255
	MaxFilenameLength = 255
)

// ParseID parses a positive numeric path or form value
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return uint(id), nil
}

// ParseRecipients accepts a JSON array of ids ("[2,3]" or "[\"2\",\"3\"]")
// or a comma separated list ("2, 3"). Blank input yields an empty list.
func ParseRecipients(raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []uint{}, nil
	}

	if strings.HasPrefix(raw, "[") {
		var values []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, ErrInvalidRecipients
		}
		ids := make([]uint, 0, len(values))
		for _, v := range values {
			id, err := ParseID(strings.Trim(string(v), `"`))
			if err != nil {
				return nil, ErrInvalidRecipients
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := ParseID(part)
		if err != nil {
			return nil, ErrInvalidRecipients
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseRecipientValues merges repeated form fields, each parsed by ParseRecipients
func ParseRecipientValues(values []string) ([]uint, error) {
	ids := []uint{}
	for _, v := range values {
		parsed, err := ParseRecipients(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, parsed...)
	}
	return ids, nil
}

// ParseLimit parses an optional positive limit; anything else yields 0
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SanitizeFilename removes dangerous characters from filename.
// Prevents path traversal and removes control characters.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")

	filename = SanitizeString(filename, MaxFilenameLength)

	if filename == "" {
		return "unnamed"
	}
	return filename
}

// SanitizeString drops control characters, trims whitespace and enforces
// maxLength runes when maxLength is positive
func SanitizeString(input string, maxLength int) string {
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	input = strings.TrimSpace(input)

	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		input = string([]rune(input)[:maxLength])
	}

	return input
}

// SanitizeBody trims a mail or notification body. Line breaks and tabs are kept.
func SanitizeBody(input string) string {
	input = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(input)
}
