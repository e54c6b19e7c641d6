package utils

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// GenerateBookingReference returns a short human readable code such as "BMS-7K2QX9PA".
// Ambiguous characters (0/O, 1/I) are left out of the alphabet.
func GenerateBookingReference() (string, error) {
	id, err := gonanoid.Generate(referenceAlphabet, 8)
	if err != nil {
		return "", err
	}
	return "BMS-" + id, nil
}

// IsBookingReference reports whether s looks like a value from GenerateBookingReference.
func IsBookingReference(s string) bool {
	code, ok := strings.CutPrefix(s, "BMS-")
	if !ok || len(code) != 8 {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(referenceAlphabet, r) {
			return false
		}
	}
	return true
}
