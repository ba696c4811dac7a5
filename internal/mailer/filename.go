package mailer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// attachmentFilename derives an ASCII-safe attachment name from the guest
// name: accents stripped, remaining characters restricted to letters,
// digits, spaces, dashes and underscores, spaces collapsed to
// underscores.
func attachmentFilename(guestName string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(stripper, guestName)
	if err != nil {
		ascii = guestName
	}

	var builder strings.Builder
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			builder.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(builder.String())
	safe = strings.ReplaceAll(safe, " ", "_")
	if safe == "" {
		safe = "invitado"
	}
	return "pase_acceso_" + safe + ".png"
}
