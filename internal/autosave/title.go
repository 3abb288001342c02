package autosave

import (
	"strings"

	"github.com/inkwell-notes/inkwell-backend/internal/domain"
)

// MaxDerivedTitleLength is the rune cap applied to derived titles.
// It applies to the title only, never to note content.
const MaxDerivedTitleLength = 100

// DeriveTitle produces a single-line display title from flattened note
// text. It returns the first line whose trimmed form is non-empty,
// truncated to MaxDerivedTitleLength runes, so a note beginning with
// blank lines still gets a sensible title. Blank input yields the
// "Untitled" sentinel. Pure function, deterministic for a given input.
func DeriveTitle(plainText string) string {
	if strings.TrimSpace(plainText) == "" {
		return domain.UntitledSentinel
	}

	for _, line := range strings.Split(plainText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		runes := []rune(trimmed)
		if len(runes) > MaxDerivedTitleLength {
			return string(runes[:MaxDerivedTitleLength])
		}
		return trimmed
	}

	// Unreachable given the blank check above, kept as a guard.
	return domain.UntitledSentinel
}
