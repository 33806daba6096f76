package restock

import "github.com/sellauth-tools/stockbot/internal/domain/commerce"

// ParseItems splits form text into deliverables, one per line, with the same
// rules the shop uses for newline-separated deliverables.
func ParseItems(text string) []string {
	return commerce.SplitLines(text)
}
