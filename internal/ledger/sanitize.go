package ledger

import (
	"regexp"
	"strings"
)

var scriptBlock = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)

// sanitizeText strips script blocks and surrounding whitespace from free text.
func sanitizeText(s string) string {
	return strings.TrimSpace(scriptBlock.ReplaceAllString(s, ""))
}
