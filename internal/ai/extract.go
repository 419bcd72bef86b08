// extract.go - Locates the JSON payload inside a free-form completion

package ai

import (
	"regexp"
	"strings"
)

var fencedJSONBlock = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

// ExtractJSON returns the best JSON candidate in a completion, in priority order:
// the interior of a ```json fenced block, then the span from the first '{' to the
// last '}', then the trimmed text itself. It never fails; the result may still not be JSON.
func ExtractJSON(text string) string {
	if m := fencedJSONBlock.FindStringSubmatch(text); m != nil {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			return inner
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}
