package fields

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	lineBreakRe  = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</li>|</tr>`)
)

// Normalize converts a raw field label to its canonical column name:
// trimmed, one trailing colon stripped, inner whitespace collapsed, inner
// colons replaced (they would collide with the key/value delimiter), first
// rune upper-cased and the rest lower-cased. Idempotent.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, ":")
	name = strings.TrimSpace(name)
	name = whitespaceRe.ReplaceAllString(name, " ")
	name = strings.ReplaceAll(name, ":", ";")
	return capitalize(name)
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}

// CleanHTML strips markup from a description blob. Explicit line-break tags
// are converted to newlines first so the key/value structure survives tag
// removal; entities are unescaped by the HTML parser.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	s = lineBreakRe.ReplaceAllString(s, "\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

// ParseFreeText splits a description blob into canonical-name -> value pairs.
// Lines without a colon, or with an empty key after normalization, are
// discarded. Duplicate keys within one blob are last-write-wins.
func ParseFreeText(block string) map[string]string {
	result := make(map[string]string)

	for _, line := range strings.Split(CleanHTML(block), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		name := Normalize(key)
		if name == "" {
			continue
		}
		result[name] = strings.TrimSpace(value)
	}

	return result
}
