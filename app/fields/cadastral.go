package fields

import (
	"regexp"
	"strings"
)

// Cadastral numbers: district, area, a 4-19 digit quarter group and a 1-6
// digit parcel group, colon-separated.
var (
	cadastralExactRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{4,19}:\d{1,6}$`)
	cadastralScanRe  = regexp.MustCompile(`\d{2}:\d{2}:\d{4,19}:\d{1,6}`)
)

const cadastralPhrase = "кадастровый номер"

// IsCadastral reports whether s is a full cadastral number. Used both for
// accepting structured field values and for retry-sweep eligibility; partial
// matches are rejected here on purpose.
func IsCadastral(s string) bool {
	return cadastralExactRe.MatchString(s)
}

// ExtractCadastral finds a cadastral number for one feed item. Structured
// sources are searched first and trusted only on a full match; the free-text
// scan is the permissive fallback. An empty result means the item has no
// identifier and enrichment is skipped, which is not an error.
func ExtractCadastral(normFields, rawFields map[string]string, freeText string) string {
	if num := matchCadastralField(normFields); num != "" {
		return num
	}
	if num := matchCadastralField(rawFields); num != "" {
		return num
	}
	return cadastralScanRe.FindString(CleanHTML(freeText))
}

func matchCadastralField(fields map[string]string) string {
	for name, value := range fields {
		if !strings.Contains(strings.ToLower(name), cadastralPhrase) {
			continue
		}
		value = strings.TrimSpace(value)
		if IsCadastral(value) {
			return value
		}
	}
	return ""
}
