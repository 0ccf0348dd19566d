package extractor

import "strings"

// Absolutize turns a site-relative href into an absolute link by prefixing baseURL.
// Links that already carry an http(s) scheme are returned unchanged, an empty href stays empty.
// No dot-segment resolution is done.
func Absolutize(baseURL, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	default:
		return baseURL + href
	}
}

var lineBreaks = strings.NewReplacer("\u00a0", " ", "\n", " ", "\r", " ")

// NormalizeIngredient replaces non-breaking spaces and line breaks with spaces,
// collapses whitespace runs and trims the result.
func NormalizeIngredient(s string) string {
	return strings.Join(strings.Fields(lineBreaks.Replace(s)), " ")
}

var stepBreaks = strings.NewReplacer("\n", "", "\r", "")

// cleanStepText removes line breaks from a step paragraph and trims it
func cleanStepText(s string) string {
	return strings.TrimSpace(stepBreaks.Replace(s))
}

// stripLabels removes every known label from s and trims the result
func stripLabels(s string, labels []string) string {
	for _, label := range labels {
		s = strings.ReplaceAll(s, label, "")
	}
	return strings.TrimSpace(s)
}
