package recipe

import (
	"encoding/base64"
	"strings"
)

// MaxEncodedInputLength bounds the base64 input carried in a link. Longer
// inputs are left out of the link rather than producing a URL browsers
// refuse to open.
const MaxEncodedInputLength = 8000

// DisplayLinkLength is how much of a link the save dialog shows.
const DisplayLinkLength = 120

// BuildShareableLink composes base with the recipe and input as query
// parameters. base must not already carry a query string. An empty recipe is
// never included; input is included only when its encoded form is non-empty
// and shorter than MaxEncodedInputLength.
func BuildShareableLink(base string, cfg Config, input []byte, includeRecipe, includeInput bool) string {
	inputStr := base64.RawStdEncoding.EncodeToString(input)

	includeRecipe = includeRecipe && len(cfg) > 0
	includeInput = includeInput && len(inputStr) > 0 && len(inputStr) < MaxEncodedInputLength

	var b strings.Builder
	b.WriteString(base)
	if includeRecipe {
		b.WriteString("?recipe=")
		b.WriteString(EncodeURIComponent(cfg.String()))
	}
	if includeInput {
		if includeRecipe {
			b.WriteString("&input=")
		} else {
			b.WriteString("?input=")
		}
		b.WriteString(EncodeURIComponent(inputStr))
	}
	return b.String()
}

// EncodeURIComponent percent-encodes every byte outside
// A-Z a-z 0-9 - _ . ! ~ * ' ( ), the same set browsers leave alone.
// url.QueryEscape differs on space and on ! ' ( ) *.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// Truncate shortens s to max runes, ending in "..." when it was cut.
func Truncate(s string, max int) string {
	const suffix = "..."
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= len(suffix) {
		return string(r[:max])
	}
	return string(r[:max-len(suffix)]) + suffix
}

// ReportInfo is what the support dialog needs to describe a problem.
type ReportInfo struct {
	BaseURL   string
	Recipe    Config
	Input     []byte
	Version   string
	UserAgent string
}

// BugReport renders the markdown bullet list pasted into issue reports,
// including a link that reproduces the current recipe and input.
func BugReport(info ReportInfo) string {
	link := BuildShareableLink(info.BaseURL, info.Recipe, info.Input, true, true)

	var b strings.Builder
	b.WriteString("* Build: " + info.Version + "\n")
	b.WriteString("* User-Agent: \n" + info.UserAgent + "\n")
	b.WriteString("* [Link to reproduce](" + link + ")\n\n")
	return b.String()
}
