package render

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextOnce   sync.Once
	richTextPolicy *bluemonday.Policy

	plainTextOnce   sync.Once
	plainTextPolicy *bluemonday.Policy
)

// SanitizeRichText keeps the formatting markup a text editor produces and
// drops everything executable.
func SanitizeRichText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(richTextSanitizer().Sanitize(trimmed))
}

// StripTags removes all markup
func StripTags(raw string) string {
	return strings.TrimSpace(plainTextSanitizer().Sanitize(raw))
}

func richTextSanitizer() *bluemonday.Policy {
	richTextOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		richTextPolicy = policy
	})
	return richTextPolicy
}

func plainTextSanitizer() *bluemonday.Policy {
	plainTextOnce.Do(func() {
		plainTextPolicy = bluemonday.StrictPolicy()
	})
	return plainTextPolicy
}
