package util

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>`)
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	sanitizer = newSanitizer()
)

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// StripScripts removes <script>...</script> blocks from user input
func StripScripts(s string) string {
	return scriptBlockPattern.ReplaceAllString(s, "")
}

// IsValidEmail checks the address against a permissive user@host.tld pattern
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// RenderContent renders comment markdown to sanitized HTML
func RenderContent(text string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		// 마크다운 변환 실패 시 원문을 이스케이프해서 사용
		return sanitizer.Sanitize(strings.ReplaceAll(text, "<", "&lt;"))
	}
	return strings.TrimSpace(sanitizer.Sanitize(buf.String()))
}
