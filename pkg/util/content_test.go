package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripScripts(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"a<script>alert(1)</script>b", "ab"},
		{"a<SCRIPT type=\"x\">\nalert(1)\n</SCRIPT>b", "ab"},
		{"<script>x</script><script>y</script>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripScripts(tt.in))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.co"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("a b@c.d"))
	assert.False(t, IsValidEmail(""))
}

func TestRenderContent(t *testing.T) {
	html := RenderContent("**bold** <img src=x onerror=alert(1)>")

	assert.Contains(t, html, "<strong>bold</strong>")
	assert.NotContains(t, html, "onerror")
}

func TestAvatarURL(t *testing.T) {
	// md5("test@example.com")
	const hash = "55502f40dc8b7c769880b10874abc9d0"

	assert.Equal(t, DefaultAvatarPrefix+"/"+hash+"?d=identicon", AvatarURL(" Test@Example.com ", ""))
	assert.Equal(t, "https://gravatar.com/avatar/"+hash+"?d=identicon", AvatarURL("test@example.com", "https://gravatar.com/avatar/"))
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "blog.example.com", ExtractDomain("https://Blog.Example.com/posts/1"))
	assert.Equal(t, "example.com", ExtractDomain("http://example.com:8080/x"))
	assert.Equal(t, "", ExtractDomain("/posts/1"))
	assert.Equal(t, "", ExtractDomain(""))
}
