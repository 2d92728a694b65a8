package util

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// DefaultAvatarPrefix gravatar compatible mirror
const DefaultAvatarPrefix = "https://cravatar.cn/avatar"

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// AvatarURL builds a gravatar style avatar url from an email
func AvatarURL(email, prefix string) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultAvatarPrefix
	}
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return strings.TrimRight(prefix, "/") + "/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}

// ExtractDomain returns the lowercase host of an absolute http(s) url, or ""
func ExtractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if !schemePattern.MatchString(raw) {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
