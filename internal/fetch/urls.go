package fetch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

const (
	minPartsForTelegramChannelSlugStartingWithS = 2

	telegramHost = "t.me"
)

var (
	telegramSlugRe       = regexp.MustCompile(`^\w{5,32}$`)
	telegramAtSignSlugRe = regexp.MustCompile(`^@(\w{5,32})$`)

	//nolint:gochecknoglobals // Compiled once, read-only.
	webURLRe = xurls.Strict()
)

// FindURLs returns the http and https links found in text, in order.
func FindURLs(text string) []string {
	var urls []string
	for _, u := range webURLRe.FindAllString(text, -1) {
		parsed, err := url.Parse(u)
		if err != nil {
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		urls = append(urls, u)
	}

	return urls
}

// SingleURL reports whether the whole of text is one link, or one @channel
// mention which resolves to the channel's public page.
func SingleURL(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if m := telegramAtSignSlugRe.FindStringSubmatch(text); m != nil {
		return TelegramChannelCanonicalURL(m[1]), true
	}

	urls := FindURLs(text)
	if len(urls) != 1 || urls[0] != text {
		return "", false
	}

	return urls[0], true
}

// CanonicalURL drops the fragment and lowercases the host so that equal pages
// share a cache entry.
func CanonicalURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if ok, slug := isTelegramChannelURL(u.String()); ok {
		return TelegramChannelCanonicalURL(slug)
	}

	return u.String()
}

func TelegramChannelCanonicalURL(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ""
	}

	return fmt.Sprintf("https://%s/s/%s", telegramHost, slug)
}

// isTelegramChannelURL matches channel pages (t.me/<slug> and t.me/s/<slug>)
// but not single posts (t.me/<slug>/<id>).
func isTelegramChannelURL(raw string) (bool, string) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false, ""
	}

	if !strings.EqualFold(u.Host, telegramHost) {
		return false, ""
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return false, ""
	}

	parts := strings.Split(path, "/")

	var slug string

	switch {
	case parts[0] == "s" && len(parts) == minPartsForTelegramChannelSlugStartingWithS:
		slug = parts[1]
	case parts[0] != "s" && len(parts) == 1:
		slug = parts[0]
	default:
		return false, ""
	}

	if !telegramSlugRe.MatchString(slug) {
		return false, ""
	}

	return true, slug
}
