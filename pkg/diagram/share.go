package diagram

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// ShareParam is the query parameter carrying a shared diagram.
const ShareParam = "diagram"

// EncodeShare encodes source for a share link: standard base64, then
// URL-escaped.
func EncodeShare(source string) string {
	return url.QueryEscape(base64.StdEncoding.EncodeToString([]byte(source)))
}

// DecodeShare reverses EncodeShare. It also accepts a value whose escaping
// was already removed by a query parser.
func DecodeShare(value string) (string, error) {
	unescaped, err := url.PathUnescape(value)
	if err != nil {
		return "", fmt.Errorf("invalid share value: %w", err)
	}
	// Form decoding turns a literal '+' into a space.
	unescaped = strings.ReplaceAll(unescaped, " ", "+")

	data, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		return "", fmt.Errorf("invalid share value: %w", err)
	}
	return string(data), nil
}

// ShareURL returns base with its query replaced by ?diagram=<encoded source>.
func ShareURL(base, source string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid share base URL: %w", err)
	}
	u.RawQuery = ShareParam + "=" + EncodeShare(source)
	return u.String(), nil
}

// ShareURLForMode is ShareURL with the mode appended to the base path. The
// path selects the rendering mode when the link is opened.
func ShareURLForMode(base, mode, source string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid share base URL: %w", err)
	}
	return ShareURL(u.JoinPath(mode).String(), source)
}
