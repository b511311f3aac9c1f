package utils

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// FilenameFromURL returns the last path segment of rawURL, e.g.
// "202009100kan.htm" for ".../boxscores/202009100kan.htm".
func FilenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(strings.TrimSuffix(u.Path, "/"))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("url %q has no filename segment", rawURL)
	}
	return name, nil
}
