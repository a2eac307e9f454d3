// Package giturl normalizes git remote URLs and derives names from them.
package giturl

import (
	"net/url"
	"path"
	"strings"
)

// IsURL checks if the given string looks like a git remote rather than a
// registry name.
func IsURL(u string) bool {
	return strings.HasPrefix(u, "git@") || isPossibleProtocol(u)
}

func isSupportedProtocol(u string) bool {
	return strings.HasPrefix(u, "ssh:") ||
		strings.HasPrefix(u, "git+ssh:") ||
		strings.HasPrefix(u, "git:") ||
		strings.HasPrefix(u, "http:") ||
		strings.HasPrefix(u, "git+https:") ||
		strings.HasPrefix(u, "https:")
}

func isPossibleProtocol(u string) bool {
	return isSupportedProtocol(u) ||
		strings.HasPrefix(u, "ftp:") ||
		strings.HasPrefix(u, "ftps:") ||
		strings.HasPrefix(u, "file:")
}

// Parse normalizes git remote urls, including scp-like syntax (git@github.com:owner/repo)
func Parse(rawURL string) (*url.URL, error) {
	if !isPossibleProtocol(rawURL) &&
		strings.ContainsRune(rawURL, ':') &&
		// not a Windows path
		!strings.ContainsRune(rawURL, '\\') {
		// support scp-like syntax for ssh protocol
		rawURL = "ssh://" + strings.Replace(rawURL, ":", "/", 1)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "git+https":
		u.Scheme = "https"
	case "git+ssh":
		u.Scheme = "ssh"
	}

	if u.Scheme != "ssh" {
		return u, nil
	}

	if strings.HasPrefix(u.Path, "//") {
		u.Path = strings.TrimPrefix(u.Path, "/")
	}

	u.Host = strings.TrimSuffix(u.Host, ":"+u.Port())

	return u, nil
}

// Clean trims surrounding whitespace from user input.
func Clean(rawURL string) string {
	return strings.TrimSpace(rawURL)
}

// Key returns the form used to compare URLs for uniqueness. Comparison is
// case-insensitive on the whole string.
func Key(rawURL string) string {
	return strings.ToLower(Clean(rawURL))
}

// Equal reports whether two remotes are the same registry entry.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// RepoName derives a display name from the final path segment of a remote,
// without its extension. "https://example.com/sample-repo.git" gives
// "sample-repo".
func RepoName(rawURL string) string {
	raw := strings.TrimRight(Clean(rawURL), `/\`)

	var segment string

	u, err := Parse(raw)

	switch {
	case err == nil && u.Path != "":
		segment = path.Base(u.Path)
	case err == nil && u.Host != "":
		// Bare host, nothing to take a name from.
	default:
		// Opaque or unparsable input such as a Windows path.
		i := strings.LastIndexAny(raw, `/\:`)
		segment = raw[i+1:]
	}

	if name := strings.TrimSuffix(segment, path.Ext(segment)); usableName(name) {
		return name
	}

	if err == nil && u.Hostname() != "" {
		return u.Hostname()
	}

	return "repository"
}

// usableName rejects names that would resolve to the base directory or its
// parent when joined onto it.
func usableName(name string) bool {
	switch name {
	case "", ".", "..", "/":
		return false
	}

	return true
}
