// Package canon normalises URLs into SURT and SSURT key forms and turns
// rule patterns (exact URLs, URL prefixes, and domain globs) into SSURT
// prefixes suitable for range scans.
package canon

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/purell"
	"golang.org/x/net/idna"
)

// ErrBadURL is returned when a URL cannot be parsed or canonicalised.
var ErrBadURL = fmt.Errorf("bad url")

// sentinel is appended to an SSURT to mark an exact-match prefix: it sorts
// below every character that can legally appear in a path, so a prefix scan
// for "this URL exactly" never picks up children of the same path.
const sentinel = " "

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

const normalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagUppercaseEscapes |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagEncodeNecessaryEscapes

// URL is a canonicalised URL split into the fields the SSURT grammar needs.
type URL struct {
	SSHost   string // revdomain ("com,example,") or literal IP, bracketed for IPv6
	Port     string
	Scheme   string
	UserInfo string
	Path     string
	Query    string
	HasQuery bool
	Frag     string
}

// SSURT renders the richer key form: sshost ":" port ":" scheme ":"
// [userinfo] "/" path ["?" query] ["#" frag].
func (u *URL) SSURT() string {
	var b strings.Builder
	b.WriteString(u.SSHost)
	b.WriteByte(':')
	b.WriteString(u.Port)
	b.WriteByte(':')
	b.WriteString(u.Scheme)
	b.WriteByte(':')
	b.WriteString(u.UserInfo)
	b.WriteString(u.Path)
	if u.HasQuery {
		b.WriteByte('?')
		b.WriteString(u.Query)
	}
	if u.Frag != "" {
		b.WriteByte('#')
		b.WriteString(u.Frag)
	}
	return b.String()
}

// SURT renders the legacy key form: scheme://(revdomain,)/path?query.
func (u *URL) SURT() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://(")
	b.WriteString(u.SSHost)
	b.WriteByte(')')
	b.WriteString(u.Path)
	if u.HasQuery {
		b.WriteByte('?')
		b.WriteString(u.Query)
	}
	return b.String()
}

// Canonicalize parses and normalises raw into its SSURT components,
// applying host/port/scheme/path/query canonicalisation in the order
// specified: host normalisation, port defaulting, scheme lowercasing,
// path canonicalisation, then query canonicalisation.
func Canonicalize(raw string) (*URL, error) {
	orig, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadURL, raw, err)
	}
	if orig.Scheme == "" || orig.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host in %q", ErrBadURL, raw)
	}

	sshost, err := canonicalHost(orig.Hostname())
	if err != nil {
		return nil, err
	}

	scheme := strings.ToLower(orig.Scheme)

	port := orig.Port()
	if port == "" {
		port = defaultPorts[scheme]
		if port == "" {
			port = "0"
		}
	} else {
		trimmed := strings.TrimLeft(port, "0")
		if trimmed == "" {
			trimmed = "0"
		}
		port = trimmed
	}

	userinfo := ""
	if orig.User != nil {
		userinfo = orig.User.String()
	}

	normalized, err := purell.NormalizeURLString(raw, normalizeFlags)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadURL, raw, err)
	}
	nu, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadURL, raw, err)
	}

	path := nu.EscapedPath()
	if path == "" {
		path = "/"
	}

	return &URL{
		SSHost:   sshost,
		Port:     port,
		Scheme:   scheme,
		UserInfo: userinfo,
		Path:     path,
		Query:    nu.RawQuery,
		HasQuery: nu.ForceQuery || nu.RawQuery != "",
		Frag:     nu.Fragment,
	}, nil
}

// canonicalHost turns a hostname into its SSURT sshost form: a
// comma-terminated reversed-label domain string, or the literal (lowercased)
// text of an IP address, bracketed for IPv6. Per the pinned open-question
// decision, IPv4/IPv6 literals are never expanded or re-mapped - the text is
// used as-is.
func canonicalHost(host string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("%w: empty host", ErrBadURL)
	}
	host = collapseDots(host)

	if ip := net.ParseIP(host); ip != nil {
		host = strings.ToLower(host)
		if strings.Contains(host, ":") {
			return "[" + host + "]", nil
		}
		return host, nil
	}

	ascii, err := idna.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: invalid host %q: %v", ErrBadURL, host, err)
	}
	ascii = strings.ToLower(ascii)

	labels := strings.Split(ascii, ".")
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return strings.Join(labels, ",") + ",", nil
}

// collapseDots turns runs of "." into a single "." and strips a trailing ".".
func collapseDots(host string) string {
	for strings.Contains(host, "..") {
		host = strings.ReplaceAll(host, "..", ".")
	}
	return strings.TrimSuffix(host, ".")
}

// SurtPort looks up the default port for a scheme, "0" if unknown.
func SurtPort(scheme string) string {
	if p, ok := defaultPorts[strings.ToLower(scheme)]; ok {
		return p
	}
	return "0"
}

// MustAtoiPort is a small helper used by callers that need the numeric form
// of a canonicalised port for display.
func MustAtoiPort(port string) int {
	n, _ := strconv.Atoi(port)
	return n
}
