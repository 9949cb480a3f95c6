package canon

import "strings"

// ToSSURTPrefix turns an access-rule pattern into an SSURT prefix suitable
// for a range scan. Three forms are recognised, in this order:
//
//   - a domain glob ("*.gov.au") emits the bare revdomain stem, no port,
//     scheme, or path: "au,gov,".
//   - a URL ending in "/*" is a host+path prefix: the trailing "*" is
//     stripped and the remainder canonicalised, with no sentinel appended,
//     so it matches every URL under that path.
//   - any other URL is an exact match: it is canonicalised and the SPACE
//     sentinel is appended so the prefix scan cannot over-match children.
//
// A pattern that is already in SSURT form (no "://" and no "*." prefix) is
// passed through unchanged.
func ToSSURTPrefix(pattern string) (string, error) {
	if pattern == "" {
		return "", nil
	}

	if strings.HasPrefix(pattern, "*.") {
		sshost, err := canonicalHost(pattern[2:])
		if err != nil {
			return "", err
		}
		return sshost, nil
	}

	if !strings.Contains(pattern, "://") {
		// Already SSURT (or SSURT-shaped): pass through.
		return pattern, nil
	}

	wildcard := strings.HasSuffix(pattern, "*")
	urlStr := pattern
	if wildcard {
		urlStr = strings.TrimSuffix(pattern, "*")
	}

	u, err := Canonicalize(urlStr)
	if err != nil {
		return "", err
	}
	s := u.SSURT()
	if !wildcard {
		s += sentinel
	}
	return s, nil
}

// AncestorPrefixes returns the SSURT of u plus every shorter prefix formed
// by trimming, in order, path segments down to the root "/", then the path
// together with userinfo, then scheme, then port, then domain labels - the
// search order checkAccess uses to find every rule that could apply to u.
func AncestorPrefixes(u *URL) []string {
	var prefixes []string
	full := u.SSURT()
	prefixes = append(prefixes, full)

	// trim path segments right to left, keeping the leading "/"
	if u.Path != "/" && u.Path != "" {
		segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
		for i := len(segments) - 1; i > 0; i-- {
			trimmedPath := "/" + strings.Join(segments[:i], "/") + "/"
			prefixes = append(prefixes, u.SSHost+":"+u.Port+":"+u.Scheme+":"+u.UserInfo+trimmedPath)
		}
	}
	// the root path itself
	prefixes = append(prefixes, u.SSHost+":"+u.Port+":"+u.Scheme+":"+u.UserInfo+"/")

	// host+port+scheme (no path)
	prefixes = append(prefixes, u.SSHost+":"+u.Port+":"+u.Scheme+":")
	// host+port (no scheme)
	prefixes = append(prefixes, u.SSHost+":"+u.Port+":")
	// host only
	prefixes = append(prefixes, u.SSHost)

	// successively shorter domain stems, e.g. "au,gov,nla," -> "au,gov," -> "au,"
	if strings.HasSuffix(u.SSHost, ",") {
		labels := strings.Split(strings.TrimSuffix(u.SSHost, ","), ",")
		for i := len(labels) - 1; i > 0; i-- {
			prefixes = append(prefixes, strings.Join(labels[:i], ",")+",")
		}
	}

	return dedupe(prefixes)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
