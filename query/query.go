// Package query turns a lookup URL into a stream of Captures: alias
// resolution, an ordered range scan, alias-back rewriting, access
// filtering, user filter plugins, and output formatting - in that order,
// fully streaming so memory stays O(1) regardless of result count, except
// for the XML formatter, which buffers every record until its footer.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nla/cdxserver/access"
	"github.com/nla/cdxserver/canon"
	"github.com/nla/cdxserver/index"
	"github.com/nla/cdxserver/record"
)

// MatchType selects how the lookup URL's SSURT is turned into a scan prefix.
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchPrefix MatchType = "prefix"
	MatchHost   MatchType = "host"
	MatchDomain MatchType = "domain"
)

// DefaultLimit is applied when Params.Limit is zero.
const DefaultLimit = 1000

// FilterFunc is a pure predicate over a Capture. Params carries no
// FilterFunc values and Run never calls one: the only filters the pipeline
// applies, after the access check, are the built-in "field:regex" filters
// of Params.Filters.
type FilterFunc func(*record.Capture) bool

// Params is one lookup request.
type Params struct {
	URL         string
	MatchType   MatchType
	Limit       int
	AccessPoint string
	Filters     []string // "field:regex" or "!field:regex" to negate
	Now         uint64   // access time used for the access-control check
}

// Result is one Capture paired with the display URL the pipeline decided to
// show it under - the request URL when an alias was resolved, otherwise the
// capture's own stored originalUrl.
type Result struct {
	Capture     *record.Capture
	DisplayURL  string
	AliasedFrom string // "" unless the lookup was rewritten through an alias
}

// Pipeline runs lookups against one collection's index and access store.
type Pipeline struct {
	Index  *index.Index
	Access *access.Store

	// AccessControlEnabled gates whether Run consults Access at all. When
	// false every record passes, matching config.Access.ExperimentalAccessControl
	// turned off.
	AccessControlEnabled bool
}

// New builds a Pipeline over idx and its access store. accessControlEnabled
// mirrors config.Access.ExperimentalAccessControl: when false, Run never
// calls into accessStore and every record is allowed through.
func New(idx *index.Index, accessStore *access.Store, accessControlEnabled bool) *Pipeline {
	return &Pipeline{Index: idx, Access: accessStore, AccessControlEnabled: accessControlEnabled}
}

// Run executes Params against the pipeline, calling emit for each Result in
// key order until emit returns false, the limit is reached, or the
// underlying scan is exhausted. Access-denied and filtered-out records are
// silently dropped, matching spec.md's "per-record access denials are
// silent drops" propagation policy.
func (p *Pipeline) Run(params Params, emit func(Result) bool) error {
	u, err := canon.Canonicalize(params.URL)
	if err != nil {
		return err
	}
	surt := u.SSURT()

	aliasedFrom := ""
	if target, ok, err := p.Index.ResolveAlias(surt); err != nil {
		return err
	} else if ok {
		aliasedFrom = params.URL
		surt = target
	}

	prefix, err := scanPrefix(surt, params.MatchType)
	if err != nil {
		return err
	}

	filters, err := compileFilters(params.Filters)
	if err != nil {
		return err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	seq, err := p.Index.Query(prefix)
	if err != nil {
		return err
	}
	defer seq.Close()

	count := 0
	for count < limit {
		cap, ok, err := seq.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		displayURL := cap.OriginalUrl
		if aliasedFrom != "" {
			displayURL = aliasedFrom
		}

		if p.AccessControlEnabled && p.Access != nil {
			decision, err := p.Access.CheckAccess(params.AccessPoint, displayURL, cap.Timestamp, params.Now)
			if err != nil {
				return err
			}
			if !decision.Allowed {
				continue
			}
		}

		if !matchesAllFilters(cap, filters) {
			continue
		}

		result := Result{Capture: cap, DisplayURL: displayURL, AliasedFrom: aliasedFrom}
		count++
		if !emit(result) {
			break
		}
	}
	return nil
}

// scanPrefix computes the byte prefix to open the index scan at, per
// spec.md §4.4 step 3.
func scanPrefix(surt string, matchType MatchType) ([]byte, error) {
	switch matchType {
	case "", MatchExact:
		// capture keys separate urlKey from the timestamp with 0x00, so
		// that byte bounds the scan to this exact urlKey
		return append([]byte(surt), 0x00), nil
	case MatchPrefix:
		return []byte(surt), nil
	case MatchHost:
		i := strings.IndexByte(surt, ':')
		if i < 0 {
			return nil, fmt.Errorf("%w: malformed ssurt %q", canon.ErrBadURL, surt)
		}
		return []byte(surt[:i] + ":"), nil
	case MatchDomain:
		i := strings.IndexByte(surt, ':')
		if i < 0 {
			return nil, fmt.Errorf("%w: malformed ssurt %q", canon.ErrBadURL, surt)
		}
		return []byte(surt[:i]), nil
	default:
		return nil, fmt.Errorf("unknown matchType %q", matchType)
	}
}

type compiledFilter struct {
	field  string
	re     *regexp.Regexp
	negate bool
}

func compileFilters(filters []string) ([]compiledFilter, error) {
	out := make([]compiledFilter, 0, len(filters))
	for _, f := range filters {
		negate := strings.HasPrefix(f, "!")
		if negate {
			f = f[1:]
		}
		parts := strings.SplitN(f, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed filter %q, want field:regex", f)
		}
		re, err := regexp.Compile(parts[1])
		if err != nil {
			return nil, fmt.Errorf("malformed filter regex %q: %w", f, err)
		}
		out = append(out, compiledFilter{field: strings.ToLower(parts[0]), re: re, negate: negate})
	}
	return out, nil
}

func matchesAllFilters(c *record.Capture, filters []compiledFilter) bool {
	for _, f := range filters {
		val := fieldValue(c, f.field)
		matched := f.re.MatchString(val)
		if f.negate {
			matched = !matched
		}
		if !matched {
			return false
		}
	}
	return true
}

func fieldValue(c *record.Capture, field string) string {
	switch field {
	case "urlkey":
		return c.UrlKey
	case "original", "originalurl":
		return c.OriginalUrl
	case "mimetype":
		return c.MimeType
	case "digest":
		return c.Digest
	case "redirecturl", "redirect":
		return c.RedirectUrl
	case "robotflags":
		return c.RobotFlags
	case "filename", "file":
		return c.File
	default:
		return ""
	}
}
