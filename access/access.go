// Package access stores access rules and policies and evaluates them
// against a capture's URL and times. Rules select captures by SSURT prefix
// ancestry; policies name the access points permitted to view what a rule
// matches.
package access

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	golog "github.com/ipfs/go-log"

	"github.com/nla/cdxserver/canon"
	"github.com/nla/cdxserver/index"
)

var log = golog.Logger("access")

// ErrNotFound is returned when a rule or policy id does not exist.
var ErrNotFound = fmt.Errorf("not found")

// ErrInvalidRule is returned by Validate when a rule is malformed.
var ErrInvalidRule = fmt.Errorf("invalid access rule")

// Rule selects zero or more captures by SSURT prefix ancestry and a
// capture-time / access-time window, and names the policy that applies to
// whatever it selects. A Rule with no Prefixes is global. Pinned rules sort
// before all non-pinned rules regardless of specificity.
type Rule struct {
	ID       uint64   `json:"id"`
	Name     string   `json:"name"`
	Pinned   bool     `json:"pinned"`
	Prefixes []string `json:"prefixes,omitempty"`
	PolicyID uint64   `json:"policyId"`

	HasCaptureWindow bool   `json:"hasCaptureWindow,omitempty"`
	CaptureStart     uint64 `json:"captureStart,omitempty"`
	CaptureEnd       uint64 `json:"captureEnd,omitempty"`

	HasAccessWindow bool   `json:"hasAccessWindow,omitempty"`
	AccessStart     uint64 `json:"accessStart,omitempty"`
	AccessEnd       uint64 `json:"accessEnd,omitempty"`
}

// Validate checks the invariants spec.md places on an AccessRule: every
// supplied time window is non-empty, and every prefix parses.
func (r *Rule) Validate() error {
	if r.HasCaptureWindow && r.CaptureStart > r.CaptureEnd {
		return fmt.Errorf("%w: capture window is empty (%d > %d)", ErrInvalidRule, r.CaptureStart, r.CaptureEnd)
	}
	if r.HasAccessWindow && r.AccessStart > r.AccessEnd {
		return fmt.Errorf("%w: access window is empty (%d > %d)", ErrInvalidRule, r.AccessStart, r.AccessEnd)
	}
	for _, p := range r.Prefixes {
		if _, err := canon.ToSSURTPrefix(p); err != nil {
			return fmt.Errorf("%w: prefix %q: %v", ErrInvalidRule, p, err)
		}
	}
	return nil
}

// Policy names the set of access points permitted to view captures matched
// by any rule that carries this policy's id.
type Policy struct {
	ID           uint64   `json:"id"`
	Name         string   `json:"name"`
	AccessPoints []string `json:"accessPoints"`
}

// allows reports whether accessPoint is named in the policy.
func (p *Policy) allows(accessPoint string) bool {
	for _, ap := range p.AccessPoints {
		if ap == accessPoint {
			return true
		}
	}
	return false
}

// Decision is the result of evaluating a single (url, captureTime,
// accessTime, accessPoint) tuple against the rule/policy store.
type Decision struct {
	PolicyID uint64 `json:"policyId"`
	RuleID   uint64 `json:"ruleId"`
	Allowed  bool   `json:"allowed"`
}

// Check is one element of a CheckAccessBulk request/response.
type Check struct {
	URL         string `json:"url"`
	Timestamp   uint64 `json:"timestamp"`
	AccessPoint string `json:"accessPoint,omitempty"`
}

// Store is the per-collection rule/policy store, backed by the collection's
// Index and cached with a bounded LRU keyed by the evaluated tuple.
type Store struct {
	idx          *index.Index
	defaultAllow bool
	cache        *lru.Cache
}

// NewStore wraps idx's access-rule and access-policy buckets. defaultAllow
// is the decision used when no rule matches; spec.md calls this "allow,
// unless the collection is configured default-deny".
func NewStore(idx *index.Index, defaultAllow bool) (*Store, error) {
	cache, err := lru.New(4096)
	if err != nil {
		return nil, err
	}
	return &Store{idx: idx, defaultAllow: defaultAllow, cache: cache}, nil
}

func ruleKey(id uint64) []byte    { return []byte(fmt.Sprintf("%020d", id)) }
func policyKey(id uint64) []byte  { return []byte(fmt.Sprintf("%020d", id)) }

// PutRule creates (id==0) or replaces (id!=0) a rule, allocating a
// monotonic id on create.
func (s *Store) PutRule(r *Rule) (*Rule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.ID == 0 {
		id, err := s.idx.AllocateID("access-rule")
		if err != nil {
			return nil, err
		}
		r.ID = id
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	if err := s.idx.PutRaw(index.BucketAccessRule, ruleKey(r.ID), data); err != nil {
		return nil, err
	}
	s.cache.Purge()
	return r, nil
}

// GetRule fetches a rule by id.
func (s *Store) GetRule(id uint64) (*Rule, error) {
	data, err := s.idx.GetRaw(index.BucketAccessRule, ruleKey(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}
	var r Rule
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRules returns every rule in id order.
func (s *Store) ListRules() ([]*Rule, error) {
	var rules []*Rule
	err := s.idx.IterateBucket(index.BucketAccessRule, func(k, v []byte) bool {
		var r Rule
		if err := json.Unmarshal(v, &r); err == nil {
			rules = append(rules, &r)
		}
		return true
	})
	return rules, err
}

// DeleteRule removes a rule by id.
func (s *Store) DeleteRule(id uint64) error {
	if err := s.idx.DeleteRaw(index.BucketAccessRule, ruleKey(id)); err != nil {
		return err
	}
	s.cache.Purge()
	return nil
}

// PutPolicy creates (id==0) or replaces (id!=0) a policy, allocating a
// monotonic id on create.
func (s *Store) PutPolicy(p *Policy) (*Policy, error) {
	if p.ID == 0 {
		id, err := s.idx.AllocateID("access-policy")
		if err != nil {
			return nil, err
		}
		p.ID = id
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if err := s.idx.PutRaw(index.BucketAccessPolicy, policyKey(p.ID), data); err != nil {
		return nil, err
	}
	s.cache.Purge()
	return p, nil
}

// GetPolicy fetches a policy by id.
func (s *Store) GetPolicy(id uint64) (*Policy, error) {
	data, err := s.idx.GetRaw(index.BucketAccessPolicy, policyKey(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPolicies returns every policy in id order.
func (s *Store) ListPolicies() ([]*Policy, error) {
	var policies []*Policy
	err := s.idx.IterateBucket(index.BucketAccessPolicy, func(k, v []byte) bool {
		var p Policy
		if err := json.Unmarshal(v, &p); err == nil {
			policies = append(policies, &p)
		}
		return true
	})
	return policies, err
}

// DeletePolicy removes a policy by id.
func (s *Store) DeletePolicy(id uint64) error {
	if err := s.idx.DeleteRaw(index.BucketAccessPolicy, policyKey(id)); err != nil {
		return err
	}
	s.cache.Purge()
	return nil
}

// CheckAccess evaluates whether accessPoint may view a capture of url taken
// at captureTime, as of accessTime. It is a pure function of (rules,
// policies, url, captureTime, accessTime, accessPoint): same inputs, same
// decision.
func (s *Store) CheckAccess(accessPoint, rawURL string, captureTime, accessTime uint64) (Decision, error) {
	cacheKey := fmt.Sprintf("%s\x00%s\x00%d\x00%d", accessPoint, rawURL, captureTime, accessTime)
	if v, ok := s.cache.Get(cacheKey); ok {
		return v.(Decision), nil
	}

	d, err := s.evaluate(accessPoint, rawURL, captureTime, accessTime)
	if err != nil {
		return Decision{}, err
	}
	s.cache.Add(cacheKey, d)
	return d, nil
}

func (s *Store) evaluate(accessPoint, rawURL string, captureTime, accessTime uint64) (Decision, error) {
	u, err := canon.Canonicalize(rawURL)
	if err != nil {
		return Decision{}, err
	}
	ancestors := canon.AncestorPrefixes(u)
	ancestorSet := make(map[string]bool, len(ancestors))
	for _, p := range ancestors {
		ancestorSet[p] = true
	}

	rules, err := s.ListRules()
	if err != nil {
		return Decision{}, err
	}

	var candidates []*Rule
	for _, r := range rules {
		if !ruleMatchesPrefixes(r, ancestorSet) {
			continue
		}
		if r.HasCaptureWindow && (captureTime < r.CaptureStart || captureTime > r.CaptureEnd) {
			continue
		}
		if r.HasAccessWindow && (accessTime < r.AccessStart || accessTime > r.AccessEnd) {
			continue
		}
		candidates = append(candidates, r)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		as, bs := mostSpecificPrefixLen(a, ancestors), mostSpecificPrefixLen(b, ancestors)
		if as != bs {
			return as > bs
		}
		return a.ID < b.ID
	})

	if len(candidates) == 0 {
		return Decision{Allowed: s.defaultAllow}, nil
	}

	best := candidates[0]
	policy, err := s.GetPolicy(best.PolicyID)
	if err != nil {
		if err == ErrNotFound {
			// a rule pointing at a missing policy is a misconfiguration;
			// spec.md treats that as "deny".
			log.Errorf("rule %d references missing policy %d, denying", best.ID, best.PolicyID)
			return Decision{RuleID: best.ID, PolicyID: best.PolicyID, Allowed: false}, nil
		}
		return Decision{}, err
	}

	return Decision{
		RuleID:   best.ID,
		PolicyID: best.PolicyID,
		Allowed:  policy.allows(accessPoint),
	}, nil
}

// CheckAccessBulk applies CheckAccess independently to every element of checks.
func (s *Store) CheckAccessBulk(checks []Check) ([]Decision, error) {
	out := make([]Decision, len(checks))
	for i, c := range checks {
		d, err := s.CheckAccess(c.AccessPoint, c.URL, c.Timestamp, c.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("check %d (%s): %w", i, c.URL, err)
		}
		out[i] = d
	}
	return out, nil
}

// ruleMatchesPrefixes reports whether a global rule (no prefixes) or a rule
// with at least one prefix in the URL's ancestor chain applies.
func ruleMatchesPrefixes(r *Rule, ancestorSet map[string]bool) bool {
	if len(r.Prefixes) == 0 {
		return true
	}
	for _, p := range r.Prefixes {
		resolved, err := canon.ToSSURTPrefix(p)
		if err != nil {
			continue
		}
		if ancestorSet[resolved] {
			return true
		}
	}
	return false
}

// mostSpecificPrefixLen returns the longest byte length among a rule's
// prefixes that actually matched one of the URL's ancestor prefixes, used to
// break ties among non-pinned candidate rules.
func mostSpecificPrefixLen(r *Rule, ancestors []string) int {
	if len(r.Prefixes) == 0 {
		return 0
	}
	best := 0
	for _, p := range r.Prefixes {
		resolved, err := canon.ToSSURTPrefix(p)
		if err != nil {
			continue
		}
		for _, a := range ancestors {
			if resolved == a && len(resolved) > best {
				best = len(resolved)
			}
		}
	}
	return best
}

// ResourceStringFromPrefixes renders a rule's prefixes for display, one
// small convenience the CLI `access rules` subcommand uses.
func ResourceStringFromPrefixes(prefixes []string) string {
	return strings.Join(prefixes, ", ")
}
