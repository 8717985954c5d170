package urlwasher

import (
	"sync"

	"github.com/armon/go-radix"
)

// RuleTable is an immutable, ordered set of rules. Lookups return the first
// rule, in declaration order, matching both domain and path.
type RuleTable struct {
	rules []*Rule
	// domain -> []int, indexes into rules in ascending order. Rules name
	// exact hosts, so only Get is used, never prefix walks.
	domains *radix.Tree
}

var (
	defaultRules     *RuleTable
	defaultRulesOnce sync.Once
)

// DefaultRules returns the built-in rule table. It is built on first use and
// shared by every caller.
func DefaultRules() *RuleTable {
	defaultRulesOnce.Do(func() {
		defaultRules = NewRuleTable(
			&Rule{
				Name:     "youtu.be",
				Domains:  []string{"youtu.be"},
				Programs: []Program{RemoveParams("si")},
			},
			&Rule{
				Name:     "youtube.com & music.youtube.com",
				Domains:  []string{"youtube.com", "www.youtube.com", "music.youtube.com"},
				Programs: []Program{RemoveParams("si")},
			},
			&Rule{
				Name:     "twitter.com",
				Domains:  []string{"twitter.com", "x.com"},
				Programs: []Program{RemoveAllParams()},
			},
			&Rule{
				Name:     "vm.tiktok.com",
				Domains:  []string{"vm.tiktok.com"},
				Programs: []Program{ResolveRedirection(), RemoveAllParams()},
			},
			&Rule{
				Name:     "on.soundcloud.com",
				Domains:  []string{"on.soundcloud.com"},
				Programs: []Program{ResolveRedirection(), RemoveAllParams()},
			},
		)
	})
	return defaultRules
}

// NewRuleTable builds a table from rules, keeping their order.
func NewRuleTable(rules ...*Rule) *RuleTable {
	t := &RuleTable{
		rules:   rules,
		domains: radix.New(),
	}
	for i, r := range rules {
		for _, domain := range r.Domains {
			var indexes []int
			if existing, ok := t.domains.Get(domain); ok {
				indexes = existing.([]int)
			}
			// A rule listing the same domain twice is indexed once.
			if n := len(indexes); n > 0 && indexes[n-1] == i {
				continue
			}
			t.domains.Insert(domain, append(indexes, i))
		}
	}
	return t
}

// Match returns the first rule naming domain whose path pattern matches the
// escaped path.
func (t *RuleTable) Match(domain, path string) (*Rule, bool) {
	candidates, ok := t.domains.Get(domain)
	if !ok {
		return nil, false
	}
	for _, i := range candidates.([]int) {
		if r := t.rules[i]; r.matchesPath(path) {
			return r, true
		}
	}
	return nil, false
}

// Rules returns the rules in declaration order.
func (t *RuleTable) Rules() []*Rule {
	rules := make([]*Rule, len(t.rules))
	copy(rules, t.rules)
	return rules
}
