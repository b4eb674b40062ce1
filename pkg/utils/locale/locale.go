package locale

import (
	"sort"
	"strings"
)

var (
	simplifiedChinese  = []string{"hans", "cn", "sg"}
	traditionalChinese = []string{"hant", "tw", "hk", "mo"}
)

// Normalize trims whitespace, replaces "_" with "-" and lowercases the tag.
// An empty result means the tag is unusable.
func Normalize(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}

// chain is an insertion-ordered set of normalized tags
type chain struct {
	tags []string
	seen map[string]struct{}
}

func newChain() *chain {
	return &chain{seen: make(map[string]struct{})}
}

func (c *chain) add(tag string) {
	if tag == "" {
		return
	}
	if _, ok := c.seen[tag]; ok {
		return
	}
	c.seen[tag] = struct{}{}
	c.tags = append(c.tags, tag)
}

// FallbackChain expands ranked raw tags into a deduplicated list of
// normalized tags, most specific first. A tag emitted for an earlier source
// is never repeated for a later one.
func FallbackChain(sources []string) []string {
	c := newChain()
	for _, src := range sources {
		for _, tag := range candidates(src) {
			c.add(tag)
		}
	}
	return c.tags
}

// candidates returns the fallback tags for one raw tag
func candidates(raw string) []string {
	normalized := Normalize(raw)
	if normalized == "" {
		return nil
	}

	c := newChain()
	c.add(normalized)

	parts := strings.Split(normalized, "-")
	primary := parts[0]

	if primary == "zh" {
		for end := len(parts) - 1; end > 1; end-- {
			c.add(strings.Join(parts[:end], "-"))
		}

		subtags := parts[1:]
		if containsAny(subtags, simplifiedChinese) {
			c.add("zh-hans")
			c.add("zh-cn")
		}
		if containsAny(subtags, traditionalChinese) {
			c.add("zh-hant")
			c.add("zh-tw")
			c.add("zh-hk")
		}
		c.add("zh")
		return c.tags
	}

	// Every shorter prefix down to the bare primary subtag
	for end := len(parts) - 1; end >= 1; end-- {
		c.add(strings.Join(parts[:end], "-"))
	}
	return c.tags
}

func containsAny(subtags, set []string) bool {
	for _, s := range subtags {
		for _, v := range set {
			if s == v {
				return true
			}
		}
	}
	return false
}

// ResolveText picks the value of texts whose normalized key comes first in
// preferences. It falls back to "en", then to any value, then to "".
func ResolveText(texts map[string]string, preferences []string) string {
	if len(texts) == 0 {
		return ""
	}

	// Sorting raw keys makes the winner among colliding keys and the final
	// arbitrary fallback stable across calls.
	keys := make([]string, 0, len(texts))
	for k := range texts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	normalized := make(map[string]string, len(texts))
	var first string
	for _, k := range keys {
		nk := Normalize(k)
		if nk == "" {
			continue
		}
		if _, ok := normalized[nk]; ok {
			continue
		}
		normalized[nk] = texts[k]
		if first == "" {
			first = texts[k]
		}
	}

	for _, pref := range preferences {
		if v, ok := normalized[Normalize(pref)]; ok {
			return v
		}
	}

	if v, ok := normalized["en"]; ok {
		return v
	}

	if first != "" {
		return first
	}
	// Only blank keys, or only empty values
	for _, k := range keys {
		if texts[k] != "" {
			return texts[k]
		}
	}
	return ""
}
