package locale

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Sources collects raw locale tags from the host environment in rank order.
// The zero value reads nothing; use FromEnv for the process environment.
type Sources struct {
	// Override is an explicit, user-configured preference list ranked above everything else
	Override []string

	// Getenv looks up environment variables. nil disables environment sources.
	Getenv func(string) string
}

// FromEnv returns Sources backed by the process environment
func FromEnv(override ...string) Sources {
	return Sources{
		Override: override,
		Getenv:   os.Getenv,
	}
}

// Tags returns the raw tags in rank order: override list, LANGUAGE (colon
// separated), LC_ALL, LC_MESSAGES, LANG. Duplicates are left for
// FallbackChain to drop.
func (s Sources) Tags() []string {
	var tags []string
	for _, tag := range s.Override {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	if s.Getenv == nil {
		return tags
	}

	for _, tag := range strings.Split(s.Getenv("LANGUAGE"), ":") {
		if tag = posixTag(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if tag := posixTag(s.Getenv(key)); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// Chain is a shorthand for FallbackChain(s.Tags())
func (s Sources) Chain() []string {
	return FallbackChain(s.Tags())
}

// posixTag strips the encoding and modifier of a POSIX locale name such as
// "zh_TW.UTF-8@stroke". The C and POSIX locales carry no language.
func posixTag(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	switch v {
	case "C", "POSIX":
		return ""
	}
	return v
}

// ParseAcceptLanguage returns the tags of an Accept-Language header ordered
// by quality. Malformed headers yield no tags.
func ParseAcceptLanguage(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return nil
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == language.Und {
			continue
		}
		out = append(out, tag.String())
	}
	return out
}

// Validate reports whether tag is a well-formed BCP 47 tag
func Validate(tag string) error {
	_, err := language.Parse(Normalize(tag))
	return err
}
