package transform

import (
	"context"
	"path"
	"regexp"
	"sort"
	"strings"
)

// Rule is one regexp substitution. Replace is used literally.
type Rule struct {
	Pattern *regexp.Regexp
	Replace string
}

// NewRule compiles pattern into a Rule.
func NewRule(pattern, replace string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Replace: replace}
}

// CutBlockRule removes every {{CUT-START}}...{{CUT-END}} span, delimiters
// included. Spans may cross lines and match lazily.
func CutBlockRule() Rule {
	return NewRule(`(?s)\{\{CUT-START\}\}.+?\{\{CUT-END\}\}`, "")
}

// PlaceholderRules returns one rule per {{KEY}} placeholder, in key order.
func PlaceholderRules(values map[string]string) []Rule {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := make([]Rule, 0, len(keys))
	for _, k := range keys {
		rules = append(rules, NewRule(regexp.QuoteMeta("{{"+k+"}}"), values[k]))
	}
	return rules
}

// Substitute applies rules in order, each to every match.
func Substitute(rules ...Rule) Func {
	return func(ctx context.Context, c *Content) error {
		for _, r := range rules {
			c.Data = r.Pattern.ReplaceAllLiteral(c.Data, []byte(r.Replace))
		}
		return nil
	}
}

// Header prepends text to the content.
func Header(text string) Func {
	return func(ctx context.Context, c *Content) error {
		out := make([]byte, 0, len(text)+len(c.Data))
		out = append(out, text...)
		c.Data = append(out, c.Data...)
		return nil
	}
}

// Suffix inserts suffix before the extension: styles.css becomes
// styles.min.css with ".min".
func Suffix(suffix string) Func {
	return func(ctx context.Context, c *Content) error {
		dir, base := path.Split(c.Rel)
		ext := path.Ext(base)
		c.Rel = dir + strings.TrimSuffix(base, ext) + suffix + ext
		return nil
	}
}

// RenameTo replaces the base name and keeps the directory.
func RenameTo(name string) Func {
	return func(ctx context.Context, c *Content) error {
		dir, _ := path.Split(c.Rel)
		c.Rel = dir + name
		return nil
	}
}
