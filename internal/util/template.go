package util

import "regexp"

var (
	jinjaVarPattern     = regexp.MustCompile(`\{\{[^}]*\}\}`)
	jinjaBlockPattern   = regexp.MustCompile(`(?m)^[ \t]*\{%[^%]*%\}[ \t]*\n?`)
	jinjaCommentPattern = regexp.MustCompile(`\{#[^#]*#\}`)
)

// Placeholder replaces Jinja2 expressions in stripped templates.
const Placeholder = "PLACEHOLDER"

// StripJinja2 turns an Ansible-style Compose template into plain YAML:
// {{ expr }} becomes Placeholder, {% tag %} lines and {# comments #} are
// removed.
func StripJinja2(content string) string {
	content = jinjaCommentPattern.ReplaceAllString(content, "")
	content = jinjaBlockPattern.ReplaceAllString(content, "")
	return jinjaVarPattern.ReplaceAllString(content, Placeholder)
}
