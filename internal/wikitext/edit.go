package wikitext

import (
	"fmt"
	"strings"
	"unicode"
)

// Layout controls how Render lays out parameters.
type Layout int

const (
	// Inline renders {{Name|a|k=v}}.
	Inline Layout = iota
	// Block renders one parameter per line, closing braces on their own line.
	Block
)

// ParseLayout maps "inline" and "block" to a Layout. Empty means Inline.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inline":
		return Inline, nil
	case "block":
		return Block, nil
	default:
		return Inline, fmt.Errorf("unknown layout %q", s)
	}
}

// Render builds a fresh invocation from Name, Anonymous and Params. Anonymous
// parameters come first; a repeated parameter is written once per value.
func (t *Template) Render(layout Layout) string {
	sep := "|"
	if layout == Block {
		sep = "\n|"
	}

	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(t.Name)
	for _, a := range t.Anonymous {
		b.WriteString(sep)
		b.WriteString(a)
	}
	t.Params.Each(func(name string, v Value) {
		for _, s := range v.Strings() {
			b.WriteString(sep)
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(s)
		}
	})
	if layout == Block {
		b.WriteByte('\n')
	}
	b.WriteString("}}")
	return b.String()
}

// ReplaceTemplate replaces the first literal occurrence of old in text with
// repl. It reports false when old is not in text or the text would not change,
// which is how callers detect a FullText that no longer matches the page.
func ReplaceTemplate(text, old, repl string) (string, bool) {
	if old == "" || old == repl {
		return text, false
	}
	i := strings.Index(text, old)
	if i < 0 {
		return text, false
	}
	return text[:i] + repl + text[i+len(old):], true
}

func (t *Template) findSegment(name string) (segment, bool) {
	for _, s := range t.segments {
		if s.name == name && s.eq >= 0 {
			return s, true
		}
	}
	return segment{}, false
}

// RemoveParam returns FullText without the first occurrence of the named
// parameter, including the whitespace that followed its value.
func (t *Template) RemoveParam(name string) (string, bool) {
	s, ok := t.findSegment(name)
	if !ok {
		return t.FullText, false
	}
	return t.FullText[:s.start] + t.FullText[s.end:], true
}

// RenameParam returns FullText with the first occurrence of from renamed to
// to. Whitespace around the name and the value are untouched.
func (t *Template) RenameParam(from, to string) (string, bool) {
	s, ok := t.findSegment(from)
	if !ok || from == to {
		return t.FullText, false
	}
	raw := t.FullText[s.start+1 : s.eq]
	keyStart := s.start + 1 + len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	keyEnd := keyStart + len(strings.TrimSpace(raw))
	return t.FullText[:keyStart] + to + t.FullText[keyEnd:], true
}

// SetParam returns FullText with the named parameter set to value. An existing
// parameter keeps its surrounding whitespace; a new one is appended before the
// closing braces, on its own line when the template is laid out in lines.
func (t *Template) SetParam(name, value string) string {
	if s, ok := t.findSegment(name); ok {
		raw := t.FullText[s.eq+1 : s.end]
		var repl string
		if strings.TrimSpace(raw) == "" {
			repl = value + raw
		} else {
			lead := raw[:len(raw)-len(strings.TrimLeftFunc(raw, unicode.IsSpace))]
			trail := raw[len(strings.TrimRightFunc(raw, unicode.IsSpace)):]
			repl = lead + value + trail
		}
		return t.FullText[:s.eq+1] + repl + t.FullText[s.end:]
	}

	body := strings.TrimSuffix(t.FullText, "}}")
	param := "|" + name + "=" + value
	if strings.HasSuffix(body, "\n") {
		return body + param + "\n}}"
	}
	return body + param + "}}"
}
