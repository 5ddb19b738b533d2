package wikitext

import (
	"strings"
)

// Options selects which templates Scan returns.
type Options struct {
	// Name keeps only templates with this exact (trimmed) name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Nested parses templates inside parameter values and lets Name match them.
	Nested bool `json:"nested,omitempty" yaml:"nested,omitempty"`

	// Multi keeps every match instead of stopping at the first one.
	Multi bool `json:"multi,omitempty" yaml:"multi,omitempty"`
}

const (
	commentOpen  = "<!--"
	commentClose = "-->"
	mathOpen     = "<math>"
	mathClose    = "</math>"
)

// Scan returns the templates in text selected by opts, in source order.
//
// Without a name every top-level template is returned. With a name:
//   - flat, single: the first matching top-level template, then stop
//   - flat, multi: every matching top-level template
//   - nested, single: the first match in depth-first order (a template before
//     its children), then stop
//   - nested, multi: every match in each template tree, children before the
//     template containing them
func Scan(text string, opts Options) ([]*Template, error) {
	name := strings.TrimSpace(opts.Name)
	extract := Extract
	if opts.Nested {
		extract = ExtractNested
	}

	var templates []*Template
	inComment, inMath := false, false
	for i := 0; i < len(text); {
		switch {
		case !inComment && !inMath && strings.HasPrefix(text[i:], commentOpen):
			inComment = true
			i += len(commentOpen)
			continue
		case inComment && strings.HasPrefix(text[i:], commentClose):
			inComment = false
			i += len(commentClose)
			continue
		case !inComment && !inMath && strings.HasPrefix(text[i:], mathOpen):
			inMath = true
			i += len(mathOpen)
			continue
		case inMath && strings.HasPrefix(text[i:], mathClose):
			inMath = false
			i += len(mathClose)
			continue
		}
		if inComment || inMath || !strings.HasPrefix(text[i:], "{{") {
			i++
			continue
		}

		t, end, err := extract(text, i)
		if err != nil {
			return nil, err
		}
		if end <= i {
			i++
		} else {
			i = end
		}

		switch {
		case name == "":
			templates = append(templates, t)
		case !opts.Nested:
			if t.Name != name {
				continue
			}
			templates = append(templates, t)
			if !opts.Multi {
				return templates, nil
			}
		case !opts.Multi:
			if found := FindFirstByName(t, name); found != nil {
				return []*Template{found}, nil
			}
		default:
			templates = FlattenByName(t, name, templates)
		}
	}
	return templates, nil
}

// FindFirstByName searches t and its nested templates depth first, checking
// each template before its children, and returns the first one called name.
func FindFirstByName(t *Template, name string) *Template {
	if t == nil {
		return nil
	}
	if t.Name == name {
		return t
	}
	for _, child := range t.Nested {
		if found := FindFirstByName(child, name); found != nil {
			return found
		}
	}
	return nil
}

// FlattenByName appends to acc every template in the tree rooted at t whose
// name matches, children before their parent. An empty name matches all.
func FlattenByName(t *Template, name string, acc []*Template) []*Template {
	if t == nil {
		return acc
	}
	for _, child := range t.Nested {
		acc = FlattenByName(child, name, acc)
	}
	if name != "" && t.Name != name {
		return acc
	}
	return append(acc, t)
}
