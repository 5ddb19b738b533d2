package wikitext

import (
	"strings"
)

// MaxNestingDepth bounds how deep ExtractNested recurses into child templates.
const MaxNestingDepth = 512

// Extract parses the template starting at pos and returns it together with the
// offset just past its closing "}}". Templates inside parameter values are
// kept as plain text.
func Extract(text string, pos int) (*Template, int, error) {
	e := extractor{text: text}
	return e.template(pos, 0)
}

// ExtractNested is Extract, but every template found inside a parameter value
// is parsed as well and appended to the parent's Nested list.
func ExtractNested(text string, pos int) (*Template, int, error) {
	e := extractor{text: text, nested: true}
	return e.template(pos, 0)
}

type extractor struct {
	text   string
	nested bool
}

// at returns the byte at i, or 0 past either end of the text.
func (e *extractor) at(i int) byte {
	if i < 0 || i >= len(e.text) {
		return 0
	}
	return e.text[i]
}

func (e *extractor) closesAt(i int) bool {
	return e.at(i) == '}' && e.at(i+1) == '}'
}

func (e *extractor) template(pos, depth int) (*Template, int, error) {
	if pos < 0 || pos+1 >= len(e.text) {
		return nil, pos, failAt(pos, ErrPosition)
	}
	if e.text[pos] != '{' || e.text[pos+1] != '{' {
		return nil, pos, failAt(pos, ErrInvalidStart)
	}
	if depth > MaxNestingDepth {
		return nil, pos, failAt(pos, ErrTooDeep)
	}
	origin := pos
	pos += 2
	if pos >= len(e.text) {
		return nil, pos, failAt(pos, ErrPosition)
	}

	var full strings.Builder
	full.WriteString("{{")

	nameStart := pos
	for pos < len(e.text) {
		c := e.text[pos]
		if c == '|' || c == '}' || c == '\n' {
			break
		}
		pos++
	}
	full.WriteString(e.text[nameStart:pos])
	name := strings.TrimSpace(e.text[nameStart:pos])
	if name == "" {
		return nil, pos, failAt(origin, ErrNoName)
	}
	t := newTemplate(name, e.nested)

	for !e.closesAt(pos) {
		if pos >= len(e.text) {
			return nil, pos, failAt(origin, ErrUnclosed)
		}
		switch e.text[pos] {
		case '\n', ' ':
			full.WriteByte(e.text[pos])
			pos++
		case '|':
			seg := segment{start: pos - origin, eq: -1}
			full.WriteByte('|')
			pos++
			level := 0

			key, next, err := e.segment(pos, depth, &level, &full, t, true)
			if err != nil {
				return nil, next, err
			}
			pos = next
			if e.at(pos) != '=' {
				t.Anonymous = append(t.Anonymous, strings.TrimSpace(key))
				seg.end = pos - origin
				t.segments = append(t.segments, seg)
				continue
			}

			seg.eq = pos - origin
			full.WriteByte('=')
			pos++
			value, next, err := e.segment(pos, depth, &level, &full, t, false)
			if err != nil {
				return nil, next, err
			}
			pos = next
			seg.end = pos - origin

			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			if key == "" {
				t.Anonymous = append(t.Anonymous, value)
			} else {
				t.Params.Add(key, value)
				seg.name = key
			}
			t.segments = append(t.segments, seg)
		default:
			return nil, pos, failAt(origin, ErrUnclosed)
		}
	}

	full.WriteString("}}")
	t.FullText = full.String()
	return t, pos + 2, nil
}

// segment consumes a parameter name (stopAtEq) or value until a terminator
// at nesting level zero: "|", "}}", and for names also "=". Link and template
// brackets inside the segment move the level so their pipes and braces do
// not end it early.
func (e *extractor) segment(pos, depth int, level *int, full *strings.Builder, t *Template, stopAtEq bool) (string, int, error) {
	var b strings.Builder
	for {
		if pos >= len(e.text) {
			return "", pos, failAt(pos, ErrUnclosed)
		}
		c, next := e.text[pos], e.at(pos+1)
		if *level <= 0 && (c == '|' || (stopAtEq && c == '=') || (c == '}' && next == '}')) {
			return b.String(), pos, nil
		}

		switch {
		case c == '{' && next == '{' && e.nested:
			child, end, err := e.template(pos, depth+1)
			if err != nil {
				return "", end, err
			}
			if end <= pos {
				return "", pos, failAt(pos, ErrNoProgress)
			}
			t.Nested = append(t.Nested, child)
			b.WriteString(child.FullText)
			full.WriteString(child.FullText)
			pos = end
		case (c == '{' && next == '{') || (c == '[' && next == '['):
			*level++
			b.WriteString(e.text[pos : pos+2])
			full.WriteString(e.text[pos : pos+2])
			pos += 2
		case (c == ']' && next == ']') || (c == '}' && next == '}' && !e.nested):
			*level--
			b.WriteString(e.text[pos : pos+2])
			full.WriteString(e.text[pos : pos+2])
			pos += 2
		default:
			b.WriteByte(c)
			full.WriteByte(c)
			pos++
		}
	}
}
