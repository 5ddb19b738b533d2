// Package wikitext locates and parses template invocations in MediaWiki markup.
//
// A template is a {{name|param=value|anonymous}} block. The scanner walks the
// text once with a byte cursor, skips <!-- comments --> and <math> spans, and
// returns one record per template with its name, its named parameters in
// first-occurrence order, its anonymous parameters, and the exact source text
// it was read from. The input string is never modified; callers edit a page by
// replacing a record's FullText with new text.
//
// Example usage:
//
//	templates, err := wikitext.Scan(page, wikitext.Options{Name: "Infobox person"})
//	if err != nil {
//	    return err
//	}
//	for _, t := range templates {
//	    born := t.Params.Get("birth_date").String()
//	    ...
//	}
//
// Nested mode also parses templates found inside parameter values and attaches
// them to their parent:
//
//	templates, _ := wikitext.Scan("{{Outer|x={{Inner|y=1}}}}", wikitext.Options{Nested: true})
//	inner := templates[0].Nested[0] // {{Inner|y=1}}
//
// Name-filtered scans stop at the first match unless Multi is set. With both
// Nested and Multi, matches are flattened children first.
//
// Scan and extraction failures are *ScanError values wrapping one of the
// sentinel errors (ErrPosition, ErrInvalidStart, ErrNoName, ErrUnclosed,
// ErrNoProgress, ErrTooDeep), so callers can use errors.Is to tell malformed
// pages apart from programming mistakes. OptionsFromMap reads no text and
// returns a plain error wrapping ErrInvalidOptions.
package wikitext
