// Package tasks loads bot task files and applies them to pages.
//
// A task file is YAML. Each rule names a template (plus aliases tried when it
// is absent), optional scan flags, an optional CEL condition and a list of
// actions:
//
//	name: infobox-person
//	summary: "bot: {{join changes \", \"}}"
//	rules:
//	  - template: Infobox person
//	    scan: {multi: true}
//	    when: 'template.params.occupation_now != ""'
//	    actions:
//	      - rename: {from: occupation_now, to: occupation}
//	      - remove_empty: true
//
// Rules run in order against the text left by the previous rule. Actions edit
// the template's source text in place, so whitespace the actions do not touch
// is kept.
package tasks
