// Package template provides a Handlebars template engine for rendering edit
// summaries and report pages.
//
// The engine supports Handlebars syntax with custom helpers for common operations.
// Handlebars escapes HTML in {{value}}; wiki output should use {{{value}}} or a
// helper that returns a SafeString.
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	data := map[string]interface{}{
//	    "template": "Infobox person",
//	    "changes":  []string{"renamed occupation_now", "removed 2 empty parameters"},
//	}
//
//	summary, err := engine.Render("bot: {{template}}: {{join changes \"; \"}}", data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// bot: Infobox person: renamed occupation_now; removed 2 empty parameters
//
// Built-in helpers:
//   - uppercase - Convert string to uppercase
//   - lowercase - Convert string to lowercase
//   - trim - Trim whitespace from string
//   - default - Return default value if first arg is empty
//   - eq - Equality comparison
//   - ne - Inequality comparison
//   - gt - Greater than (for numbers)
//   - lt - Less than (for numbers)
//   - contains - Check if string contains substring
//   - join - Join list elements with separator
//   - len - Get length of list/string/map
//   - wikilink - Render [[Title]], or [[Title|label]] with label=...
//
// Example with helpers:
//
//	{{uppercase name}}                     # "JOHN"
//	{{default value "N/A"}}                # "N/A" if value is empty
//	{{#if (eq status "active")}}...{{/if}} # Conditional
//	{{join items ", "}}                    # "a, b, c"
//	{{wikilink title label="here"}}        # "[[Title|here]]"
package template
