// Package cel provides a CEL (Common Expression Language) evaluator for task
// rule conditions.
//
// CEL is a non-Turing complete expression language that provides fast, safe evaluation
// of conditions deciding whether a rule applies to a scanned template.
//
// Two variables are declared:
//
//	template  map: name (string), params (map of string to string, repeated
//	          values joined with "|"), anonymous (list of string)
//	page      map: title (string), rev_id (int)
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	vars := map[string]interface{}{
//	    "template": map[string]interface{}{
//	        "name":      "Infobox person",
//	        "params":    map[string]string{"born": "1900"},
//	        "anonymous": []string{},
//	    },
//	    "page": map[string]interface{}{"title": "Ada Lovelace", "rev_id": 42},
//	}
//
//	matched, err := evaluator.EvaluateBool(ctx, "!has(template.params.died)", vars)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Supported operations:
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - String operations: contains, startsWith, endsWith, matches
//   - Presence: has(template.params.x)
//   - List operations: in, size
//   - Map access: template.params.field, template.params["field name"]
package cel
