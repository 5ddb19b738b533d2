// Package wikidata looks up items and their claims on a Wikibase API so task
// rules can fill template parameters from structured data.
//
// Example usage:
//
//	wd, err := wikidata.NewClient("https://www.wikidata.org/w/api.php", "enwiki", userAgent, logger)
//	if err != nil {
//	    return err
//	}
//
//	entity, claims, err := wd.ClaimsForPage(ctx, page.Title, page.Wikitext, "item")
//	if err != nil {
//	    return err
//	}
//	lat, ok := claims.Get("P625", wikidata.PartLatitude)
package wikidata
