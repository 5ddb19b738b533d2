// Package wiki reads pages from and writes pages to a MediaWiki API.
//
// Pages are selected by a Generator (category members, pages embedding a
// template, or explicit titles) and come back with the id and wikitext of
// their latest revision. Edits carry that revision id as baserevid so the
// server can detect conflicts.
//
// Example usage:
//
//	client, err := wiki.NewClient("https://en.wikipedia.org/w/api.php", "ExampleBot/1.0 (bot@example.org)", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Login(ctx, "ExampleBot@task", password); err != nil {
//	    log.Fatal(err)
//	}
//
//	pages, err := client.Pages(ctx, wiki.Generator{EmbeddedIn: "Infobox person"})
//	...
//	res, err := client.Edit(ctx, wiki.EditRequest{
//	    Title:     page.Title,
//	    Text:      newText,
//	    BaseRevID: page.RevID,
//	    Summary:   "bot: tidy infobox",
//	    NoCreate:  true,
//	    Bot:       true,
//	})
package wiki
