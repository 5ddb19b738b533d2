// Package queue holds the pages a worker pool consumes.
//
// Memory serves a single process. Redis keeps the pages in a list so that
// "wikibot enqueue" can fill it once and several "wikibot run" processes can
// drain it.
package queue
