// Package report keeps the log of a bot run and publishes it as a wiki page
// with sections for errors, warnings and successful edits.
package report
