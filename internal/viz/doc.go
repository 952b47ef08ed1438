// Package viz styles terminal output of the sdofsim commands.
//
// Headings, key/value summaries, pass/fail verdicts and sparklines are
// rendered with lipgloss using the colours of the current [Theme].
package viz
