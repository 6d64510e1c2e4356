package ui

import "regexp"

var sgr = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripANSI drops color escapes so assertions see plain text.
func stripANSI(s string) string {
	return sgr.ReplaceAllString(s, "")
}
