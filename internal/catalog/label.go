package catalog

import (
	"regexp"
	"strings"
)

// Food names in the composition table carry reading guides and variant
// qualifiers in full-width brackets, e.g. "こむぎ ［小麦粉］ 強力粉".
// The label is the name with those segments stripped, used for compact
// display in shopping lists.
var fullWidthBracketRe = regexp.MustCompile(`［[^］]*］|（[^）]*）|＜[^＞]*＞`)

// MakeLabel derives a display label from a raw food name.
func MakeLabel(name string) string {
	s := fullWidthBracketRe.ReplaceAllString(name, "")
	s = strings.ReplaceAll(s, "　", " ")
	return strings.TrimSpace(s)
}
