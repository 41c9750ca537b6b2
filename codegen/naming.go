package codegen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GoName turns a label or IRI local name into an exported Go identifier:
// words split on anything that is not a letter or digit, each word
// title-cased with the rest kept as is.
func GoName(s string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		b.WriteString(title.String(w))
	}
	name := b.String()
	if name == "" {
		return ""
	}
	if r := []rune(name)[0]; !unicode.IsLetter(r) {
		return "N" + name
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	out := string(r)
	if token.IsKeyword(out) {
		return out + "_"
	}
	return out
}

// namer hands out identifiers that are unique within one scope. Names are
// compared case-insensitively so derived file names stay unique too.
type namer struct {
	taken map[string]bool
}

func newNamer(reserved ...string) *namer {
	n := &namer{taken: make(map[string]bool)}
	for _, r := range reserved {
		n.taken[strings.ToLower(r)] = true
	}
	return n
}

// claim returns base, or base with the smallest numeric suffix from 2 up,
// such that every derived name is still free, and reserves them all.
func (n *namer) claim(base string, derived ...func(string) string) string {
	for i := 1; ; i++ {
		name := base
		if i > 1 {
			name = base + strconv.Itoa(i)
		}
		all := []string{name}
		for _, d := range derived {
			all = append(all, d(name))
		}
		if n.free(all) {
			for _, a := range all {
				n.taken[strings.ToLower(a)] = true
			}
			return name
		}
	}
}

func (n *namer) free(names []string) bool {
	for _, a := range names {
		if n.taken[strings.ToLower(a)] {
			return false
		}
	}
	return true
}
