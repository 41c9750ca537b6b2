package codegen

import (
	stderrors "errors"
	"fmt"
	"go/token"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/c360studio/semschema/schema"
	"golang.org/x/mod/modfile"
)

// ErrNoModule is returned by DetectModule when no go.mod encloses the
// directory.
var ErrNoModule = stderrors.New("no enclosing go.mod")

// ResolveNamespace returns the import path for the package holding the
// class identified by iri.
func ResolveNamespace(cfg Config, iri string) string {
	cfg = cfg.withDefaults()
	rel, ok := cfg.alias(iri)
	if !ok {
		rel = mapIRI(cfg.Mapping, iri)
	}
	return joinImport(cfg.BaseNamespace, rel)
}

// PackageName derives a Go package name from the last element of an
// import path.
func PackageName(importPath string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(path.Base(importPath)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	switch {
	case name == "":
		return "model"
	case unicode.IsDigit(rune(name[0])):
		return "v" + name
	case token.IsKeyword(name):
		return name + "pkg"
	}
	return name
}

// ResolveOutputRoot strips from dir the longest leading part of the base
// namespace it ends with, on whole path elements. Without an overlap dir is
// returned unchanged.
func ResolveOutputRoot(dir, base string) string {
	dir = filepath.Clean(dir)
	if base == "" {
		return dir
	}
	segs := strings.Split(strings.Trim(base, "/"), "/")
	for i := len(segs); i > 0; i-- {
		portion := filepath.Join(segs[:i]...)
		if dir == portion {
			return "."
		}
		if strings.HasSuffix(dir, string(filepath.Separator)+portion) {
			root := strings.TrimSuffix(dir, portion)
			if root != string(filepath.Separator) {
				root = strings.TrimSuffix(root, string(filepath.Separator))
			}
			return root
		}
	}
	return dir
}

// DetectModule walks up from dir to the nearest go.mod and returns its
// module path together with the directory containing it.
func DetectModule(dir string) (modulePath, moduleDir string, err error) {
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	for {
		data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		switch {
		case err == nil:
			mp := modfile.ModulePath(data)
			if mp == "" {
				return "", "", fmt.Errorf("go.mod in %s has no module directive", dir)
			}
			return mp, dir, nil
		case !stderrors.Is(err, os.ErrNotExist):
			return "", "", fmt.Errorf("read go.mod: %w", err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", ErrNoModule
		}
		dir = parent
	}
}

// layout places import paths below the base namespace on disk.
type layout struct {
	base    string
	baseDir string
}

func (l layout) dir(importPath string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(importPath, l.base), "/")
	return filepath.Join(l.baseDir, filepath.FromSlash(rel))
}

// resolveLayout fixes the effective base namespace and the directory it
// maps to for an output directory.
func resolveLayout(cfg Config, outDir string) (layout, error) {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return layout{}, err
	}
	if cfg.BaseNamespace != "" {
		root := ResolveOutputRoot(abs, cfg.BaseNamespace)
		return layout{
			base:    cfg.BaseNamespace,
			baseDir: filepath.Join(root, filepath.FromSlash(cfg.BaseNamespace)),
		}, nil
	}

	mod, modDir, err := DetectModule(abs)
	if stderrors.Is(err, ErrNoModule) {
		return layout{baseDir: abs}, nil
	}
	if err != nil {
		return layout{}, err
	}
	rel, err := filepath.Rel(modDir, abs)
	if err != nil {
		return layout{}, err
	}
	return layout{base: joinImport(mod, filepath.ToSlash(rel)), baseDir: abs}, nil
}

// mapIRI applies a mapping to the namespace part of iri.
func mapIRI(m Mapping, iri string) string {
	if m == MappingFlat {
		return ""
	}
	ns := strings.TrimSuffix(iri, schema.LocalName(iri))
	ns = strings.TrimRight(ns, "#/:")

	u, err := url.Parse(ns)
	if err != nil || (u.Host == "" && u.Opaque == "") {
		return strings.Join(cleanSegments(strings.FieldsFunc(ns, isIRISeparator)), "/")
	}
	if u.Opaque != "" {
		return strings.Join(cleanSegments(strings.Split(u.Opaque, ":")), "/")
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	var segs []string
	if m == MappingHostPath {
		segs = append(segs, host)
	} else {
		labels := strings.Split(host, ".")
		slices.Reverse(labels)
		segs = append(segs, labels...)
	}
	segs = append(segs, strings.Split(strings.Trim(u.Path, "/"), "/")...)
	return strings.Join(cleanSegments(segs), "/")
}

func isIRISeparator(r rune) bool {
	return r == '/' || r == '#' || r == ':'
}

// cleanSegments lowercases path elements, replaces characters that do not
// belong in an import path and drops empty elements.
func cleanSegments(segs []string) []string {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		s = strings.Map(func(r rune) rune {
			r = unicode.ToLower(r)
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
				return r
			}
			return '_'
		}, s)
		s = strings.Trim(s, "._-")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinImport(base, rel string) string {
	switch {
	case base == "" || base == ".":
		return rel
	case rel == "" || rel == ".":
		return base
	}
	return path.Join(base, rel)
}
