package codegen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/c360studio/semschema/schema"
	vocab "github.com/c360studio/semschema/vocabulary/schema"
)

// Model is the read side of a closed schema the emitter needs.
// *schema.Materializer implements it.
type Model interface {
	DistinctClasses() []schema.ClassDescriptor
	Properties() []schema.PropertyDescriptor
	Class(iri string) (schema.ClassDescriptor, bool)
	Ancestors(iri string) []string
}

// classPlan is everything the templates need for one class.
type classPlan struct {
	IRI        string
	Name       string
	Doc        string
	Package    string
	ImportPath string
	Dir        string
	Imports    []string
	Runtime    string
	Ancestors  []string
	Fields     []fieldPlan
}

type fieldPlan struct {
	Property string
	Field    string
	Getter   string
	Setter   string
	Type     string
	Doc      string
}

// Methods every generated struct already has.
var reservedMethods = []string{"IRI", "SetIRI", "Types", "Resource"}

// Eligible reports whether a class gets generated code: it is outside the
// reserved vocabularies and is not a literal type.
func Eligible(c schema.ClassDescriptor) bool {
	return !vocab.IsReserved(c.IRI) && !c.Literal
}

// plan assigns packages, names and fields to every eligible class.
func plan(cfg Config, lay layout, m Model) []*classPlan {
	var classes []*classPlan
	byPackage := make(map[string][]*classPlan)
	for _, c := range m.DistinctClasses() {
		if !Eligible(c) {
			continue
		}
		ns := ResolveNamespace(cfg, c.IRI)
		cp := &classPlan{
			IRI:        c.IRI,
			Package:    PackageName(ns),
			ImportPath: ns,
			Dir:        lay.dir(ns),
			Runtime:    fmt.Sprintf("resource %q", cfg.RuntimeImport),
			Ancestors:  m.Ancestors(c.IRI),
		}
		classes = append(classes, cp)
		byPackage[ns] = append(byPackage[ns], cp)
	}

	for _, members := range byPackage {
		n := newNamer()
		for _, cp := range members {
			base := GoName(baseName(cp.IRI, m))
			if base == "" {
				base = "Class"
			}
			cp.Name = n.claim(base,
				func(s string) string { return s + "IRI" },
				func(s string) string { return "New" + s },
				func(s string) string { return s + "_support" },
			)
		}
	}

	byDomain := make(map[string][]schema.PropertyDescriptor)
	for _, p := range m.Properties() {
		if vocab.IsReserved(p.IRI) {
			continue
		}
		for _, d := range p.Domains {
			byDomain[d] = append(byDomain[d], p)
		}
	}

	for _, cp := range classes {
		local := make(map[string]string)
		for _, other := range byPackage[cp.ImportPath] {
			local[other.IRI] = other.Name
		}
		planFields(cp, byDomain, local, m)
		c, _ := m.Class(cp.IRI)
		cp.Doc = classDoc(cp.Name, c)
	}
	return classes
}

func baseName(iri string, m Model) string {
	if local := schema.LocalName(iri); GoName(local) != "" {
		return local
	}
	if c, ok := m.Class(iri); ok {
		return c.Label
	}
	return ""
}

func planFields(cp *classPlan, byDomain map[string][]schema.PropertyDescriptor, local map[string]string, m Model) {
	seen := make(map[string]bool)
	var props []schema.PropertyDescriptor
	for _, d := range append([]string{cp.IRI}, cp.Ancestors...) {
		for _, p := range byDomain[d] {
			if !seen[p.IRI] {
				seen[p.IRI] = true
				props = append(props, p)
			}
		}
	}
	slices.SortFunc(props, func(a, b schema.PropertyDescriptor) int {
		return strings.Compare(a.IRI, b.IRI)
	})

	imports := map[string]bool{}
	n := newNamer(reservedMethods...)
	for _, p := range props {
		base := GoName(p.LocalName())
		if base == "" {
			base = GoName(p.Label)
		}
		if base == "" {
			base = "Value"
		}
		name := n.claim(base, func(s string) string { return "Set" + s })
		t := fieldType(p, local, m)
		if t.Import != "" {
			imports[t.Import] = true
		}
		doc := fmt.Sprintf("%s returns the values of %s.", name, p.IRI)
		if p.Comment != "" {
			doc += "\n\n" + p.Comment
		}
		cp.Fields = append(cp.Fields, fieldPlan{
			Property: p.IRI,
			Field:    lowerFirst(name),
			Getter:   name,
			Setter:   "Set" + name,
			Type:     t.Name,
			Doc:      doc,
		})
	}

	for imp := range imports {
		cp.Imports = append(cp.Imports, fmt.Sprintf("%q", imp))
	}
	slices.Sort(cp.Imports)
	cp.Imports = append(cp.Imports, cp.Runtime)
}

// fieldType maps a property's ranges to a Go element type. Literal ranges
// become scalars, a single class range in the same package becomes a
// pointer to the generated struct, anything else is a resource.Object.
func fieldType(p schema.PropertyDescriptor, local map[string]string, m Model) goType {
	if len(p.Ranges) == 1 {
		r := p.Ranges[0]
		if t, ok := xsdTypes[r]; ok {
			return t
		}
		if name, ok := local[r]; ok {
			return goType{Name: "*" + name}
		}
	}
	if len(p.Ranges) == 0 {
		if p.Datatype {
			return stringType
		}
		return objectType
	}
	for _, r := range p.Ranges {
		if !isLiteralRange(r, m) {
			return objectType
		}
	}
	return stringType
}

func isLiteralRange(iri string, m Model) bool {
	if iri == vocab.RDFSLiteral {
		return true
	}
	if _, ok := xsdTypes[iri]; ok {
		return true
	}
	c, ok := m.Class(iri)
	return ok && c.Literal
}

func classDoc(name string, c schema.ClassDescriptor) string {
	subject := c.Label
	if subject == "" {
		subject = c.LocalName()
	}
	doc := fmt.Sprintf("%s is the generated type for %s (%s).", name, subject, c.IRI)
	if c.Comment != "" {
		doc += "\n\n" + c.Comment
	}
	return doc
}
