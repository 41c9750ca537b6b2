package codegen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const header = "// Code generated by semschema. DO NOT EDIT.\n\n"

var funcs = template.FuncMap{
	"comment": comment,
	"quote":   func(s string) string { return fmt.Sprintf("%q", s) },
}

var typeTemplate = template.Must(template.New("type").Funcs(funcs).Parse(header + `package {{.Package}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)

// {{.Name}}IRI identifies the {{.Name}} class.
const {{.Name}}IRI = {{quote .IRI}}

{{comment .Doc}}
type {{.Name}} struct {
	resource.Resource
{{if .Fields}}
{{- range .Fields}}
	{{.Field}} []{{.Type}}
{{- end}}
{{end -}}
}
{{range .Fields}}
{{comment .Doc}}
func (v *{{$.Name}}) {{.Getter}}() []{{.Type}} {
	return v.{{.Field}}
}

// {{.Setter}} replaces the values of {{.Property}}.
func (v *{{$.Name}}) {{.Setter}}(values ...{{.Type}}) {
	v.{{.Field}} = values
}
{{end -}}
`))

var supportTemplate = template.Must(template.New("support").Funcs(funcs).Parse(header + `package {{.Package}}

import {{.Runtime}}

// New{{.Name}} creates a {{.Name}} identified by iri.
func New{{.Name}}(iri string) *{{.Name}} {
	v := &{{.Name}}{}
	v.SetIRI(iri)
	return v
}

// Types returns the class IRI of {{.Name}} followed by its superclasses.
func (*{{.Name}}) Types() []string {
	return []string{
		{{.Name}}IRI,
{{- range .Ancestors}}
		{{quote .}},
{{- end}}
	}
}

func init() {
	resource.Register({{.Name}}IRI, func(iri string) resource.Object {
		return New{{.Name}}(iri)
	})
}
`))

// comment renders text as a line comment block.
func comment(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			lines[i] = "//"
			continue
		}
		lines[i] = "// " + l
	}
	return strings.Join(lines, "\n")
}

func render(t *template.Template, cp *classPlan) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, cp); err != nil {
		return nil, fmt.Errorf("render %s template: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}
