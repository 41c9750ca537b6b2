package ingest

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Format is a schema serialization syntax.
type Format string

// Supported formats. The values are the tokens accepted on the command
// line and in configuration.
const (
	FormatRDFXML   Format = "RDF/XML"
	FormatNTriples Format = "N-TRIPLE"
	FormatTurtle   Format = "TURTLE"
	FormatN3       Format = "N3"
)

// Formats lists every supported format.
var Formats = []Format{FormatRDFXML, FormatNTriples, FormatTurtle, FormatN3}

// ParseFormat resolves a format token case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RDF/XML", "RDFXML", "XML", "OWL":
		return FormatRDFXML, nil
	case "N-TRIPLE", "N-TRIPLES", "NTRIPLES", "NT":
		return FormatNTriples, nil
	case "TURTLE", "TTL":
		return FormatTurtle, nil
	case "N3":
		return FormatN3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rdf", ".owl", ".xml":
		return FormatRDFXML, true
	case ".nt":
		return FormatNTriples, true
	case ".ttl":
		return FormatTurtle, true
	case ".n3":
		return FormatN3, true
	default:
		return "", false
	}
}

// FormatForContentType infers the format from an HTTP media type.
func FormatForContentType(contentType string) (Format, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch mt {
	case "application/rdf+xml", "application/owl+xml", "application/xml", "text/xml":
		return FormatRDFXML, true
	case "application/n-triples":
		return FormatNTriples, true
	case "text/turtle", "application/x-turtle":
		return FormatTurtle, true
	case "text/n3", "text/rdf+n3":
		return FormatN3, true
	default:
		return "", false
	}
}
