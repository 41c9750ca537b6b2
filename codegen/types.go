package codegen

import (
	vocab "github.com/c360studio/semschema/vocabulary/schema"
)

// goType is the element type of a generated field and the import it needs.
type goType struct {
	Name   string
	Import string
}

var xsdTypes = map[string]goType{
	vocab.XSDString:   {Name: "string"},
	vocab.XSDAnyURI:   {Name: "string"},
	vocab.XSDBoolean:  {Name: "bool"},
	vocab.XSDInteger:  {Name: "int64"},
	vocab.XSDLong:     {Name: "int64"},
	vocab.XSDInt:      {Name: "int32"},
	vocab.XSDDecimal:  {Name: "float64"},
	vocab.XSDDouble:   {Name: "float64"},
	vocab.XSDFloat:    {Name: "float32"},
	vocab.XSDDate:     {Name: "time.Time", Import: "time"},
	vocab.XSDDateTime: {Name: "time.Time", Import: "time"},
}

var (
	stringType = goType{Name: "string"}
	objectType = goType{Name: "resource.Object"}
)
