package hclschema

import (
	"github.com/hashicorp/hcl/v2"
)

// schemaFile is the top-level structure of a schema file
type schemaFile struct {
	Documents []*classBlock `hcl:"document,block"`
	Classes   []*classBlock `hcl:"class,block"`
}

// classBlock is a `document` or `class` block
type classBlock struct {
	ID         string           `hcl:"id,label"`
	Index      *string          `hcl:"index,optional"`
	Name       *string          `hcl:"name,optional"`
	Package    *string          `hcl:"package,optional"`
	Enclosing  *string          `hcl:"enclosing,optional"`
	Private    *bool            `hcl:"private,optional"`
	Include    *bool            `hcl:"include,optional"`
	Properties []*propertyBlock `hcl:"property,block"`
	Getters    []*propertyBlock `hcl:"getter,block"`
	DefRange   hcl.Range        `hcl:",def_range"`
}

// propertyBlock is a `property` or `getter` block
type propertyBlock struct {
	Key      string         `hcl:"key,label"`
	Type     string         `hcl:"type"`
	Name     *string        `hcl:"name,optional"`
	Fields   hcl.Expression `hcl:"fields,optional"`
	Target   hcl.Expression `hcl:"target,optional"`
	DefRange hcl.Range      `hcl:",def_range"`
}
