package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Order", "order"},
		{"OrderItem", "order_item"},
		{"HTTPRequest", "http_request"},
		{"ID", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ToSnakeCase(tt.input))
		})
	}
}

func TestToLowerCamel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"HomeAddress", "homeAddress"},
		{"ID", "id"},
		{"URLPath", "urlPath"},
		{"Sku", "sku"},
		{"alreadyLower", "alreadyLower"},
		{"A", "a"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ToLowerCamel(tt.input))
		})
	}
}

func TestToPascalCase(t *testing.T) {
	assert.Equal(t, "Billing", ToPascalCase("billing"))
	assert.Equal(t, "MyPkg", ToPascalCase("my_pkg"))
	assert.Equal(t, "ExampleComShop", ToPascalCase("example.com/shop"))
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("fullName"))
	assert.True(t, IsIdentifier("_x1"))
	assert.False(t, IsIdentifier("full-name"))
	assert.False(t, IsIdentifier("1st"))
	assert.False(t, IsIdentifier("type"))
	assert.False(t, IsIdentifier(""))
}

func TestSafeIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"fullName", "fullName"},
		{"full-name", "fullName"},
		{"type", "type_"},
		{"1st", "_1st"},
		{"-", "_"},
		{"@timestamp", "timestamp"},
		{"ty-pe", "tyPe"},
		{"", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SafeIdentifier(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsIdentifier(got))
		})
	}
}
