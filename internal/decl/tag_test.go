package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		want    Annotation
		wantErr bool
	}{
		{
			name: "type only",
			tag:  "type=keyword",
			want: Annotation{Kind: KindKeyword},
		},
		{
			name: "bare kind",
			tag:  "nested",
			want: Annotation{Kind: KindNested},
		},
		{
			name: "empty tag is auto",
			tag:  "",
			want: Annotation{Kind: KindAuto},
		},
		{
			name: "name override",
			tag:  "type=text name=full_name",
			want: Annotation{Kind: KindText, Name: "full_name"},
		},
		{
			name: "multi-field",
			tag:  "type=text fields=keyword:keyword,raw:keyword",
			want: Annotation{
				Kind: KindText,
				Inner: []InnerFieldSpec{
					{Suffix: "keyword", Kind: KindKeyword},
					{Suffix: "raw", Kind: KindKeyword},
				},
			},
		},
		{
			name: "inner field defaults to keyword",
			tag:  "text fields=sort",
			want: Annotation{
				Kind:  KindText,
				Inner: []InnerFieldSpec{{Suffix: "sort", Kind: KindKeyword}},
			},
		},
		{name: "unknown kind", tag: "type=varchar", wantErr: true},
		{name: "unknown directive", tag: "type=text analyzer=english", wantErr: true},
		{name: "kind twice", tag: "text type=keyword", wantErr: true},
		{name: "empty name", tag: "type=text name=", wantErr: true},
		{name: "duplicate suffix", tag: "text fields=raw,raw", wantErr: true},
		{name: "container inner", tag: "text fields=sub:object", wantErr: true},
		{name: "container multi-field", tag: "object fields=raw", wantErr: true},
		{name: "empty fields", tag: "text fields=,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTag(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDirective(t *testing.T) {
	d, ok := ParseDirective("//es:document index=orders")
	require.True(t, ok)
	assert.Equal(t, "document", d.Name)
	assert.Equal(t, "index=orders", d.Args)

	d, ok = ParseDirective("// es:include")
	require.True(t, ok)
	assert.Equal(t, "include", d.Name)
	assert.Empty(t, d.Args)

	_, ok = ParseDirective("// Order is a purchase")
	assert.False(t, ok)

	_, ok = ParseDirective("//es:")
	assert.False(t, ok)
}

func TestDirectiveArgs(t *testing.T) {
	args, err := DirectiveArgs("index=orders shards=2")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"index": "orders", "shards": "2"}, args)

	_, err = DirectiveArgs("orders")
	assert.Error(t, err)
}

func TestParseFieldKind(t *testing.T) {
	for kind, name := range fieldKindNames {
		parsed, err := ParseFieldKind(name)
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
		assert.Equal(t, name, kind.String())
	}

	_, err := ParseFieldKind("varchar")
	assert.Error(t, err)

	assert.True(t, KindObject.IsContainer())
	assert.True(t, KindNested.IsContainer())
	assert.True(t, KindNested.IsNested())
	assert.False(t, KindObject.IsNested())
	assert.False(t, KindKeyword.IsContainer())
}
