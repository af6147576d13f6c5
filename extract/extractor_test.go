package extract

import (
	"testing"

	"github.com/poiesic/semkey/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRoot(t *testing.T, data string) *core.Value {
	t.Helper()
	v, err := core.DecodeValue([]byte(data))
	require.NoError(t, err)
	return v
}

func TestName_FullNameField(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "name_full",
			data: `{"NAME_FULL":"Robert Johnson"}`,
			want: "Robert Johnson",
		},
		{
			name: "prefixed name_full",
			data: `{"PRIMARY_NAME_FULL":"Robert Johnson"}`,
			want: "Robert Johnson",
		},
		{
			name: "name_org",
			data: `{"NAME_ORG":"Acme Holdings Ltd"}`,
			want: "Acme Holdings Ltd",
		},
		{
			name: "lowercase field name",
			data: `{"name_full":"Robert Johnson"}`,
			want: "Robert Johnson",
		},
		{
			name: "nested mapping",
			data: `{"IDENTITY":{"NAME_FULL":"Robert Johnson"}}`,
			want: "Robert Johnson",
		},
		{
			name: "inside sequence of mappings",
			data: `{"NAMES":[{"NAME_TYPE":"PRIMARY","NAME_FULL":"Robert Johnson"}]}`,
			want: "Robert Johnson",
		},
		{
			name: "declaration order wins",
			data: `{"A_NAME_FULL":"First Name","B_NAME_FULL":"Second Name"}`,
			want: "First Name",
		},
		{
			name: "full name beats parts regardless of position",
			data: `{"NAME_FIRST":"Bob","NAME_LAST":"Johnson","NAME_FULL":"Robert Johnson"}`,
			want: "Robert Johnson",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromValue(decodeRoot(t, tt.data))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestName_ConstructedFromParts(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "all three parts",
			data: `{"NAME_FIRST":"Robert","NAME_MIDDLE":"Allen","NAME_LAST":"Johnson"}`,
			want: "Robert Allen Johnson",
		},
		{
			name: "missing middle",
			data: `{"NAME_FIRST":"Robert","NAME_LAST":"Johnson"}`,
			want: "Robert Johnson",
		},
		{
			name: "empty middle omitted",
			data: `{"NAME_FIRST":"Robert","NAME_MIDDLE":"","NAME_LAST":"Johnson"}`,
			want: "Robert Johnson",
		},
		{
			name: "parts out of declaration order",
			data: `{"NAME_LAST":"Johnson","NAME_FIRST":"Robert"}`,
			want: "Robert Johnson",
		},
		{
			name: "first only",
			data: `{"NAME_FIRST":"Cher"}`,
			want: "Cher",
		},
		{
			name: "nested parts",
			data: `{"IDENTITY":{"NAME_FIRST":"Alice","NAME_LAST":"Wong"}}`,
			want: "Alice Wong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromValue(decodeRoot(t, tt.data))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestName_Absent(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "no name fields at all",
			data: `{"PHONE_NUMBER":"555-1234"}`,
		},
		{
			name: "numeric name value",
			data: `{"NAME_FULL":12345}`,
		},
		{
			name: "null name value",
			data: `{"NAME_FULL":null}`,
		},
		{
			name: "empty name value",
			data: `{"NAME_FULL":""}`,
		},
		{
			name: "empty mapping",
			data: `{}`,
		},
		{
			name: "suffix only matches field name end",
			data: `{"NAME_FULL_TYPE":"PRIMARY"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromValue(decodeRoot(t, tt.data))
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestName_Deterministic(t *testing.T) {
	root := decodeRoot(t, `{"A":{"B":{"NAME_FULL":"Robert Johnson"}},"C_NAME_FULL":"Other"}`)

	first, ok1 := FromValue(root)
	second, ok2 := FromValue(root)

	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
	// Pre-order traversal reaches the nested mapping before the later sibling.
	assert.Equal(t, "Robert Johnson", first)
}

func TestName_CyclicStructure(t *testing.T) {
	inner := core.Mapping()
	outer := core.Mapping(core.Field{Name: "LOOP", Value: inner})
	inner.Fields = append(inner.Fields, core.Field{Name: "BACK", Value: outer})

	got, ok := FromValue(outer)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestName_DepthCutoff(t *testing.T) {
	// A name buried past the depth cutoff is treated as absent.
	leaf := core.Mapping(core.Field{Name: "NAME_FULL", Value: core.StringValue("Deep Name")})
	node := leaf
	for i := 0; i < 64; i++ {
		node = core.Mapping(core.Field{Name: "WRAP", Value: node})
	}

	_, ok := FromValue(node)
	assert.False(t, ok)
}

func TestName_NilInputs(t *testing.T) {
	_, ok := Name(nil)
	assert.False(t, ok)

	_, ok = FromValue(nil)
	assert.False(t, ok)

	_, ok = Name(&core.Record{})
	assert.False(t, ok)
}
