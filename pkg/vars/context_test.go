package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_Get(t *testing.T) {
	ctx := NewContext()
	ctx.Insert("blueprint.name", "payments")
	ctx.Insert("resources", []any{
		map[string]any{
			"name": "db",
			"resource_type": map[string]any{
				"name": "Database",
			},
			"tags": []any{"prod", "critical"},
		},
		map[string]any{
			"name": "cache",
		},
	})
	ctx.Insert("resources[0].name", "db")
	ctx.Insert("replicas", 3)

	tests := []struct {
		name string
		path string
		want any
		miss bool
	}{
		{name: "exact match wins", path: "blueprint.name", want: "payments"},
		{name: "exact match on flattened path", path: "resources[0].name", want: "db"},
		{name: "scalar", path: "replicas", want: 3},
		{name: "navigated index", path: "resources[1].name", want: "cache"},
		{name: "numeric dot segment", path: "resources.0.name", want: "db"},
		{name: "nested object", path: "resources[0].resource_type.name", want: "Database"},
		{name: "nested array", path: "resources[0].tags[1]", want: "critical"},
		{name: "whole array", path: "resources[0].tags", want: []any{"prod", "critical"}},
		{name: "missing root", path: "unknown", miss: true},
		{name: "missing field", path: "resources[0].missing", miss: true},
		{name: "index out of range", path: "resources[9].name", miss: true},
		{name: "index into scalar", path: "replicas[0]", miss: true},
		{name: "field on scalar", path: "replicas.value", miss: true},
		{name: "malformed index", path: "resources[x].name", miss: true},
		{name: "leading index", path: "[0].name", miss: true},
		{name: "empty path", path: "", miss: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			got, ok := ctx.Get(tt.path)
			if tt.miss {
				assert.False(ok)
				assert.Nil(got)
				return
			}
			assert.True(ok)
			assert.Equal(tt.want, got)
		})
	}
}

func TestContext_Has(t *testing.T) {
	assert := assert.New(t)

	ctx := NewContext()
	ctx.Insert("resources", []any{map[string]any{"name": "db"}})

	assert.True(ctx.Has("resources"))
	// Has is an exact-key check, unlike Get it does not navigate.
	assert.False(ctx.Has("resources[0].name"))
}

func TestContext_InsertOverwrites(t *testing.T) {
	assert := assert.New(t)

	ctx := NewContext()
	ctx.Insert("env", "staging")
	ctx.Insert("env", "production")

	got, ok := ctx.Get("env")
	assert.True(ok)
	assert.Equal("production", got)
	assert.Equal(1, ctx.Len())
}

func TestContext_ListAll(t *testing.T) {
	assert := assert.New(t)

	ctx := NewContext()
	ctx.Insert("c", 3)
	ctx.Insert("a", 1)
	ctx.Insert("b", 2)

	entries := ctx.ListAll()
	assert.Equal([]Entry{
		{Path: "a", Value: 1},
		{Path: "b", Value: 2},
		{Path: "c", Value: 3},
	}, entries)
	assert.Equal([]string{"a", "b", "c"}, ctx.Paths())
}
