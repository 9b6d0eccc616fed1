package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_splitPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{
			name: "empty",
			path: "",
			want: nil,
		},
		{
			name: "single",
			path: "foo",
			want: []string{"foo"},
		},
		{
			name: "dotted",
			path: "foo.bar",
			want: []string{"foo", ".bar"},
		},
		{
			name: "indexed",
			path: "foo[0]",
			want: []string{"foo", "[0]"},
		},
		{
			name: "long mixed",
			path: "resources[0].cloud_provider.name",
			want: []string{"resources", "[0]", ".cloud_provider", ".name"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			got := splitPath(tt.path)
			assert.Equal(tt.want, got)
		})
	}
}

func Test_parsePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []segment
		bad  bool
	}{
		{
			name: "simple field",
			path: "name",
			want: []segment{{field: "name"}},
		},
		{
			name: "dotted fields",
			path: "blueprint.name",
			want: []segment{{field: "blueprint"}, {field: "name"}},
		},
		{
			name: "index suffix",
			path: "resources[2]",
			want: []segment{{field: "resources"}, {index: 2, isIndex: true}},
		},
		{
			name: "mixed",
			path: "resources[0].resource_type.name",
			want: []segment{
				{field: "resources"},
				{index: 0, isIndex: true},
				{field: "resource_type"},
				{field: "name"},
			},
		},
		{
			name: "leading index",
			path: "[1].name",
			want: []segment{{index: 1, isIndex: true}, {field: "name"}},
		},
		{
			name: "empty",
			path: "",
			bad:  true,
		},
		{
			name: "non-numeric index",
			path: "resources[abc]",
			bad:  true,
		},
		{
			name: "unterminated index",
			path: "resources[0",
			bad:  true,
		},
		{
			name: "negative index",
			path: "resources[-1]",
			bad:  true,
		},
		{
			name: "empty field",
			path: "a..b",
			bad:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			got, ok := parsePath(tt.path)
			if tt.bad {
				assert.False(ok)
				return
			}
			assert.True(ok)
			assert.Equal(tt.want, got)
		})
	}
}

func TestNavigate(t *testing.T) {
	value := map[string]any{
		"resources": []any{
			map[string]any{
				"name": "db",
				"cloud_provider": map[string]any{
					"name": "AWS",
				},
			},
		},
	}

	tests := []struct {
		name string
		path string
		want any
		miss bool
	}{
		{name: "nested field", path: "resources[0].name", want: "db"},
		{name: "deep field", path: "resources[0].cloud_provider.name", want: "AWS"},
		{name: "numeric dot segment", path: "resources.0.name", want: "db"},
		{name: "missing field", path: "resources[0].missing", miss: true},
		{name: "index out of range", path: "resources[5].name", miss: true},
		{name: "malformed", path: "resources[x].name", miss: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			got, ok := Navigate(value, tt.path)
			if tt.miss {
				assert.False(ok)
				return
			}
			assert.True(ok)
			assert.Equal(tt.want, got)
		})
	}
}
