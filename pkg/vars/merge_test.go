package vars

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestMergeVariablesFile_json(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := writeTempFile(t, "vars.json", `{
		"environment": "production",
		"replicas": 3,
		"database": {"engine": "postgres", "port": 5432},
		"regions": ["us-east-1", "eu-west-1"]
	}`)

	ctx := NewContext()
	require.NoError(MergeVariablesFile(ctx, path, nil))

	got, ok := ctx.Get("environment")
	assert.True(ok)
	assert.Equal("production", got)

	// nested values are flattened alongside the composite
	got, ok = ctx.Get("database.engine")
	assert.True(ok)
	assert.Equal("postgres", got)

	got, ok = ctx.Get("regions[1]")
	assert.True(ok)
	assert.Equal("eu-west-1", got)

	raw, ok := ctx.Get("database")
	require.True(ok)
	assert.IsType(map[string]any{}, raw)
}

func TestMergeVariablesFile_yaml(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := writeTempFile(t, "vars.yaml", "environment: staging\nlimits:\n  cpu: 2\n  memory: 4Gi\n")

	ctx := NewContext()
	require.NoError(MergeVariablesFile(ctx, path, nil))

	got, ok := ctx.Get("environment")
	assert.True(ok)
	assert.Equal("staging", got)

	got, ok = ctx.Get("limits.memory")
	assert.True(ok)
	assert.Equal("4Gi", got)
}

func TestMergeVariablesFile_overrideWarnsOnce(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	path := writeTempFile(t, "vars.json", `{"environment": "production", "region": "us-east-1"}`)

	ctx := NewContext()
	ctx.Insert("environment", "staging")

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, format)
	}
	require.NoError(MergeVariablesFile(ctx, path, warn))

	assert.Len(warnings, 1)

	got, ok := ctx.Get("environment")
	assert.True(ok)
	assert.Equal("production", got)
}

func TestMergeVariablesFile_errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		contents string
		missing  bool
		wantErr  any
	}{
		{
			name:     "missing file",
			filename: "vars.json",
			missing:  true,
			wantErr:  &VariableFileError{},
		},
		{
			name:     "unsupported extension",
			filename: "vars.toml",
			contents: "environment = \"prod\"",
			wantErr:  &VariableFileError{},
		},
		{
			name:     "malformed json",
			filename: "vars.json",
			contents: `{"environment": `,
			wantErr:  &ParseError{},
		},
		{
			name:     "malformed yaml",
			filename: "vars.yml",
			contents: "environment: [unclosed",
			wantErr:  &ParseError{},
		},
		{
			name:     "non-mapping root",
			filename: "vars.json",
			contents: `["a", "b"]`,
			wantErr:  &SchemaError{},
		},
		{
			name:     "scalar root",
			filename: "vars.yaml",
			contents: "just a string",
			wantErr:  &SchemaError{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			var path string
			if tt.missing {
				path = filepath.Join(t.TempDir(), tt.filename)
			} else {
				path = writeTempFile(t, tt.filename, tt.contents)
			}

			err := MergeVariablesFile(NewContext(), path, nil)
			assert.Error(err)
			switch tt.wantErr.(type) {
			case *VariableFileError:
				var target *VariableFileError
				assert.ErrorAs(err, &target)
			case *ParseError:
				var target *ParseError
				assert.ErrorAs(err, &target)
			case *SchemaError:
				var target *SchemaError
				assert.ErrorAs(err, &target)
			}
		})
	}
}
