package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/angryss/idp-cli/pkg/template"
	"github.com/angryss/idp-cli/pkg/vars"
)

func newListVariablesCmd() *cobra.Command {
	var variablesFile string

	cmd := &cobra.Command{
		Use:   "list-variables (blueprint|stack) <identifier>",
		Short: "List every variable available to templates for a blueprint or stack",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := buildContext(args[0], args[1], variablesFile)
			if err != nil {
				return err
			}
			displayVariables(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&variablesFile, "variables", "", "JSON or YAML file with custom variable overrides")
	return cmd
}

// displayVariables prints the variable space grouped by root key, with the
// value type and a short sample for each path.
func displayVariables(ctx *vars.Context) {
	header := color.New(color.FgCyan, color.Bold)
	pathColor := color.New(color.FgGreen)
	typeColor := color.New(color.FgYellow)

	entries := ctx.ListAll()
	fmt.Printf("%d variables available:\n", len(entries))

	var lastRoot string
	for _, entry := range entries {
		root := rootKey(entry.Path)
		if root != lastRoot {
			fmt.Println()
			header.Printf("%s\n", root)
			lastRoot = root
		}
		fmt.Printf("  %s %s %s\n",
			pathColor.Sprintf("{{%s}}", entry.Path),
			typeColor.Sprintf("(%s)", valueType(entry.Value)),
			sample(entry.Value))
	}
}

// rootKey returns the path up to the first '.' or '['.
func rootKey(path string) string {
	if i := strings.IndexAny(path, ".["); i != -1 {
		return path[:i]
	}
	return path
}

func valueType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int, int64, float32, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "value"
}

const maxSampleLen = 60

func sample(v any) string {
	s := template.Stringify(v)
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > maxSampleLen {
		s = s[:maxSampleLen] + "..."
	}
	return s
}
