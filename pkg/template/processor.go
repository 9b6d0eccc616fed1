package template

import (
	"fmt"
	"os"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/angryss/idp-cli/pkg/multierr"
	"github.com/angryss/idp-cli/pkg/vars"
)

// ProcessedFile is a rendered template ready to be written to disk, keyed by
// its path relative to the template root.
type ProcessedFile struct {
	RelPath string
	Content string
}

// Processor renders template files against a variable Context. The Context
// must not be mutated once processing starts; a Processor is then safe for
// concurrent use.
type Processor struct {
	ctx      *vars.Context
	renderer *Renderer
}

func NewProcessor(ctx *vars.Context) *Processor {
	return &Processor{ctx: ctx, renderer: NewRenderer(ctx)}
}

// Renderer exposes the underlying renderer, e.g. to register extra helpers
// or enable strict resolution before processing starts.
func (p *Processor) Renderer() *Renderer {
	return p.renderer
}

// Render substitutes variables in templateText. Failures are translated from
// the renderer's structured errors into the user-facing taxonomy.
func (p *Processor) Render(templateText string) (string, error) {
	out, err := p.renderer.Render(templateText)
	if err != nil {
		return "", p.enhanceError(err, templateText)
	}
	return out, nil
}

// ProcessFile reads, renders, and (for YAML templates) validates one
// discovered template.
func (p *Processor) ProcessFile(tf TemplateFile) (ProcessedFile, error) {
	content, err := os.ReadFile(tf.Path)
	if err != nil {
		return ProcessedFile{}, &ProcessingError{
			Message: fmt.Sprintf("failed to read template file %q: %v", tf.Path, err),
		}
	}

	rendered, err := p.Render(string(content))
	if err != nil {
		return ProcessedFile{}, errors.Wrapf(err, "failed to process %q", tf.RelPath)
	}

	if tf.Kind == KindYAML {
		if err := validateYAML(rendered, tf.RelPath); err != nil {
			return ProcessedFile{}, err
		}
	}

	return ProcessedFile{RelPath: tf.RelPath, Content: rendered}, nil
}

// enhanceError classifies a structured render failure, in priority order:
// a line-numbered syntax error (with the offending source line and canned
// guidance), then an unresolved reference (with ranked suggestions), then a
// generic processing error.
func (p *Processor) enhanceError(err error, templateText string) error {
	var re *RenderError
	if !errors.As(err, &re) {
		return &ProcessingError{Message: genericGuidance(err)}
	}

	switch {
	case re.Kind == KindSyntax && re.Line > 0:
		return &TemplateSyntaxError{
			Line:    re.Line,
			Message: syntaxGuidance(re, templateText),
		}
	case re.Kind == KindUnresolved && re.Var != "":
		return &VariableNotFoundError{
			Variable:   re.Var,
			Suggestion: SuggestSimilar(re.Var, p.ctx.Paths()),
		}
	}
	return &ProcessingError{Message: genericGuidance(re)}
}

func syntaxGuidance(re *RenderError, templateText string) string {
	return fmt.Sprintf("%s\n%s\nTemplate line %d:\n%s",
		re.Msg,
		dedent.Dedent(`
			Common template syntax issues:
			- Unclosed braces: {{ variable (missing closing }})
			- Invalid helper syntax: {{helper param1 param2}}
			- Mismatched block helpers: {{#if}} without {{/if}}
		`),
		re.Line,
		sourceLine(templateText, re.Line))
}

func genericGuidance(err error) string {
	return fmt.Sprintf("template processing failed: %v\n%s",
		err,
		dedent.Dedent(`
			Troubleshooting tips:
			- Verify all {{variable}} placeholders have corresponding values
			- Check that nested access paths are correct (e.g., {{resource.name}})
			- Ensure array indices are valid (e.g., {{resources[0].name}})
			- Use the 'list-variables' command to see available variables
		`))
}

func sourceLine(templateText string, line int) string {
	lines := strings.Split(templateText, "\n")
	if line < 1 || line > len(lines) {
		return "<line not found>"
	}
	return lines[line-1]
}

// validateYAML checks that rendered YAML content parses. Multi-document
// files are split on bare "---" separator lines, each non-empty document is
// parsed independently, and failures are aggregated so every bad document is
// reported at once. Empty or whitespace-only content is valid.
func validateYAML(content, relPath string) error {
	var documents []string
	for _, doc := range splitYAMLDocuments(content) {
		if strings.TrimSpace(doc) != "" {
			documents = append(documents, doc)
		}
	}

	var errs multierr.Error
	for i, doc := range documents {
		var parsed any
		err := yaml.Unmarshal([]byte(doc), &parsed)
		if err == nil {
			continue
		}
		docInfo := ""
		if len(documents) > 1 {
			docInfo = fmt.Sprintf(" (document %d)", i+1)
		}
		errs.Append(&ProcessingError{
			Message: fmt.Sprintf("YAML validation failed for %q%s: %v\n%s",
				relPath, docInfo, err,
				dedent.Dedent(`
					The generated YAML has invalid syntax. This usually means:
					- A variable substitution resulted in invalid YAML structure
					- Missing or incorrect indentation
					- Unquoted special characters
				`)),
		})
	}
	return errs.ErrOrNil()
}

// splitYAMLDocuments splits on bare "---" separator lines; an indented "---"
// (e.g. inside a block scalar) is document content, not a separator. Parsing
// each document with its own decoder (instead of one multi-document decoder)
// keeps the reported document index exact.
func splitYAMLDocuments(content string) []string {
	var docs []string
	var current []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimRight(line, " \t\r") == "---" {
			docs = append(docs, strings.Join(current, "\n"))
			current = nil
			continue
		}
		current = append(current, line)
	}
	docs = append(docs, strings.Join(current, "\n"))
	return docs
}
