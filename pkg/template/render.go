package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/angryss/idp-cli/pkg/vars"
)

// ErrorKind tags a RenderError so callers can classify failures without
// mining the message text.
type ErrorKind int

const (
	// KindSyntax covers malformed template source; Line is always set.
	KindSyntax ErrorKind = iota
	// KindUnresolved covers strict-mode references to absent paths; Var is
	// always set.
	KindUnresolved
	// KindEval covers everything else (helper misuse, non-iterable loops).
	KindEval
)

// RenderError is the renderer's structured failure. The processor turns it
// into the user-facing error taxonomy.
type RenderError struct {
	Kind ErrorKind
	// Line is the 1-based template line the failure was detected on (0 when
	// unknown).
	Line int
	// Var is the unresolved path for KindUnresolved errors.
	Var string
	Msg string
}

func (e *RenderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

type (
	node interface{ isNode() }

	textNode struct {
		text string
	}

	exprNode struct {
		expr expr
		line int
	}

	ifNode struct {
		cond expr
		then []node
		els  []node
		line int
	}

	eachNode struct {
		list expr
		body []node
		line int
	}

	expr interface{ isExpr() }

	// pathExpr references the variable space (or the loop scope).
	pathExpr struct {
		path string
		line int
	}

	// strExpr is a quoted string literal argument.
	strExpr struct {
		val string
	}

	// helperExpr is a call to a registered helper, possibly with nested
	// helper calls as arguments.
	helperExpr struct {
		name string
		args []expr
		line int
	}
)

func (textNode) isNode() {}
func (exprNode) isNode() {}
func (ifNode) isNode()   {}
func (eachNode) isNode() {}

func (pathExpr) isExpr()   {}
func (strExpr) isExpr()    {}
func (helperExpr) isExpr() {}

// Renderer substitutes {{...}} placeholders against a read-only variable
// Context, with #if / #each blocks and a helper registry. Missing variables
// render as the empty string unless Strict is set.
type Renderer struct {
	ctx     *vars.Context
	helpers map[string]Helper
	// Strict turns an unresolved {{path}} substitution into a
	// KindUnresolved error instead of an empty string.
	Strict bool
}

func NewRenderer(ctx *vars.Context) *Renderer {
	return &Renderer{ctx: ctx, helpers: builtinHelpers()}
}

// RegisterHelper adds (or replaces) a helper. Registration must happen
// before Render is called from multiple goroutines.
func (r *Renderer) RegisterHelper(name string, fn Helper) {
	r.helpers[name] = fn
}

// Render parses and evaluates template against the renderer's context.
func (r *Renderer) Render(template string) (string, error) {
	nodes, err := r.parse(template)
	if err != nil {
		return "", err
	}
	sb := new(strings.Builder)
	if err := r.eval(nodes, rootScope(r.ctx), sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// parsing

type parser struct {
	r     *Renderer
	src   string
	pos   int
	line  int
	stack []blockFrame
}

type blockFrame struct {
	node *ifNode
	each *eachNode
	// inElse is set once {{else}} has been seen inside an #if.
	inElse bool
	line   int
}

func (r *Renderer) parse(src string) ([]node, error) {
	p := &parser{r: r, src: src, line: 1}
	var root []node
	appendNode := func(n node) {
		if len(p.stack) == 0 {
			root = append(root, n)
			return
		}
		top := &p.stack[len(p.stack)-1]
		switch {
		case top.each != nil:
			top.each.body = append(top.each.body, n)
		case top.inElse:
			top.node.els = append(top.node.els, n)
		default:
			top.node.then = append(top.node.then, n)
		}
	}

	for p.pos < len(p.src) {
		open := strings.Index(p.src[p.pos:], "{{")
		if open == -1 {
			if p.pos < len(p.src) {
				appendNode(textNode{text: p.src[p.pos:]})
			}
			break
		}
		if open > 0 {
			text := p.src[p.pos : p.pos+open]
			appendNode(textNode{text: text})
			p.line += strings.Count(text, "\n")
			p.pos += open
		}

		tagLine := p.line
		end := findTagEnd(p.src[p.pos:])
		if end == -1 {
			return nil, &RenderError{
				Kind: KindSyntax,
				Line: tagLine,
				Msg:  "unclosed tag: missing }}",
			}
		}
		content := p.src[p.pos+2 : p.pos+end]
		p.line += strings.Count(content, "\n")
		p.pos += end + 2

		trimmed := strings.TrimSpace(content)
		switch {
		case strings.HasPrefix(trimmed, "#if"):
			e, err := p.parseExpr(strings.TrimSpace(trimmed[len("#if"):]), tagLine)
			if err != nil {
				return nil, err
			}
			p.stack = append(p.stack, blockFrame{node: &ifNode{cond: e, line: tagLine}, line: tagLine})
		case strings.HasPrefix(trimmed, "#each"):
			e, err := p.parseExpr(strings.TrimSpace(trimmed[len("#each"):]), tagLine)
			if err != nil {
				return nil, err
			}
			p.stack = append(p.stack, blockFrame{each: &eachNode{list: e, line: tagLine}, line: tagLine})
		case trimmed == "else":
			if len(p.stack) == 0 || p.stack[len(p.stack)-1].node == nil {
				return nil, &RenderError{Kind: KindSyntax, Line: tagLine, Msg: "{{else}} outside of {{#if}} block"}
			}
			if p.stack[len(p.stack)-1].inElse {
				return nil, &RenderError{Kind: KindSyntax, Line: tagLine, Msg: "duplicate {{else}} in {{#if}} block"}
			}
			p.stack[len(p.stack)-1].inElse = true
		case trimmed == "/if":
			if len(p.stack) == 0 || p.stack[len(p.stack)-1].node == nil {
				return nil, &RenderError{Kind: KindSyntax, Line: tagLine, Msg: "{{/if}} without matching {{#if}}"}
			}
			done := p.stack[len(p.stack)-1].node
			p.stack = p.stack[:len(p.stack)-1]
			appendNode(done)
		case trimmed == "/each":
			if len(p.stack) == 0 || p.stack[len(p.stack)-1].each == nil {
				return nil, &RenderError{Kind: KindSyntax, Line: tagLine, Msg: "{{/each}} without matching {{#each}}"}
			}
			done := p.stack[len(p.stack)-1].each
			p.stack = p.stack[:len(p.stack)-1]
			appendNode(done)
		case strings.HasPrefix(trimmed, "#"):
			return nil, &RenderError{
				Kind: KindSyntax,
				Line: tagLine,
				Msg:  fmt.Sprintf("unknown block helper %q (supported: #if, #each)", strings.Fields(trimmed)[0]),
			}
		case trimmed == "":
			return nil, &RenderError{Kind: KindSyntax, Line: tagLine, Msg: "empty tag"}
		default:
			e, err := p.parseExpr(trimmed, tagLine)
			if err != nil {
				return nil, err
			}
			appendNode(exprNode{expr: e, line: tagLine})
		}
	}

	if len(p.stack) > 0 {
		frame := p.stack[len(p.stack)-1]
		open := "#if"
		if frame.each != nil {
			open = "#each"
		}
		return nil, &RenderError{
			Kind: KindSyntax,
			Line: frame.line,
			Msg:  fmt.Sprintf("unclosed {{%s}} block", open),
		}
	}
	return root, nil
}

// findTagEnd locates the closing "}}" of a tag, skipping any "}}" inside
// quoted string arguments. Returns -1 when the tag never closes; an
// unterminated quote falls back to the first "}}" so the tokenizer reports
// the string, not the tag.
func findTagEnd(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(s) {
				return strings.Index(s, "}}")
			}
			i = j
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				return i
			}
		}
	}
	return -1
}

// parseExpr parses a tag body: a quoted string, a bare path, or a helper
// call with space-separated arguments (nested calls parenthesized).
func (p *parser) parseExpr(content string, line int) (expr, error) {
	tokens, err := tokenize(content, line)
	if err != nil {
		return nil, err
	}
	e, rest, err := p.parseTokens(tokens, line)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, &RenderError{
			Kind: KindSyntax,
			Line: line,
			Msg:  fmt.Sprintf("unexpected %q after expression", rest[0].val),
		}
	}
	return e, nil
}

type token struct {
	kind tokenKind
	val  string
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokLParen
	tokRParen
)

func tokenize(s string, line int) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, val: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, val: ")"})
			i++
		case c == '"':
			j := i + 1
			var sb strings.Builder
			for j < len(s) && s[j] != '"' {
				if s[j] == '\\' && j+1 < len(s) {
					j++
				}
				sb.WriteByte(s[j])
				j++
			}
			if j >= len(s) {
				return nil, &RenderError{Kind: KindSyntax, Line: line, Msg: "unterminated string literal"}
			}
			tokens = append(tokens, token{kind: tokString, val: sb.String()})
			i = j + 1
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t\n\r()\"", rune(s[j])) {
				j++
			}
			tokens = append(tokens, token{kind: tokIdent, val: s[i:j]})
			i = j
		}
	}
	return tokens, nil
}

// parseTokens consumes one expression from tokens. At the top of a tag, an
// identifier followed by more tokens is a helper call; a lone identifier is a
// path reference.
func (p *parser) parseTokens(tokens []token, line int) (expr, []token, error) {
	if len(tokens) == 0 {
		return nil, nil, &RenderError{Kind: KindSyntax, Line: line, Msg: "empty expression"}
	}
	head := tokens[0]
	switch head.kind {
	case tokString:
		return strExpr{val: head.val}, tokens[1:], nil
	case tokLParen:
		inner, rest, err := p.parseCall(tokens[1:], line)
		if err != nil {
			return nil, nil, err
		}
		if len(rest) == 0 || rest[0].kind != tokRParen {
			return nil, nil, &RenderError{Kind: KindSyntax, Line: line, Msg: "missing closing parenthesis"}
		}
		return inner, rest[1:], nil
	case tokIdent:
		if len(tokens) > 1 && tokens[1].kind != tokRParen {
			// helper call form: name arg arg...
			return p.parseCall(tokens, line)
		}
		return pathExpr{path: head.val, line: line}, tokens[1:], nil
	}
	return nil, nil, &RenderError{Kind: KindSyntax, Line: line, Msg: fmt.Sprintf("unexpected %q", head.val)}
}

// parseCall parses "name arg arg..." until a closing paren or end of input.
func (p *parser) parseCall(tokens []token, line int) (expr, []token, error) {
	if len(tokens) == 0 || tokens[0].kind != tokIdent {
		return nil, nil, &RenderError{Kind: KindSyntax, Line: line, Msg: "expected helper name"}
	}
	name := tokens[0].val
	if _, ok := p.r.helpers[name]; !ok {
		return nil, nil, &RenderError{
			Kind: KindSyntax,
			Line: line,
			Msg:  fmt.Sprintf("unknown helper %q", name),
		}
	}
	call := helperExpr{name: name, line: line}
	rest := tokens[1:]
	for len(rest) > 0 && rest[0].kind != tokRParen {
		var (
			arg expr
			err error
		)
		switch rest[0].kind {
		case tokString:
			arg, rest = strExpr{val: rest[0].val}, rest[1:]
		case tokIdent:
			arg, rest = pathExpr{path: rest[0].val, line: line}, rest[1:]
		case tokLParen:
			arg, rest, err = p.parseCall(rest[1:], line)
			if err != nil {
				return nil, nil, err
			}
			if len(rest) == 0 || rest[0].kind != tokRParen {
				return nil, nil, &RenderError{Kind: KindSyntax, Line: line, Msg: "missing closing parenthesis"}
			}
			rest = rest[1:]
		}
		call.args = append(call.args, arg)
	}
	return call, rest, nil
}

// evaluation

// scope carries the loop bindings for #each bodies; the root scope resolves
// directly against the store.
type scope struct {
	ctx    *vars.Context
	elem   any
	index  int
	inLoop bool
}

func rootScope(ctx *vars.Context) scope {
	return scope{ctx: ctx}
}

// resolve looks up a path: loop bindings first ("this", "@index", then the
// current element's fields), falling back to the store.
func (s scope) resolve(path string) (any, bool) {
	if s.inLoop {
		switch {
		case path == "this":
			return s.elem, true
		case path == "@index":
			return s.index, true
		case strings.HasPrefix(path, "this."):
			return vars.Navigate(s.elem, path[len("this."):])
		case strings.HasPrefix(path, "this["):
			return vars.Navigate(s.elem, path[len("this"):])
		}
		if v, ok := vars.Navigate(s.elem, path); ok {
			return v, true
		}
	}
	return s.ctx.Get(path)
}

func (r *Renderer) eval(nodes []node, sc scope, out *strings.Builder) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			out.WriteString(n.text)
		case exprNode:
			val, resolved, err := r.evalExpr(n.expr, sc)
			if err != nil {
				return err
			}
			if !resolved {
				if pe, ok := n.expr.(pathExpr); ok && r.Strict {
					return &RenderError{
						Kind: KindUnresolved,
						Line: n.line,
						Var:  pe.path,
						Msg:  fmt.Sprintf("variable %q not found", pe.path),
					}
				}
				continue
			}
			out.WriteString(Stringify(val))
		case *ifNode:
			val, _, err := r.evalExpr(n.cond, sc)
			if err != nil {
				return err
			}
			branch := n.els
			if truthy(val) {
				branch = n.then
			}
			if err := r.eval(branch, sc, out); err != nil {
				return err
			}
		case *eachNode:
			val, resolved, err := r.evalExpr(n.list, sc)
			if err != nil {
				return err
			}
			if !resolved || !truthy(val) {
				continue
			}
			list, ok := val.([]any)
			if !ok {
				return &RenderError{
					Kind: KindEval,
					Line: n.line,
					Msg:  fmt.Sprintf("#each requires a list value, got %T", val),
				}
			}
			for i, elem := range list {
				inner := scope{ctx: sc.ctx, elem: elem, index: i, inLoop: true}
				if err := r.eval(n.body, inner, out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// evalExpr produces the expression's value. resolved is false only for path
// references that miss the variable space; helpers always resolve.
func (r *Renderer) evalExpr(e expr, sc scope) (val any, resolved bool, err error) {
	switch e := e.(type) {
	case strExpr:
		return e.val, true, nil
	case pathExpr:
		v, ok := sc.resolve(e.path)
		return v, ok, nil
	case helperExpr:
		fn := r.helpers[e.name]
		args := make([]any, len(e.args))
		for i, arg := range e.args {
			v, _, err := r.evalExpr(arg, sc)
			if err != nil {
				return nil, false, err
			}
			args[i] = v
		}
		out, err := fn(args)
		if err != nil {
			return nil, false, &RenderError{
				Kind: KindEval,
				Line: e.line,
				Msg:  fmt.Sprintf("helper %q: %v", e.name, err),
			}
		}
		return out, true, nil
	}
	return nil, false, nil
}

// truthy implements the template truthiness rule: absent values, false, empty
// strings and empty collections are falsy; everything else is truthy.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	return true
}

// Stringify renders a resolved value into template output. Composite values
// are JSON-encoded (with deterministic key order); numbers drop insignificant
// trailing zeros.
func Stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
