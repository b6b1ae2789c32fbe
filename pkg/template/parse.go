package template

import (
	"strconv"
	"strings"
)

type node interface{}

type textNode struct {
	text string
}

type exprNode struct {
	expr   expr
	offset int
}

type blockNode struct {
	kind     string // if, unless or each
	expr     expr
	body     []node
	elseBody []node
	offset   int

	inElse  bool
	chained bool // opened by {{else if}}, closed together with its parent
}

func (b *blockNode) add(n node) {
	if b.inElse {
		b.elseBody = append(b.elseBody, n)
	} else {
		b.body = append(b.body, n)
	}
}

type expr interface{}

type pathExpr struct {
	raw   string
	parts []string
}

type literalExpr struct {
	value any
}

type callExpr struct {
	helper *helper
	args   []expr
}

// parse builds the node tree for src.
func parse(src string) ([]node, error) {
	pieces, err := scan(src)
	if err != nil {
		return nil, err
	}

	root := &blockNode{}
	stack := []*blockNode{root}
	top := func() *blockNode { return stack[len(stack)-1] }

	for _, p := range pieces {
		if p.tag == nil {
			top().add(&textNode{text: p.text})
			continue
		}
		tag := p.tag
		if tag.kind == tagComment {
			continue
		}

		content := tag.content
		switch {
		case content == "":
			return nil, syntaxErr(tag.offset, "empty tag")

		case strings.HasPrefix(content, "#"):
			name, rest := splitWord(content[1:])
			block, err := openBlock(name, rest, tag.offset)
			if err != nil {
				return nil, err
			}
			top().add(block)
			stack = append(stack, block)

		case strings.HasPrefix(content, "/"):
			name := strings.TrimSpace(content[1:])
			if len(stack) == 1 {
				return nil, syntaxErr(tag.offset, "unexpected {{/%s}} without matching block", name)
			}
			for top().chained {
				stack = stack[:len(stack)-1]
			}
			if open := top(); open.kind != name {
				return nil, syntaxErr(tag.offset, "{{/%s}} does not close {{#%s}} opened at offset %d", name, open.kind, open.offset)
			}
			stack = stack[:len(stack)-1]

		case content == "else" || strings.HasPrefix(content, "else "):
			current := top()
			if len(stack) == 1 {
				return nil, syntaxErr(tag.offset, "{{else}} outside of a block")
			}
			if current.inElse {
				return nil, syntaxErr(tag.offset, "duplicate {{else}} in {{#%s}}", current.kind)
			}
			current.inElse = true

			rest := strings.TrimSpace(strings.TrimPrefix(content, "else"))
			if rest == "" {
				continue
			}
			name, args := splitWord(rest)
			if name != "if" && name != "unless" {
				return nil, syntaxErr(tag.offset, "unsupported {{else %s}}", name)
			}
			chained, err := openBlock(name, args, tag.offset)
			if err != nil {
				return nil, err
			}
			chained.chained = true
			current.add(chained)
			stack = append(stack, chained)

		default:
			e, err := parseExpr(content, tag.offset)
			if err != nil {
				return nil, err
			}
			top().add(&exprNode{expr: e, offset: tag.offset})
		}
	}

	if len(stack) > 1 {
		open := stack[1]
		for _, b := range stack[1:] {
			if !b.chained {
				open = b
			}
		}
		return nil, syntaxErr(open.offset, "unclosed {{#%s}}", open.kind)
	}
	return root.body, nil
}

func openBlock(name, args string, offset int) (*blockNode, error) {
	switch name {
	case "if", "unless", "each":
	default:
		return nil, syntaxErr(offset, "unknown block helper %q", name)
	}
	if strings.TrimSpace(args) == "" {
		return nil, syntaxErr(offset, "{{#%s}} requires an argument", name)
	}
	e, err := parseExpr(args, offset)
	if err != nil {
		return nil, err
	}
	return &blockNode{kind: name, expr: e, offset: offset}, nil
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t\n\r"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

type tokenKind int

const (
	tokPath tokenKind = iota
	tokString
	tokNumber
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string, offset int) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case c == '"' || c == '\'':
			j := i + 1
			var b strings.Builder
			for ; j < len(s) && s[j] != c; j++ {
				if s[j] == '\\' && j+1 < len(s) {
					j++
				}
				b.WriteByte(s[j])
			}
			if j >= len(s) {
				return nil, syntaxErr(offset, "unterminated string literal in %q", s)
			}
			tokens = append(tokens, token{kind: tokString, text: b.String()})
			i = j + 1
		case isNumberStart(s, i):
			j := i + 1
			for j < len(s) && (isDigit(s[j]) || s[j] == '.') {
				j++
			}
			tokens = append(tokens, token{kind: tokNumber, text: s[i:j]})
			i = j
		case isPathChar(c):
			j := i
			for j < len(s) && isPathChar(s[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokPath, text: s[i:j]})
			i = j
		default:
			return nil, syntaxErr(offset, "unexpected character %q in %q", c, s)
		}
	}
	return tokens, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberStart(s string, i int) bool {
	if isDigit(s[i]) {
		return true
	}
	return s[i] == '-' && i+1 < len(s) && isDigit(s[i+1])
}

func isPathChar(c byte) bool {
	return c == '_' || c == '.' || c == '@' || c == '$' || c == '-' || c == '/' || isDigit(c) ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

type exprParser struct {
	tokens []token
	pos    int
	offset int
	src    string
}

// parseExpr parses the inside of a tag: a single operand, or a helper name
// followed by its arguments.
func parseExpr(s string, offset int) (expr, error) {
	tokens, err := tokenize(s, offset)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, syntaxErr(offset, "empty expression")
	}

	p := &exprParser{tokens: tokens, offset: offset, src: s}
	var e expr
	if len(tokens) > 1 && tokens[0].kind == tokPath {
		e, err = p.parseCall(false)
	} else {
		e, err = p.parseOperand()
	}
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, syntaxErr(offset, "unexpected %q in %q", p.tokens[p.pos].text, s)
	}
	return e, nil
}

func (p *exprParser) parseCall(inParens bool) (expr, error) {
	name := p.tokens[p.pos]
	if name.kind != tokPath {
		return nil, syntaxErr(p.offset, "expected helper name in %q", p.src)
	}
	h, ok := helpers[name.text]
	if !ok {
		return nil, syntaxErr(p.offset, "unknown helper %q", name.text)
	}
	p.pos++

	var args []expr
	for p.pos < len(p.tokens) {
		if p.tokens[p.pos].kind == tokRParen {
			if !inParens {
				return nil, syntaxErr(p.offset, "unbalanced ')' in %q", p.src)
			}
			break
		}
		arg, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	if len(args) < h.minArgs || (h.maxArgs >= 0 && len(args) > h.maxArgs) {
		return nil, syntaxErr(p.offset, "helper %q expects %s, got %d", h.name, h.arity(), len(args))
	}
	return &callExpr{helper: h, args: args}, nil
}

func (p *exprParser) parseOperand() (expr, error) {
	if p.pos >= len(p.tokens) {
		return nil, syntaxErr(p.offset, "unexpected end of %q", p.src)
	}
	tok := p.tokens[p.pos]
	p.pos++

	switch tok.kind {
	case tokString:
		return &literalExpr{value: tok.text}, nil
	case tokNumber:
		n, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, syntaxErr(p.offset, "invalid number %q", tok.text)
		}
		return &literalExpr{value: n}, nil
	case tokLParen:
		if p.pos >= len(p.tokens) {
			return nil, syntaxErr(p.offset, "unbalanced '(' in %q", p.src)
		}
		call, err := p.parseCall(true)
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != tokRParen {
			return nil, syntaxErr(p.offset, "unbalanced '(' in %q", p.src)
		}
		p.pos++
		return call, nil
	case tokRParen:
		return nil, syntaxErr(p.offset, "unbalanced ')' in %q", p.src)
	}

	switch tok.text {
	case "true":
		return &literalExpr{value: true}, nil
	case "false":
		return &literalExpr{value: false}, nil
	case "null", "undefined":
		return &literalExpr{value: nil}, nil
	}
	return parsePath(tok.text, p.offset)
}

func parsePath(raw string, offset int) (*pathExpr, error) {
	if strings.HasPrefix(raw, "../") || strings.Contains(raw, "/") {
		return nil, syntaxErr(offset, "parent scope references are not supported in %q; outer names are visible directly", raw)
	}
	parts := strings.Split(raw, ".")
	for _, part := range parts {
		if part == "" {
			return nil, syntaxErr(offset, "invalid path %q", raw)
		}
	}
	for _, part := range parts[1:] {
		if strings.HasPrefix(part, "@") {
			return nil, syntaxErr(offset, "invalid path %q", raw)
		}
	}
	return &pathExpr{raw: raw, parts: parts}, nil
}
