// internal/style/declarations.go
package style

import (
	"strconv"
	"strings"
)

// Declaration is a single property:value pair from a declaration list.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// ParseDeclarations parses a CSS declaration list (the content of a style
// attribute or rule body, without braces). It is a real declaration parser
// rather than line splitting: quoted strings and parenthesized values are
// consumed atomically, so multi-line values like comma-separated box-shadows
// survive intact.
func ParseDeclarations(input string) []Declaration {
	p := &declParser{input: input}
	var decls []Declaration
	for {
		p.consumeWhitespace()
		if p.eof() {
			break
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		if p.currentChar() == ';' {
			p.pos++
			continue
		}
		prop, val, important := p.parseDeclaration()
		if prop != "" && val != "" {
			decls = append(decls, Declaration{
				Property:  strings.ToLower(prop),
				Value:     val,
				Important: important,
			})
		}
	}
	return decls
}

// DeclarationsToMap flattens a declaration list into a property→value map.
// Later declarations win, matching cascade order within one list.
func DeclarationsToMap(input string) map[string]string {
	decls := ParseDeclarations(input)
	m := make(map[string]string, len(decls))
	for _, d := range decls {
		m[d.Property] = d.Value
	}
	return m
}

// ParsePx parses a pixel length ("12px", "12"), returning 0 for anything it
// cannot understand. Non-px units are out of scope for the heuristics.
func ParsePx(value string) float64 {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.TrimSuffix(value, "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return f
}

// PaddingBox is a resolved shorthand padding.
type PaddingBox struct {
	Top, Right, Bottom, Left float64
}

// ParsePadding resolves the 1-4 value padding shorthand to pixels.
func ParsePadding(value string) PaddingBox {
	fields := strings.Fields(strings.TrimSpace(value))
	px := make([]float64, 0, 4)
	for _, f := range fields {
		px = append(px, ParsePx(f))
	}
	switch len(px) {
	case 1:
		return PaddingBox{px[0], px[0], px[0], px[0]}
	case 2:
		return PaddingBox{px[0], px[1], px[0], px[1]}
	case 3:
		return PaddingBox{px[0], px[1], px[2], px[1]}
	case 4:
		return PaddingBox{px[0], px[1], px[2], px[3]}
	}
	return PaddingBox{}
}

// -- declaration lexer --

type declParser struct {
	input string
	pos   int
}

func (p *declParser) parseDeclaration() (prop, val string, important bool) {
	if !isIdentStart(p.currentChar()) {
		p.skipTo(';')
		if !p.eof() {
			p.pos++
		}
		return
	}
	prop = p.parseIdentifier()
	p.consumeWhitespace()

	if p.eof() || p.currentChar() != ':' {
		p.skipTo(';')
		if !p.eof() {
			p.pos++
		}
		return
	}
	p.pos++
	p.consumeWhitespace()

	val = p.parseValue()

	if strings.HasSuffix(strings.ToLower(val), "!important") {
		important = true
		val = strings.TrimSpace(val[:len(val)-len("!important")])
	}

	p.consumeWhitespace()
	if !p.eof() && p.currentChar() == ';' {
		p.pos++
	}
	return
}

func (p *declParser) parseValue() string {
	start := p.pos
	for !p.eof() {
		ch := p.currentChar()
		if ch == ';' {
			break
		}
		if ch == '"' || ch == '\'' {
			p.skipQuotedString(ch)
			continue
		}
		if ch == '(' {
			p.skipBlock('(', ')')
			continue
		}
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}

func (p *declParser) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *declParser) eof() bool { return p.pos >= len(p.input) }

func (p *declParser) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *declParser) consumeWhitespace() {
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
}

func (p *declParser) startsWith(s string) bool {
	if p.pos+len(s) > len(p.input) {
		return false
	}
	return p.input[p.pos:p.pos+len(s)] == s
}

func (p *declParser) skipComment() {
	p.pos += 2
	end := strings.Index(p.input[p.pos:], "*/")
	if end == -1 {
		p.pos = len(p.input)
	} else {
		p.pos += end + 2
	}
}

func (p *declParser) skipTo(target byte) {
	for !p.eof() && p.currentChar() != target {
		p.pos++
	}
}

func (p *declParser) skipQuotedString(quote byte) {
	p.pos++ // opening quote
	for !p.eof() {
		ch := p.input[p.pos]
		p.pos++
		if ch == '\\' && !p.eof() {
			p.pos++
			continue
		}
		if ch == quote {
			return
		}
	}
}

func (p *declParser) skipBlock(open, close byte) {
	p.pos++ // opening bracket
	depth := 1
	for !p.eof() && depth > 0 {
		ch := p.input[p.pos]
		switch ch {
		case open:
			depth++
		case close:
			depth--
		case '"', '\'':
			p.skipQuotedString(ch)
			continue
		}
		p.pos++
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isIdentStart(ch byte) bool {
	return ch == '-' || ch == '_' ||
		('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || ('0' <= ch && ch <= '9')
}
