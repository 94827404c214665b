package frontend

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vk/fortloom/internal/ident"
)

var (
	reModuleStart = regexp.MustCompile(`(?i)^\s*module\s+(\w+)\s*$`)
	reModuleEnd   = regexp.MustCompile(`(?i)^\s*end\s*module\b`)
	reSubStart    = regexp.MustCompile(`(?i)^\s*(?:(?:pure|elemental|recursive)\s+)*subroutine\s+(\w+)\s*(?:\(([^)]*)\))?\s*$`)
	reSubEnd      = regexp.MustCompile(`(?i)^\s*end\s*subroutine\b`)
	reContains    = regexp.MustCompile(`(?i)^\s*contains\s*$`)
	reTypeStart   = regexp.MustCompile(`(?i)^\s*type(?:\s*::\s*|\s+)(\w+)\s*$`)
	reTypeEnd     = regexp.MustCompile(`(?i)^\s*end\s*type\b`)
	reCall        = regexp.MustCompile(`(?i)^\s*call\s+(\w+)\s*(?:\((.*)\))?\s*$`)
	reDo          = regexp.MustCompile(`(?i)^\s*do\b\s*(.*)$`)
	reEndDo       = regexp.MustCompile(`(?i)^\s*end\s*do\b`)
	reIfThen      = regexp.MustCompile(`(?i)^\s*if\s*\((.*)\)\s*then\s*$`)
	reElse        = regexp.MustCompile(`(?i)^\s*else\s*$`)
	reEndIf       = regexp.MustCompile(`(?i)^\s*end\s*if\b`)
	reAssign      = regexp.MustCompile(`^\s*([A-Za-z]\w*(?:\([^)]*\))?(?:%\w+(?:\([^)]*\))?)*)\s*=\s*([^=].*)$`)
	reTypeSpec    = regexp.MustCompile(`(?i)^(real|integer|logical|character|complex|class|type)\b\s*(?:\(\s*([\w=*:, ]+)\s*\))?`)
	reDimension   = regexp.MustCompile(`(?i)\bdimension\s*\(([^)]*)\)`)
	reEntity      = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?`)
)

type parser struct {
	lines    []string
	pos      int
	typedefs map[string]*DerivedType
}

// parseSource parses one source unit into modules and free subroutines.
func parseSource(src string, opts Options) (*SourceFile, error) {
	p := &parser{
		lines:    normalize(src, opts.Preprocess),
		typedefs: make(map[string]*DerivedType, len(opts.TypeDefs)),
	}
	for name, td := range opts.TypeDefs {
		p.typedefs[ident.Canon(name)] = td
	}

	file := &SourceFile{}
	for !p.done() {
		line := p.peek()
		switch {
		case reModuleStart.MatchString(line):
			mod, err := p.parseModule()
			if err != nil {
				return nil, err
			}
			file.Modules = append(file.Modules, mod)
		case reSubStart.MatchString(line):
			r, err := p.parseRoutine()
			if err != nil {
				return nil, err
			}
			file.Subroutines = append(file.Subroutines, r)
		default:
			p.next()
		}
	}
	return file, nil
}

// normalize splits the raw text into logical lines. When preprocess is set,
// continuation lines (trailing `&`) are joined into single statements.
func normalize(src string, preprocess bool) []string {
	raw := strings.Split(src, "\n")
	if !preprocess {
		return raw
	}
	var out []string
	var pending string
	for _, line := range raw {
		stripped := stripInlineComment(line)
		trimmed := strings.TrimRight(stripped, " \t\r")
		if pending != "" {
			// Continuation bodies may repeat the marker at line start.
			trimmed = strings.TrimPrefix(strings.TrimLeft(trimmed, " \t"), "&")
		}
		if strings.HasSuffix(trimmed, "&") {
			pending += strings.TrimSuffix(trimmed, "&")
			continue
		}
		if pending != "" {
			out = append(out, pending+trimmed)
			pending = ""
			continue
		}
		out = append(out, line)
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}

// stripInlineComment removes a trailing `!` comment, respecting quoted
// strings. A line that is nothing but a comment is returned unchanged so the
// statement parser can keep it as a Comment node.
func stripInlineComment(line string) string {
	if strings.HasPrefix(strings.TrimSpace(line), "!") {
		return line
	}
	var inSingle, inDouble bool
	for i, r := range line {
		switch r {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '!':
			if !inSingle && !inDouble {
				return line[:i]
			}
		}
	}
	return line
}

func (p *parser) done() bool {
	return p.pos >= len(p.lines)
}

func (p *parser) peek() string {
	return stripInlineComment(p.lines[p.pos])
}

func (p *parser) next() string {
	line := p.peek()
	p.pos++
	return line
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseModule() (*Module, error) {
	m := reModuleStart.FindStringSubmatch(p.next())
	mod := &Module{Name: m[1], TypeDefs: make(map[string]*DerivedType)}
	for !p.done() {
		line := p.peek()
		switch {
		case reModuleEnd.MatchString(line):
			p.next()
			return mod, nil
		case reTypeStart.MatchString(line):
			td, err := p.parseTypeDef()
			if err != nil {
				return nil, err
			}
			mod.TypeDefs[ident.Canon(td.Name)] = td
			p.typedefs[ident.Canon(td.Name)] = td
		case reSubStart.MatchString(line):
			r, err := p.parseRoutine()
			if err != nil {
				return nil, err
			}
			mod.Routines = append(mod.Routines, r)
		default:
			p.next()
		}
	}
	return nil, p.errf("module %s has no end marker", mod.Name)
}

func (p *parser) parseTypeDef() (*DerivedType, error) {
	m := reTypeStart.FindStringSubmatch(p.next())
	td := &DerivedType{Name: m[1]}
	for !p.done() {
		line := p.next()
		if reTypeEnd.MatchString(line) {
			return td, nil
		}
		if decl := parseDeclaration(line, p.typedefs); decl != nil {
			td.Fields = append(td.Fields, decl.Variables...)
		}
	}
	return nil, p.errf("type %s has no end marker", td.Name)
}

func (p *parser) parseRoutine() (*Routine, error) {
	m := reSubStart.FindStringSubmatch(p.next())
	r := &Routine{Name: m[1]}
	argNames := splitList(m[2])

	for !p.done() {
		line := p.peek()
		switch {
		case reSubEnd.MatchString(line):
			p.next()
			attachArguments(r, argNames)
			return r, nil
		case reContains.MatchString(line):
			p.next()
			for !p.done() && !reSubEnd.MatchString(p.peek()) {
				if reSubStart.MatchString(p.peek()) {
					member, err := p.parseRoutine()
					if err != nil {
						return nil, err
					}
					r.Members = append(r.Members, member)
				} else {
					p.next()
				}
			}
		default:
			node, err := p.parseStatement(r)
			if err != nil {
				return nil, err
			}
			if node != nil {
				r.Body = append(r.Body, node)
			}
		}
	}
	return nil, p.errf("subroutine %s has no end marker", r.Name)
}

// parseStatement consumes one statement (or one nested block) of a routine
// body and returns its IR node, or nil for statements outside the recognized
// subset.
func (p *parser) parseStatement(r *Routine) (Node, error) {
	line := p.peek()
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, "!"):
		p.next()
		return &Comment{Text: trimmed}, nil

	case reDo.MatchString(line):
		control := strings.TrimSpace(reDo.FindStringSubmatch(p.next())[1])
		body, err := p.parseNested(r, reEndDo, "do")
		if err != nil {
			return nil, err
		}
		return &Loop{Control: control, Body: body}, nil

	case reIfThen.MatchString(line):
		cond := strings.TrimSpace(reIfThen.FindStringSubmatch(p.next())[1])
		return p.parseConditional(r, cond)

	default:
		p.next()
		return p.parseSimple(line, r), nil
	}
}

// parseNested collects statements until the terminating marker, which is
// consumed.
func (p *parser) parseNested(r *Routine, end *regexp.Regexp, kind string) ([]Node, error) {
	var body []Node
	for !p.done() {
		line := p.peek()
		if end.MatchString(line) {
			p.next()
			return body, nil
		}
		if reSubEnd.MatchString(line) {
			return nil, p.errf("%s block has no end marker", kind)
		}
		node, err := p.parseStatement(r)
		if err != nil {
			return nil, err
		}
		if node != nil {
			body = append(body, node)
		}
	}
	return nil, p.errf("%s block has no end marker", kind)
}

func (p *parser) parseConditional(r *Routine, cond string) (Node, error) {
	node := &Conditional{Condition: cond}
	inElse := false
	for !p.done() {
		line := p.peek()
		switch {
		case reEndIf.MatchString(line):
			p.next()
			return node, nil
		case reElse.MatchString(line):
			p.next()
			inElse = true
		case reSubEnd.MatchString(line):
			return nil, p.errf("if block has no end marker")
		default:
			stmt, err := p.parseStatement(r)
			if err != nil {
				return nil, err
			}
			if stmt == nil {
				continue
			}
			if inElse {
				node.Else = append(node.Else, stmt)
			} else {
				node.Body = append(node.Body, stmt)
			}
		}
	}
	return nil, p.errf("if block has no end marker")
}

// parseSimple classifies a single-line statement. Statements outside the
// recognized subset yield nil without error.
func (p *parser) parseSimple(line string, r *Routine) Node {
	if m := reCall.FindStringSubmatch(line); m != nil {
		return &CallStatement{Name: m[1], Arguments: splitList(m[2])}
	}
	if decl := parseDeclaration(line, p.typedefs); decl != nil {
		r.Variables = append(r.Variables, decl.Variables...)
		return decl
	}
	if m := reAssign.FindStringSubmatch(line); m != nil {
		return &Assignment{Target: strings.TrimSpace(m[1]), Expr: strings.TrimSpace(m[2])}
	}
	return nil
}

// parseDeclaration parses a `<type-spec>[, attrs] :: entity-list` line. It
// returns nil when the line is not a declaration.
func parseDeclaration(line string, typedefs map[string]*DerivedType) *Declaration {
	idx := strings.Index(line, "::")
	if idx < 0 {
		return nil
	}
	prefix := strings.TrimSpace(line[:idx])
	rest := strings.TrimSpace(line[idx+2:])

	m := reTypeSpec.FindStringSubmatch(prefix)
	if m == nil {
		return nil
	}

	base := strings.ToLower(m[1])
	typeName := base
	derived := false
	if base == "type" || base == "class" {
		typeName = strings.TrimSpace(m[2])
		if typeName == "" {
			return nil
		}
		derived = true
	}

	baseShape := ""
	if dm := reDimension.FindStringSubmatch(prefix); dm != nil {
		baseShape = "(" + dm[1] + ")"
	}

	decl := &Declaration{TypeName: typeName, Raw: strings.TrimSpace(line)}
	for _, ent := range splitList(rest) {
		em := reEntity.FindStringSubmatch(strings.TrimSpace(ent))
		if em == nil {
			continue
		}
		v := &Variable{Name: em[1], TypeName: typeName, Shape: baseShape}
		if em[2] != "" {
			v.Shape = "(" + em[2] + ")"
		}
		if derived {
			if td, ok := typedefs[ident.Canon(typeName)]; ok {
				v.Fields = td.Fields
			}
		}
		decl.Variables = append(decl.Variables, v)
	}
	if len(decl.Variables) == 0 {
		return nil
	}
	return decl
}

// splitList splits a comma-separated list at the top parenthesis level.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}

// attachArguments resolves the dummy argument names against the declared
// variables so arguments carry full type information where available.
func attachArguments(r *Routine, names []string) {
	byName := make(map[string]*Variable, len(r.Variables))
	for _, v := range r.Variables {
		byName[ident.Canon(v.Name)] = v
	}
	for _, n := range names {
		if v, ok := byName[ident.Canon(n)]; ok {
			r.Arguments = append(r.Arguments, v)
		} else {
			r.Arguments = append(r.Arguments, &Variable{Name: n})
		}
	}
}
