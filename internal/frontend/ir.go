package frontend

// NodeTag identifies the variant of an IR node. The set of variants is
// closed; consumers dispatch on the tag rather than on runtime type names.
type NodeTag uint8

const (
	TagComment NodeTag = iota
	TagDeclaration
	TagAssignment
	TagCallStatement
	TagConditional
	TagLoop

	tagCount
)

// Node is a single vertex in a routine's intermediate representation.
type Node interface {
	Tag() NodeTag
}

// Comment is a full-line source comment.
type Comment struct {
	Text string
}

func (*Comment) Tag() NodeTag { return TagComment }

// Declaration is a variable declaration statement covering one or more
// entities of the same nominal type.
type Declaration struct {
	TypeName  string
	Variables []*Variable
	Raw       string
}

func (*Declaration) Tag() NodeTag { return TagDeclaration }

// Assignment is a simple `target = expr` statement. Both sides are kept as
// raw expression text.
type Assignment struct {
	Target string
	Expr   string
}

func (*Assignment) Tag() NodeTag { return TagAssignment }

// CallStatement is a `call name(args)` site. Signature is nil until
// interprocedural enrichment attaches the callee's interface.
type CallStatement struct {
	Name      string
	Arguments []string
	Signature *Signature
}

func (*CallStatement) Tag() NodeTag { return TagCallStatement }

// Conditional is an `if (...) then ... [else ...] end if` block.
type Conditional struct {
	Condition string
	Body      []Node
	Else      []Node
}

func (*Conditional) Tag() NodeTag { return TagConditional }

// Loop is a `do ... end do` block.
type Loop struct {
	Control string
	Body    []Node
}

func (*Loop) Tag() NodeTag { return TagLoop }

// children is the traversal table, keyed by variant tag. Leaf variants have
// a nil entry.
var children = [tagCount]func(Node) []Node{
	TagConditional: func(n Node) []Node {
		c := n.(*Conditional)
		out := make([]Node, 0, len(c.Body)+len(c.Else))
		out = append(out, c.Body...)
		out = append(out, c.Else...)
		return out
	},
	TagLoop: func(n Node) []Node {
		return n.(*Loop).Body
	},
}

// Walk visits every node in source order, recursing into nested blocks.
func Walk(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		if kids := children[n.Tag()]; kids != nil {
			Walk(kids(n), fn)
		}
	}
}

// FindNodes returns every node carrying the given tag, in source order.
func FindNodes(tag NodeTag, nodes []Node) []Node {
	var out []Node
	Walk(nodes, func(n Node) {
		if n.Tag() == tag {
			out = append(out, n)
		}
	})
	return out
}

// FindCalls returns every call statement in source order.
func FindCalls(nodes []Node) []*CallStatement {
	found := FindNodes(TagCallStatement, nodes)
	calls := make([]*CallStatement, len(found))
	for i, n := range found {
		calls[i] = n.(*CallStatement)
	}
	return calls
}

// Filter rebuilds the node list keeping only nodes for which keep returns
// true. Nested blocks are filtered in place; dropping a container drops its
// contents.
func Filter(nodes []Node, keep func(Node) bool) []Node {
	var out []Node
	for _, n := range nodes {
		if !keep(n) {
			continue
		}
		switch v := n.(type) {
		case *Conditional:
			v.Body = Filter(v.Body, keep)
			v.Else = Filter(v.Else, keep)
		case *Loop:
			v.Body = Filter(v.Body, keep)
		}
		out = append(out, n)
	}
	return out
}
