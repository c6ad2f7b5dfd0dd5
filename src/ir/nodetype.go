package ir

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// NodeType differentiates the types of nodes in the abstract syntax tree.
type NodeType int

// Node represents a single node in the abstract syntax tree.
type Node struct {
	Typ      NodeType    // The type of Node, i.e. a declaration, an if-statement or a literal.
	Line     int         // Line in source code Node is declared.
	Pos      int         // Position on the line in source code Node is declared.
	Data     interface{} // Data node is holding: literal values, identifier names, operators.
	Entry    *Symbol     // Symbol table entry bound to this node, if any.
	Children []*Node     // Children of this node that constitute its local sub-tree.
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	PROGRAM NodeType = iota
	DECLARATION
	ASSIGNMENT
	IF
	IF_ELSE
	WHILE
	RETURN
	BLOCK
	BLOCK_ENTER
	BLOCK_EXIT
	FUNC_DECL
	FUNC_CALL
	CAST
	NOT
	BINARY
	IDENTIFIER
	INT_LITERAL
	FLOAT_LITERAL
	BOOL_LITERAL
	STRING_LITERAL
	CHAR_LITERAL
)

// nt provides an array of strings used for printing NodeType in a print friendly manner.
var nt = [...]string{
	"PROGRAM",
	"DECLARATION",
	"ASSIGNMENT",
	"IF",
	"IF_ELSE",
	"WHILE",
	"RETURN",
	"BLOCK",
	"BLOCK_ENTER",
	"BLOCK_EXIT",
	"FUNC_DECL",
	"FUNC_CALL",
	"CAST",
	"NOT",
	"BINARY",
	"IDENTIFIER",
	"INT_LITERAL",
	"FLOAT_LITERAL",
	"BOOL_LITERAL",
	"STRING_LITERAL",
	"CHAR_LITERAL",
}

// DeclData is the payload of a DECLARATION node.
type DeclData struct {
	Type  Datatype
	Name  string
	Const bool
}

// FuncDeclData is the payload of a FUNC_DECL node: a function signature.
// Bodies are consumed by the parser but never attached here; they are not
// lowered by anything downstream.
type FuncDeclData struct {
	Name   string
	Params []Datatype
	Return Datatype
}

// ----------------------
// ----- functions ------
// ----------------------

// String returns a print friendly string of Node n.
func (n *Node) String() string {
	if n == nil {
		return "---> [NIL POINTER]"
	}
	typ := int(n.Typ)
	if typ > len(nt) || typ < 0 {
		return fmt.Sprintf("---> MISCONFIGURED NODE [Node.Typ = %d]", typ)
	}
	if n.Data == nil {
		return nt[n.Typ]
	}
	return fmt.Sprintf("%s [%v]", nt[n.Typ], n.Data)
}

// Type returns a print friendly string of the Node n's type.
func (n *Node) Type() string {
	return nt[n.Typ]
}

// Print recursively prints this Node and all its Children while indenting for every recursive call.
// depth is the number of times nodes are padded to the right, having the root node with padding 0.
func (n *Node) Print(depth int, showDepth bool) {
	if depth < 0 {
		depth = 0
	}

	if n == nil {
		if showDepth {
			fmt.Printf("%d %*c%s\n", depth, depth<<1, 0, "---> NIL")
		} else {
			fmt.Printf("%*c%s\n", depth<<1, 0, "---> NIL")
		}
		return
	}
	if showDepth {
		fmt.Printf("%d %*c%s\n", depth, depth<<1, 0, n.String())
	} else {
		fmt.Printf("%*c%s\n", depth<<1, 0, n.String())
	}

	for _, e := range n.Children {
		e.Print(depth+1, showDepth)
	}
}
