package ir

import (
	"fmt"

	"vslc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// SemanticError is the typed failure returned by Analyzer.Analyze. It
// describes the first violation encountered in source order.
type SemanticError struct {
	Msg       string
	Line, Pos int
}

func (e *SemanticError) Error() string {
	return e.Msg
}

// Analyzer performs the scope-aware semantic pass described by the data
// model: typing, declaration-before-use, initialization-before-read,
// constness, cast legality and function signatures. An Analyzer is
// stateful only for the duration of one Analyze call; it holds no
// package-level mutable state, so concurrent Analyze calls on distinct
// Analyzer values never interfere with each other.
type Analyzer struct {
	global    *Scope
	active    *util.Stack // of *Scope, innermost on top; used for lookups and for the current scope.
	allScopes []*Scope    // every scope created during the pass, for deferred checks.
	functions map[string]*FuncSymbol
	warnings  []string
	depth     int
}

// NewAnalyzer returns a fresh Analyzer ready for one Analyze call.
func NewAnalyzer() *Analyzer {
	return &Analyzer{functions: make(map[string]*FuncSymbol)}
}

// ----------------------
// ----- Lookup tables---
// ----------------------

// castLUT holds the legal CAST(target, source) pairs.
var castLUT = map[Datatype]map[Datatype]bool{
	DataInt:    {DataString: true, DataFloat: true, DataChar: true},
	DataFloat:  {DataString: true, DataInt: true, DataChar: true},
	DataString: {DataInt: true, DataFloat: true, DataChar: true},
	DataBool:   {DataInt: true, DataFloat: true, DataString: true},
}

// additiveTypes are the operand types '+' accepts (equal-typed operands only).
var additiveTypes = map[Datatype]bool{DataInt: true, DataFloat: true, DataString: true}

// numericTypes are the operand types '-', '*', '/' and relational operators accept.
var numericTypes = map[Datatype]bool{DataInt: true, DataFloat: true}

// ---------------------
// ----- functions -----
// ---------------------

// Analyze runs the semantic pass over ast and returns the resulting symbol
// table, or the first SemanticError encountered in source order.
func (a *Analyzer) Analyze(ast *Node) (*SymbolTable, error) {
	a.global = newScope("global")
	a.active = &util.Stack{}
	a.active.Push(a.global)
	a.allScopes = []*Scope{a.global}
	a.functions = make(map[string]*FuncSymbol)
	a.warnings = nil
	a.depth = 0

	if err := a.analyzeStmts(ast.Children); err != nil {
		return nil, err
	}

	// Deferred checks: used-before-initialized is fatal, unused is a warning.
	for _, s := range a.allScopes {
		for _, sym := range s.vars {
			if sym.Used && !sym.Initialized {
				return nil, &SemanticError{Msg: fmt.Sprintf("variable '%s' used before initialization", sym.Name), Line: sym.Line, Pos: sym.Pos}
			}
		}
	}
	for _, s := range a.allScopes {
		for _, sym := range s.vars {
			if !sym.Used {
				a.warnings = append(a.warnings, fmt.Sprintf("variable '%s' declared in scope '%s' is never used", sym.Name, s.Name))
			}
		}
	}

	return &SymbolTable{Global: a.global, Functions: a.functions, Warnings: a.warnings}, nil
}

// currentScope returns the innermost active scope.
func (a *Analyzer) currentScope() *Scope {
	return a.active.Peek().(*Scope)
}

// lookup searches the active scope stack innermost-outward for name.
func (a *Analyzer) lookup(name string) (*Symbol, bool) {
	for i1 := 1; i1 <= a.active.Size(); i1++ {
		s := a.active.Get(i1).(*Scope)
		if sym, ok := s.get(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// shadows reports whether name is visible in an outer scope than the
// current one (used to decide whether a fresh declaration should warn).
func (a *Analyzer) shadows(name string) bool {
	for i1 := 2; i1 <= a.active.Size(); i1++ {
		s := a.active.Get(i1).(*Scope)
		if _, ok := s.get(name); ok {
			return true
		}
	}
	return false
}

// isValidIdentifier mirrors the lexical rule: must begin with a letter or
// underscore, and every rune must be a letter, digit or underscore.
func isValidIdentifier(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i1, r := range name {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i1 == 0 {
			if !isAlpha {
				return false
			}
		} else if !isAlpha && !isDigit {
			return false
		}
	}
	return true
}

// analyzeStmts analyzes a flat statement list, the shape shared by the
// program's top-level and by every BLOCK's children. BLOCK_ENTER and
// BLOCK_EXIT markers push and pop a lexical scope, but are otherwise
// transparent.
func (a *Analyzer) analyzeStmts(stmts []*Node) error {
	for _, n := range stmts {
		if err := a.analyzeStmt(n); err != nil {
			return err
		}
	}
	return nil
}

// analyzeBlock analyzes a BLOCK node's children list (expected to contain
// its own BLOCK_ENTER/BLOCK_EXIT markers).
func (a *Analyzer) analyzeBlock(block *Node) error {
	if block == nil {
		return nil
	}
	return a.analyzeStmts(block.Children)
}

func (a *Analyzer) analyzeStmt(n *Node) error {
	switch n.Typ {
	case BLOCK_ENTER:
		a.depth++
		s := newScope(fmt.Sprintf("block_%d", a.depth))
		a.allScopes = append(a.allScopes, s)
		a.active.Push(s)
		return nil
	case BLOCK_EXIT:
		a.active.Pop()
		a.depth--
		return nil
	case DECLARATION:
		return a.analyzeDeclaration(n)
	case ASSIGNMENT:
		return a.analyzeAssignment(n)
	case IF:
		return a.analyzeIf(n, false)
	case IF_ELSE:
		return a.analyzeIf(n, true)
	case WHILE:
		return a.analyzeWhile(n)
	case RETURN:
		// Accepted without a contextual return-type check: function bodies
		// are not descended, so there is no enclosing signature to check
		// against. Preserves the reference's lax behavior (see DESIGN.md).
		if len(n.Children) == 1 {
			_, err := a.analyzeExpr(n.Children[0])
			return err
		}
		return nil
	case FUNC_DECL:
		return a.analyzeFuncDecl(n)
	case FUNC_CALL:
		_, err := a.analyzeExpr(n)
		return err
	case BLOCK:
		return a.analyzeBlock(n)
	default:
		return &SemanticError{Msg: fmt.Sprintf("unrecognized statement node %s", n.Type()), Line: n.Line, Pos: n.Pos}
	}
}

func (a *Analyzer) analyzeDeclaration(n *Node) error {
	d, ok := n.Data.(*DeclData)
	if !ok {
		return &SemanticError{Msg: "malformed DECLARATION node", Line: n.Line, Pos: n.Pos}
	}
	if !isValidIdentifier(d.Name) {
		return &SemanticError{Msg: fmt.Sprintf("invalid identifier '%s'", d.Name), Line: n.Line, Pos: n.Pos}
	}

	sym := &Symbol{Name: d.Name, Type: d.Type, Const: d.Const, Line: n.Line, Pos: n.Pos}

	if len(n.Children) == 1 {
		t, err := a.analyzeExpr(n.Children[0])
		if err != nil {
			return err
		}
		if t != d.Type {
			return &SemanticError{Msg: fmt.Sprintf("cannot initialize variable '%s' of type '%s' with value of type '%s'", d.Name, d.Type, t), Line: n.Line, Pos: n.Pos}
		}
		sym.Initialized = true
		sym.Used = true
	} else if d.Const {
		return &SemanticError{Msg: fmt.Sprintf("constant '%s' must be initialized", d.Name), Line: n.Line, Pos: n.Pos}
	}

	cur := a.currentScope()
	if a.shadows(d.Name) {
		a.warnings = append(a.warnings, fmt.Sprintf("variable '%s' in scope '%s' shadows a variable in an outer scope", d.Name, cur.Name))
	}
	if !cur.declare(sym) {
		return &SemanticError{Msg: fmt.Sprintf("variable '%s' already declared in scope '%s'", d.Name, cur.Name), Line: n.Line, Pos: n.Pos}
	}
	return nil
}

func (a *Analyzer) analyzeAssignment(n *Node) error {
	name, _ := n.Data.(string)
	sym, ok := a.lookup(name)
	if !ok {
		return &SemanticError{Msg: fmt.Sprintf("variable '%s' not declared", name), Line: n.Line, Pos: n.Pos}
	}
	if sym.Const {
		return &SemanticError{Msg: fmt.Sprintf("cannot modify constant '%s'", name), Line: n.Line, Pos: n.Pos}
	}

	// Mark initialized/used before evaluating the right-hand side so that
	// "x = x + 1" is valid immediately after "int x = 0;" (self-assignment
	// of an already-initialized variable remains valid).
	sym.Initialized = true
	sym.Used = true

	if len(n.Children) != 1 {
		return &SemanticError{Msg: "malformed ASSIGNMENT node", Line: n.Line, Pos: n.Pos}
	}
	t, err := a.analyzeExpr(n.Children[0])
	if err != nil {
		return err
	}
	if t != sym.Type {
		return &SemanticError{Msg: fmt.Sprintf("cannot assign value of type '%s' to variable '%s' of type '%s'", t, name, sym.Type), Line: n.Line, Pos: n.Pos}
	}
	return nil
}

func (a *Analyzer) analyzeIf(n *Node, hasElse bool) error {
	if len(n.Children) < 2 {
		return &SemanticError{Msg: "malformed IF node", Line: n.Line, Pos: n.Pos}
	}
	t, err := a.analyzeExpr(n.Children[0])
	if err != nil {
		return err
	}
	if t != DataBool {
		return &SemanticError{Msg: "invalid condition in 'if': expected 'bool'", Line: n.Line, Pos: n.Pos}
	}
	if err := a.analyzeBlock(n.Children[1]); err != nil {
		return err
	}
	if hasElse {
		if len(n.Children) < 3 {
			return &SemanticError{Msg: "malformed IF_ELSE node", Line: n.Line, Pos: n.Pos}
		}
		return a.analyzeBlock(n.Children[2])
	}
	return nil
}

func (a *Analyzer) analyzeWhile(n *Node) error {
	if len(n.Children) != 2 {
		return &SemanticError{Msg: "malformed WHILE node", Line: n.Line, Pos: n.Pos}
	}
	t, err := a.analyzeExpr(n.Children[0])
	if err != nil {
		return err
	}
	if t != DataBool {
		return &SemanticError{Msg: "invalid condition in 'while': expected 'bool'", Line: n.Line, Pos: n.Pos}
	}
	return a.analyzeBlock(n.Children[1])
}

func (a *Analyzer) analyzeFuncDecl(n *Node) error {
	f, ok := n.Data.(*FuncDeclData)
	if !ok {
		return &SemanticError{Msg: "malformed FUNC_DECL node", Line: n.Line, Pos: n.Pos}
	}
	if _, ok := a.functions[f.Name]; ok {
		return &SemanticError{Msg: fmt.Sprintf("function '%s' already declared", f.Name), Line: n.Line, Pos: n.Pos}
	}
	a.functions[f.Name] = &FuncSymbol{Name: f.Name, Params: f.Params, Return: f.Return}
	return nil
}

// analyzeExpr type-checks an expression node, marking identifiers used as a
// side effect, and returns its resulting Datatype.
func (a *Analyzer) analyzeExpr(n *Node) (Datatype, error) {
	switch n.Typ {
	case INT_LITERAL:
		return DataInt, nil
	case FLOAT_LITERAL:
		return DataFloat, nil
	case BOOL_LITERAL:
		return DataBool, nil
	case STRING_LITERAL:
		return DataString, nil
	case CHAR_LITERAL:
		return DataChar, nil
	case IDENTIFIER:
		name, _ := n.Data.(string)
		sym, ok := a.lookup(name)
		if !ok {
			return 0, &SemanticError{Msg: fmt.Sprintf("variable '%s' not declared", name), Line: n.Line, Pos: n.Pos}
		}
		sym.Used = true
		return sym.Type, nil
	case NOT:
		if len(n.Children) != 1 {
			return 0, &SemanticError{Msg: "malformed NOT node", Line: n.Line, Pos: n.Pos}
		}
		t, err := a.analyzeExpr(n.Children[0])
		if err != nil {
			return 0, err
		}
		if t != DataBool {
			return 0, &SemanticError{Msg: "invalid operand to '!': expected 'bool'", Line: n.Line, Pos: n.Pos}
		}
		return DataBool, nil
	case CAST:
		target, _ := n.Data.(Datatype)
		if len(n.Children) != 1 {
			return 0, &SemanticError{Msg: "malformed CAST node", Line: n.Line, Pos: n.Pos}
		}
		src, err := a.analyzeExpr(n.Children[0])
		if err != nil {
			return 0, err
		}
		if !castLUT[target][src] {
			return 0, &SemanticError{Msg: fmt.Sprintf("invalid cast from '%s' to '%s'", src, target), Line: n.Line, Pos: n.Pos}
		}
		return target, nil
	case BINARY:
		return a.analyzeBinary(n)
	case FUNC_CALL:
		return a.analyzeCall(n)
	default:
		return 0, &SemanticError{Msg: fmt.Sprintf("unrecognized expression node %s", n.Type()), Line: n.Line, Pos: n.Pos}
	}
}

func (a *Analyzer) analyzeBinary(n *Node) (Datatype, error) {
	op, _ := n.Data.(string)
	if len(n.Children) != 2 {
		return 0, &SemanticError{Msg: "malformed BINARY node", Line: n.Line, Pos: n.Pos}
	}
	lt, err := a.analyzeExpr(n.Children[0])
	if err != nil {
		return 0, err
	}
	rt, err := a.analyzeExpr(n.Children[1])
	if err != nil {
		return 0, err
	}

	switch op {
	case "+":
		if lt == rt && additiveTypes[lt] {
			return lt, nil
		}
		if (lt == DataString) != (rt == DataString) && (numericTypes[lt] || numericTypes[rt]) {
			return 0, &SemanticError{Msg: fmt.Sprintf("invalid concatenation between %s and %s", lt, rt), Line: n.Line, Pos: n.Pos}
		}
		return 0, &SemanticError{Msg: fmt.Sprintf("incompatible operand types '%s' and '%s' for '+'", lt, rt), Line: n.Line, Pos: n.Pos}
	case "-", "*", "/":
		if lt == rt && numericTypes[lt] {
			return lt, nil
		}
		return 0, &SemanticError{Msg: fmt.Sprintf("incompatible operand types '%s' and '%s' for '%s'", lt, rt, op), Line: n.Line, Pos: n.Pos}
	case "==", "!=":
		if lt == rt {
			return DataBool, nil
		}
		return 0, &SemanticError{Msg: fmt.Sprintf("incompatible operand types '%s' and '%s' for '%s'", lt, rt, op), Line: n.Line, Pos: n.Pos}
	case "<", "<=", ">", ">=":
		if numericTypes[lt] && numericTypes[rt] {
			return DataBool, nil
		}
		return 0, &SemanticError{Msg: fmt.Sprintf("incompatible operand types '%s' and '%s' for '%s'", lt, rt, op), Line: n.Line, Pos: n.Pos}
	}
	return 0, &SemanticError{Msg: fmt.Sprintf("unrecognized operator '%s'", op), Line: n.Line, Pos: n.Pos}
}

func (a *Analyzer) analyzeCall(n *Node) (Datatype, error) {
	name, _ := n.Data.(string)
	f, ok := a.functions[name]
	if !ok {
		return 0, &SemanticError{Msg: fmt.Sprintf("function '%s' not declared", name), Line: n.Line, Pos: n.Pos}
	}
	if len(n.Children) != len(f.Params) {
		return 0, &SemanticError{Msg: fmt.Sprintf("function '%s' expects %d argument(s), got %d", name, len(f.Params), len(n.Children)), Line: n.Line, Pos: n.Pos}
	}
	for i1, arg := range n.Children {
		t, err := a.analyzeExpr(arg)
		if err != nil {
			return 0, err
		}
		if t != f.Params[i1] {
			return 0, &SemanticError{Msg: fmt.Sprintf("argument %d of function '%s' expects '%s', got '%s'", i1+1, name, f.Params[i1], t), Line: n.Line, Pos: n.Pos}
		}
	}
	return f.Return, nil
}
