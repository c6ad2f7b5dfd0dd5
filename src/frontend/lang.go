package frontend

type reservedItem struct {
	val string
	typ itemType
}

// rw contains the set of all reserved keywords.
// The index of the first dimension equals the length of the word minus one.
// The second dimension is the slice of all words of that length.
// Indexing by length and searching should be faster than using a hash table.
var rw = [...][]reservedItem{
	// One-grams
	{},
	// Two-grams
	{
		{val: "if", typ: itemKeywordIf},
	},
	// Three-grams
	{
		{val: "int", typ: itemKeywordInt},
	},
	// Four-grams
	{
		{val: "char", typ: itemKeywordChar},
		{val: "true", typ: itemKeywordTrue},
		{val: "else", typ: itemKeywordElse},
		{val: "bool", typ: itemKeywordBool},
	},
	// Five-grams
	{
		{val: "while", typ: itemKeywordWhile},
		{val: "const", typ: itemKeywordConst},
		{val: "float", typ: itemKeywordFloat},
		{val: "false", typ: itemKeywordFalse},
	},
	// Six-grams
	{
		{val: "return", typ: itemKeywordReturn},
		{val: "string", typ: itemKeywordString},
	},
}

// isKeyword returns true if the string s is a reserved keyword.
// On the return of true the itemType of the keyword is returned.
// On the return of false the itemType is itemIdentifier.
func isKeyword(s string) (bool, itemType) {
	if len(s) == 0 || len(s) > len(rw) {
		return false, itemIdentifier
	}

	// Check if string s is a reserved word by iterating over all words in rw of length len(s).
	for _, e1 := range rw[len(s)-1] {
		if e1.val == s {
			return true, e1.typ
		}
	}
	return false, itemIdentifier
}
