// tree.go provides the entry points for turning source text into a syntax
// tree or a raw token listing. The scanner runs concurrently to the parser:
// one goroutine scans the source string for lexemes while the parser
// consumes them from the lexer's item channel and builds the ir.Node tree.

package frontend

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"vslc/src/ir"
	"vslc/src/util"
)

// Parse parses the syntax tree from the source code.
func Parse(src string) (*ir.Node, error) {
	l := newLexer(src, lexGlobal)
	go l.run()

	p := newParser(l)
	root, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return root, nil
}

// TokenStream outputs the token stream from the given source string.
func TokenStream(src string) error {
	l := newLexer(src, lexGlobal)
	go l.run()

	wr := util.NewWriter()
	defer wr.Close()
	sb := strings.Builder{}
	tw := tabwriter.NewWriter(&sb, 10, 20, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Value\tType\tPosition\n")
	for {
		t := l.nextItem()
		switch t.typ {
		case itemEOF:
			err := tw.Flush()
			wr.WriteString(sb.String())
			return err
		case itemError:
			wr.WriteString(sb.String())
			return errors.New(t.val)
		default:
			if len(t.val) > 20 {
				_, _ = fmt.Fprintf(tw, "%.17q...\t%s\tline: %d:%d\n", t.val, tokenName(t.typ), t.line, t.pos)
			} else {
				_, _ = fmt.Fprintf(tw, "%q\t%s\tline: %d:%d\n", t.val, tokenName(t.typ), t.line, t.pos)
			}
		}
	}
}
