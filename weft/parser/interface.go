package parser

import (
	"weftlang.dev/weft/ast"
	"weftlang.dev/weft/errors"
)

// ParseFile parses a single source buffer and returns its AST together with
// any diagnostics collected along the way. It always returns a non-nil
// *ast.File, whatever the input; lexical and syntax errors are reported
// only through the returned list.
//
// filename is used solely for diagnostics and to populate spans; it need
// not correspond to a real path.
func ParseFile(filename string, src []byte) (*ast.File, errors.List) {
	var p parser
	p.init(filename, src)
	f := p.parseFile()
	p.errs.Sort()
	return f, p.errs
}
