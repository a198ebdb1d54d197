package scanner_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"weftlang.dev/weft/scanner"
	"weftlang.dev/weft/token"
)

func scanAll(t *testing.T, src string, mode scanner.Mode) ([]token.Token, []string, int) {
	t.Helper()
	file := token.NewFile("test.weft", len(src))
	var s scanner.Scanner
	var errCount int
	s.Init(file, []byte(src), func(pos token.Pos, msg string) { errCount++ }, mode)
	var toks []token.Token
	var lits []string
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		toks = append(toks, tok)
		lits = append(lits, lit)
	}
	return toks, lits, errCount
}

func TestScanIdentsAndKeywords(t *testing.T) {
	toks, lits, errCount := scanAll(t, `type Post { title: string; }`, 0)
	qt.Assert(t, qt.Equals(errCount, 0))
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{
		token.TYPE, token.IDENT, token.LBRACE, token.IDENT, token.COLON, token.STRING_T, token.SEMICOLON, token.RBRACE,
	}))
	qt.Assert(t, qt.Equals(lits[1], "Post"))
}

func TestScanNumbers(t *testing.T) {
	toks, lits, _ := scanAll(t, `-4 1.5 -0.25 123`, 0)
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{token.INT, token.FLOAT, token.FLOAT, token.INT}))
	qt.Assert(t, qt.DeepEquals(lits, []string{"-4", "1.5", "-0.25", "123"}))
}

func TestScanStringEscapes(t *testing.T) {
	toks, lits, errCount := scanAll(t, `"foo\nbar"`, 0)
	qt.Assert(t, qt.Equals(errCount, 0))
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{token.STRING}))
	qt.Assert(t, qt.Equals(lits[0], `"foo\nbar"`))
}

func TestScanDocVsRegularComment(t *testing.T) {
	toks, lits, _ := scanAll(t, "/// doc\n// regular\ntype T {}", scanner.ScanComments)
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{
		token.DOC, token.COMMENT, token.TYPE, token.IDENT, token.LBRACE, token.RBRACE,
	}))
	qt.Assert(t, qt.Equals(lits[0], "/// doc"))
}

func TestScanCommentsSkippedByDefault(t *testing.T) {
	toks, _, _ := scanAll(t, "// nope\ntype T {}", 0)
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{token.TYPE, token.IDENT, token.LBRACE, token.RBRACE}))
}

func TestScanDottedPathAndPunctuation(t *testing.T) {
	toks, _, _ := scanAll(t, `c::Message [string] {string: int32} #[http(path = "/x")] -> *`, 0)
	want := []token.Token{
		token.IDENT, token.DCOLON, token.IDENT,
		token.LBRACKET, token.STRING_T, token.RBRACKET,
		token.LBRACE, token.STRING_T, token.COLON, token.INT32, token.RBRACE,
		token.HASH_LBR, token.IDENT, token.LPAREN, token.IDENT, token.EQ, token.STRING, token.RPAREN, token.RBRACKET,
		token.ARROW, token.STAR,
	}
	qt.Assert(t, qt.DeepEquals(toks, want))
}

func TestScanVersionRangeOperators(t *testing.T) {
	toks, _, _ := scanAll(t, `^1 >=1.2 <2`, 0)
	qt.Assert(t, qt.DeepEquals(toks, []token.Token{
		token.CARET, token.INT,
		token.GE, token.FLOAT,
		token.LT, token.INT,
	}))
}

func TestScanIllegalTokenRecorded(t *testing.T) {
	src := "type T { a: string ` }"
	_, _, errCount := scanAll(t, src, 0)
	qt.Assert(t, qt.IsTrue(errCount > 0))
}
