package cache

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// sqlLexer tokenizes query text for fingerprinting.
var sqlLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Comment", Pattern: `--[^\n]*`},
		{Name: "BlockComment", Pattern: `/\*[\s\S]*?\*/`},
		{Name: "String", Pattern: `'(?:[^']|'')*'`},
		{Name: "QuotedIdent", Pattern: `"[^"]*"`},
		{Name: "Placeholder", Pattern: `[$@][0-9a-zA-Z_]+|\?`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]+)?`},
		{Name: "Symbol", Pattern: `[\(\)\[\]\{\},;:.]`},
		{Name: "Operator", Pattern: `[\+\-\*/=<>!|%]+`},
	},
})

// Normalize canonicalizes query text before fingerprinting: comments are
// stripped, whitespace is collapsed, trailing semicolons are dropped and
// unquoted identifiers are upper-cased, so formatting differences do not
// split cache entries. Text the lexer cannot tokenize falls back to
// plain whitespace collapsing.
func Normalize(text string) string {
	tokens, err := lexTokens(text)
	if err != nil || len(tokens) == 0 {
		return strings.Join(strings.Fields(text), " ")
	}
	for len(tokens) > 0 && tokens[len(tokens)-1] == ";" {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func lexTokens(text string) ([]string, error) {
	lx, err := sqlLexer.LexString("", text)
	if err != nil {
		return nil, err
	}

	symbols := sqlLexer.Symbols()
	skip := map[lexer.TokenType]bool{
		symbols["Whitespace"]:   true,
		symbols["Comment"]:      true,
		symbols["BlockComment"]: true,
	}
	ident := symbols["Ident"]

	var out []string
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return out, nil
		}
		if skip[tok.Type] {
			continue
		}
		value := tok.Value
		if tok.Type == ident {
			value = strings.ToUpper(value)
		}
		out = append(out, value)
	}
}
