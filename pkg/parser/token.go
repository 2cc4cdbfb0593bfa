package parser

// TokenType identifies the lexical category of a Token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenError

	TokenIdent  // bareword: field names, keywords (and/or/not/in/...), placeholder names
	TokenQuoted // 'single' or "double" quoted string, raw (unescaped) text
	TokenInt
	TokenFloat

	TokenAt       // @
	TokenSlash    // /
	TokenLBracket // [
	TokenRBracket // ]
	TokenLBrace   // {
	TokenRBrace   // }
	TokenComma    // ,
	TokenColon    // :
	TokenPlus     // +
	TokenMinus    // -
	TokenPipe     // |

	TokenEq  // =
	TokenGt  // >
	TokenGte // >=
	TokenLt  // <
	TokenLte // <=
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "ERROR"
	case TokenIdent:
		return "IDENT"
	case TokenQuoted:
		return "QUOTED"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenAt:
		return "@"
	case TokenSlash:
		return "/"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenPipe:
		return "|"
	case TokenEq:
		return "="
	case TokenGt:
		return ">"
	case TokenGte:
		return ">="
	case TokenLt:
		return "<"
	case TokenLte:
		return "<="
	default:
		return "?"
	}
}

// Token is one lexical unit produced by the Lexer.
type Token struct {
	Type  TokenType
	Value string // raw text: ident name, quoted string's inner text, or number text
	Pos   int    // byte offset of the token's first byte in the input
}

// reserved words
var reservedWords = map[string]bool{
	"and": true, "or": true, "not": true,
	"in": true, "re": true, "like": true,
	"eq": true, "gt": true, "gte": true, "lt": true, "lte": true,
	"apply": true, "true": true, "false": true, "null": true,
}

// isReserved reports whether ident is a JQL reserved word.
func isReserved(ident string) bool {
	return reservedWords[ident]
}
