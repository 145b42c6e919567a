package text

import (
	"strings"
	"unicode"
)

// Token is a piece of text with its byte offsets into the original string.
type Token struct {
	Value string
	Start int
	End   int
}

// tokenRune reports whether r belongs inside a token. The percent sign is
// kept so entity placeholders like "%CITY%" survive tokenization as part
// of a token run instead of being stripped with the punctuation.
func tokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '%'
}

// Tokenize splits text into tokens with byte offsets. Runs of letters,
// digits and '%' form tokens; everything else separates them. The language
// parameter selects language-specific splitting rules; all currently
// supported languages share the default rules.
func Tokenize(text, language string) []Token {
	var tokens []Token
	start := -1

	for i, r := range text {
		if tokenRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{Value: text[start:i], Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Value: text[start:], Start: start, End: len(text)})
	}

	return tokens
}

// TokenizeLight splits text the same way as Tokenize but returns only the
// token values. It is lossless with respect to token content: no case
// folding or filtering happens here.
func TokenizeLight(text, language string) []string {
	tokens := Tokenize(text, language)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Value
	}
	return out
}

// Normalize folds a token to the form used for stop-word comparison.
func Normalize(s string) string {
	return strings.ToLower(s)
}
