package resolve

import "strings"

// Token is a ${name} reference found in an expression.
type Token struct {
	Name   string
	Offset int
}

// Malformed usage reasons reported by Scan.
const (
	IssueBareDollar   = "\"$\" is not followed by \"{\""
	IssueUnterminated = "unterminated \"${\""
	IssueEmpty        = "empty \"${}\" reference"
)

// Scan extracts ${name} tokens from expr and reports malformed usages: a "$"
// not followed by "{", an unterminated "${", or an empty "${}". A bare "$"
// inside a quoted literal, such as a regex anchor, is not an issue; tokens
// inside literals are still extracted.
func Scan(expr string) ([]Token, []string) {
	var (
		tokens []Token
		issues []string
		quote  byte
	)
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; {
		case c == '\'' || c == '"':
			if quote == 0 {
				quote = c
			} else if quote == c {
				quote = 0
			}
			continue
		case c != '$':
			continue
		}
		if i+1 >= len(expr) || expr[i+1] != '{' {
			if quote == 0 {
				issues = append(issues, IssueBareDollar)
			}
			continue
		}
		end := strings.IndexByte(expr[i+2:], '}')
		if end < 0 {
			issues = append(issues, IssueUnterminated)
			break
		}
		name := strings.TrimSpace(expr[i+2 : i+2+end])
		if name == "" {
			issues = append(issues, IssueEmpty)
		} else {
			tokens = append(tokens, Token{Name: name, Offset: i})
		}
		i += 2 + end
	}
	return tokens, issues
}

// References returns the distinct names referenced by expr in order of first
// appearance.
func References(expr string) []string {
	tokens, _ := Scan(expr)
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token.Name]; ok {
			continue
		}
		seen[token.Name] = struct{}{}
		out = append(out, token.Name)
	}
	return out
}
