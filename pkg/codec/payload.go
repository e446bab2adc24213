package codec

import json "github.com/goccy/go-json"

// SplitPayloads separates a record block into its head and its two trailing
// bracket tokens, working from the end of the block. The last token is extra,
// the one before it is context, and everything before context is the head
// (header plus message). Each token starts with '[' or '{' right after a
// space and must close exactly at the end of the remaining text. ok is false
// when fewer than two tokens can be found.
//
// When several suffixes balance, the shortest one that is valid JSON wins,
// and the shortest balanced one is used only if none is valid JSON. If no
// context token precedes the chosen extra, the next extra candidate is tried.
func SplitPayloads(block string) (head, context, extra string, ok bool) {
	for _, i := range tokenStarts(block) {
		rest := block[:i-1]
		starts := tokenStarts(rest)
		if len(starts) == 0 {
			continue
		}
		j := starts[0]
		return rest[:j-1], rest[j:], block[i:], true
	}
	return "", "", "", false
}

// tokenStarts returns the starts of the balanced bracket tokens that end s
// and are preceded by a space, in order of preference: valid JSON first,
// shortest first within each group.
func tokenStarts(s string) []int {
	if len(s) < 3 {
		return nil
	}
	if c := s[len(s)-1]; c != ']' && c != '}' {
		return nil
	}

	var valid, balanced []int
	for i := len(s) - 2; i > 0; i-- {
		if c := s[i]; c != '[' && c != '{' {
			continue
		}
		if s[i-1] != ' ' {
			continue
		}
		if !closesAtEnd(s[i:]) {
			continue
		}
		if json.Valid([]byte(s[i:])) {
			valid = append(valid, i)
		} else {
			balanced = append(balanced, i)
		}
	}
	return append(valid, balanced...)
}

// closesAtEnd reports whether the bracket opened at t[0] is closed by the
// last byte of t. Brackets inside JSON strings are ignored.
func closesAtEnd(t string) bool {
	var stack []byte
	inString, escaped := false, false

	for i := 0; i < len(t); i++ {
		c := t[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i == len(t)-1
			}
		}
	}
	return false
}
