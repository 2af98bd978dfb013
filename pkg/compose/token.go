/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package compose

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// multi-rune operators, longest first so <= wins over <.
var multiOps = []string{"==", "!=", "<=", ">="}

const singleOps = "+-*/%<>()|,.[]"

// scan tokenizes an expression. The language is one line; there is no
// comment syntax.
func scan(src string) ([]token, error) {
	runes := []rune(src)
	tokens := make([]token, 0, 16)

	i := 0
	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case unicode.IsDigit(r):
			start := i
			sawDot := false

			for i < len(runes) && (unicode.IsDigit(runes[i]) || (runes[i] == '.' && !sawDot && i+1 < len(runes) && unicode.IsDigit(runes[i+1]))) {
				if runes[i] == '.' {
					sawDot = true
				}

				i++
			}

			tokens = append(tokens, token{kind: tokenNumber, text: string(runes[start:i]), pos: start})

		case r == '\'' || r == '"':
			text, next, err := scanString(runes, i)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, token{kind: tokenString, text: text, pos: i})
			i = next

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}

			tokens = append(tokens, token{kind: tokenIdent, text: string(runes[start:i]), pos: start})

		default:
			if op := matchOp(runes[i:]); op != "" {
				tokens = append(tokens, token{kind: tokenOp, text: op, pos: i})
				i += len(op)

				continue
			}

			return nil, &ParseError{Pos: i, Msg: "unexpected character " + string(r)}
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, pos: len(runes)})

	return tokens, nil
}

func matchOp(rest []rune) string {
	s := string(rest)

	for _, op := range multiOps {
		if strings.HasPrefix(s, op) {
			return op
		}
	}

	if len(rest) > 0 && strings.ContainsRune(singleOps, rest[0]) {
		return string(rest[0])
	}

	return ""
}

func scanString(runes []rune, start int) (text string, next int, err error) {
	quote := runes[start]

	var sb strings.Builder

	i := start + 1
	for i < len(runes) {
		r := runes[i]

		if r == '\\' && i+1 < len(runes) {
			escaped := runes[i+1]
			switch escaped {
			case '\\', '\'', '"':
				sb.WriteRune(escaped)
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune('\\')
				sb.WriteRune(escaped)
			}

			i += 2

			continue
		}

		if r == quote {
			return sb.String(), i + 1, nil
		}

		sb.WriteRune(r)
		i++
	}

	return "", 0, &ParseError{Pos: start, Msg: "unterminated string"}
}
