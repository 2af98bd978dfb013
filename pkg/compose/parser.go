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

import "strconv"

// parser is a recursive descent parser over the scanned tokens.
// Precedence, loosest first: or, and, not, comparison/membership,
// additive, multiplicative, unary minus, pipe filters.
type parser struct {
	tokens []token
	pos    int
}

func parse(src string) (Node, error) {
	tokens, err := scan(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, &ParseError{Pos: tok.pos, Msg: "unexpected trailing input " + strconv.Quote(tok.text)}
	}

	return node, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}

	return tok
}

func (p *parser) matchIdent(word string) bool {
	if tok := p.peek(); tok.kind == tokenIdent && tok.text == word {
		p.pos++
		return true
	}

	return false
}

func (p *parser) matchOp(text string) bool {
	if tok := p.peek(); tok.kind == tokenOp && tok.text == text {
		p.pos++
		return true
	}

	return false
}

func (p *parser) expectOp(text string) error {
	if !p.matchOp(text) {
		tok := p.peek()
		return &ParseError{Pos: tok.pos, Msg: "expected " + strconv.Quote(text)}
	}

	return nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.matchIdent("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &BinaryNode{Op: OpOr, Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.matchIdent("and") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = &BinaryNode{Op: OpAnd, Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.matchIdent("not") {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return &UnaryNode{Op: OpNot, Operand: operand}, nil
	}

	return p.parseComparison()
}

var comparisonOps = map[string]Operator{
	"==": OpEq,
	"!=": OpNe,
	"<":  OpLt,
	"<=": OpLe,
	">":  OpGt,
	">=": OpGe,
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind == tokenOp {
		if op, ok := comparisonOps[tok.text]; ok {
			p.pos++

			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}

			return &BinaryNode{Op: op, Left: left, Right: right}, nil
		}
	}

	if p.matchIdent("in") {
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		return &BinaryNode{Op: OpIn, Left: left, Right: right}, nil
	}

	if tok := p.peek(); tok.kind == tokenIdent && tok.text == "not" {
		// "x not in y" reads ahead for the "in"; a lone "not" here is
		// a syntax error either way.
		p.pos++

		if !p.matchIdent("in") {
			return nil, &ParseError{Pos: tok.pos, Msg: `expected "in" after "not"`}
		}

		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		return &BinaryNode{Op: OpNotIn, Left: left, Right: right}, nil
	}

	return left, nil
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.matchOp("+"):
			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}

			left = &BinaryNode{Op: OpAdd, Left: left, Right: right}
		case p.matchOp("-"):
			right, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}

			left = &BinaryNode{Op: OpSub, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		var op Operator

		switch {
		case p.matchOp("*"):
			op = OpMul
		case p.matchOp("/"):
			op = OpDiv
		case p.matchOp("%"):
			op = OpMod
		default:
			return left, nil
		}

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if p.matchOp("-") {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &UnaryNode{Op: OpNeg, Operand: operand}, nil
	}

	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.matchOp("|") {
		node, err = p.parseFilter(node)
		if err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (p *parser) parseFilter(operand Node) (Node, error) {
	tok := p.next()
	if tok.kind != tokenIdent {
		return nil, &ParseError{Pos: tok.pos, Msg: "expected filter name after |"}
	}

	var args []Node

	if p.matchOp("(") {
		for !p.matchOp(")") {
			if len(args) > 0 {
				if err := p.expectOp(","); err != nil {
					return nil, err
				}
			}

			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)
		}
	}

	switch tok.text {
	case "default":
		if len(args) != 1 {
			return nil, &ParseError{Pos: tok.pos, Msg: "default takes exactly one argument"}
		}
	case "string":
		if len(args) != 0 {
			return nil, &ParseError{Pos: tok.pos, Msg: "string takes no arguments"}
		}
	default:
		return nil, &ParseError{Pos: tok.pos, Msg: "unknown filter " + strconv.Quote(tok.text)}
	}

	return &FilterNode{Name: tok.text, Operand: operand, Args: args}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()

	switch tok.kind {
	case tokenNumber:
		return parseNumber(tok)

	case tokenString:
		return &LiteralNode{Value: tok.text}, nil

	case tokenIdent:
		switch tok.text {
		case "true", "True":
			return &LiteralNode{Value: true}, nil
		case "false", "False":
			return &LiteralNode{Value: false}, nil
		case "none", "None", "null":
			return &LiteralNode{Value: nil}, nil
		case "and", "or", "not", "in":
			return nil, &ParseError{Pos: tok.pos, Msg: "unexpected keyword " + strconv.Quote(tok.text)}
		}

		path := []string{tok.text}

		for p.matchOp(".") {
			seg := p.next()
			if seg.kind != tokenIdent {
				return nil, &ParseError{Pos: seg.pos, Msg: "expected attribute name after ."}
			}

			path = append(path, seg.text)
		}

		return &VarNode{Path: path}, nil

	case tokenOp:
		switch tok.text {
		case "(":
			node, err := p.parseOr()
			if err != nil {
				return nil, err
			}

			if err := p.expectOp(")"); err != nil {
				return nil, err
			}

			return node, nil

		case "[":
			var elems []Node

			for !p.matchOp("]") {
				if len(elems) > 0 {
					if err := p.expectOp(","); err != nil {
						return nil, err
					}
				}

				elem, err := p.parseOr()
				if err != nil {
					return nil, err
				}

				elems = append(elems, elem)
			}

			return &ListNode{Elems: elems}, nil
		}
	}

	return nil, &ParseError{Pos: tok.pos, Msg: "unexpected token " + strconv.Quote(tok.text)}
}

func parseNumber(tok token) (Node, error) {
	if n, err := strconv.ParseInt(tok.text, 10, 64); err == nil {
		return &LiteralNode{Value: n}, nil
	}

	f, err := strconv.ParseFloat(tok.text, 64)
	if err != nil {
		return nil, &ParseError{Pos: tok.pos, Msg: "invalid number " + strconv.Quote(tok.text)}
	}

	return &LiteralNode{Value: f}, nil
}
