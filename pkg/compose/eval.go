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
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// eval walks the tree against one host's attributes. Evaluation is
// pure: no cross-host state, no side effects.
//
// Undefined attributes surface as ErrUndefined so default() can
// recover. In boolean positions (and, or, not) an undefined operand
// counts as none instead, which keeps fallback chains like
// "ip or hostname" working when the first attribute is absent.
func eval(node Node, vars map[string]interface{}) (interface{}, error) {
	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil

	case *VarNode:
		return resolvePath(n.Path, vars)

	case *ListNode:
		elems := make([]interface{}, 0, len(n.Elems))

		for _, elem := range n.Elems {
			v, err := eval(elem, vars)
			if err != nil {
				return nil, err
			}

			elems = append(elems, v)
		}

		return elems, nil

	case *UnaryNode:
		return evalUnary(n, vars)

	case *BinaryNode:
		return evalBinary(n, vars)

	case *FilterNode:
		return evalFilter(n, vars)

	default:
		return nil, evalErrorf("unknown node type %T", node)
	}
}

func resolvePath(path []string, vars map[string]interface{}) (interface{}, error) {
	cur, ok := vars[path[0]]
	if !ok {
		return nil, undefinedf("%s", path[0])
	}

	for i, seg := range path[1:] {
		m, isMap := cur.(map[string]interface{})
		if !isMap {
			return nil, undefinedf("%s", strings.Join(path[:i+2], "."))
		}

		cur, ok = m[seg]
		if !ok {
			return nil, undefinedf("%s", strings.Join(path[:i+2], "."))
		}
	}

	return cur, nil
}

func evalUnary(n *UnaryNode, vars map[string]interface{}) (interface{}, error) {
	switch n.Op {
	case OpNot:
		val, err := evalLenient(n.Operand, vars)
		if err != nil {
			return nil, err
		}

		return !truthy(val), nil

	case OpNeg:
		val, err := eval(n.Operand, vars)
		if err != nil {
			return nil, err
		}

		if i, ok := toInt64(val); ok {
			return -i, nil
		}

		if f, ok := val.(float64); ok {
			return -f, nil
		}

		return nil, evalErrorf("cannot negate %T", val)

	default:
		return nil, evalErrorf("unknown unary operator %q", n.Op)
	}
}

// evalLenient maps undefined attributes to none for boolean positions.
func evalLenient(node Node, vars map[string]interface{}) (interface{}, error) {
	val, err := eval(node, vars)
	if err != nil {
		if errors.Is(err, ErrUndefined) {
			return nil, nil
		}

		return nil, err
	}

	return val, nil
}

func evalBinary(n *BinaryNode, vars map[string]interface{}) (interface{}, error) {
	switch n.Op {
	case OpAnd:
		left, err := evalLenient(n.Left, vars)
		if err != nil {
			return nil, err
		}

		if !truthy(left) {
			return left, nil
		}

		return evalLenient(n.Right, vars)

	case OpOr:
		left, err := evalLenient(n.Left, vars)
		if err != nil {
			return nil, err
		}

		if truthy(left) {
			return left, nil
		}

		return evalLenient(n.Right, vars)
	}

	left, err := eval(n.Left, vars)
	if err != nil {
		return nil, err
	}

	right, err := eval(n.Right, vars)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpEq:
		return equalValues(left, right), nil
	case OpNe:
		return !equalValues(left, right), nil
	case OpLt, OpLe, OpGt, OpGe:
		return compareOrdered(n.Op, left, right)
	case OpIn:
		return membership(left, right)
	case OpNotIn:
		in, err := membership(left, right)
		if err != nil {
			return nil, err
		}

		return !in, nil
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return arithmetic(n.Op, left, right)
	default:
		return nil, evalErrorf("unknown operator %q", n.Op)
	}
}

func evalFilter(n *FilterNode, vars map[string]interface{}) (interface{}, error) {
	switch n.Name {
	case "default":
		val, err := eval(n.Operand, vars)
		if err != nil {
			if errors.Is(err, ErrUndefined) {
				return eval(n.Args[0], vars)
			}

			return nil, err
		}

		if val == nil {
			return eval(n.Args[0], vars)
		}

		return val, nil

	case "string":
		val, err := eval(n.Operand, vars)
		if err != nil {
			return nil, err
		}

		return coerceString(val)

	default:
		return nil, evalErrorf("unknown filter %q", n.Name)
	}
}

// truthy: none, false, zero, empty strings and empty collections are
// false; everything else is true.
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int64:
		return val != 0
	case int:
		return val != 0
	case float64:
		return val != 0
	case []interface{}:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	default:
		return true
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// equalValues compares scalars with numeric promotion. Values of
// different kinds are unequal rather than an error.
func equalValues(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, aOK := toFloat(a); aOK {
		bf, bOK := toFloat(b)
		return bOK && af == bf
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}

		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func compareOrdered(op Operator, a, b interface{}) (interface{}, error) {
	if af, aOK := toFloat(a); aOK {
		bf, bOK := toFloat(b)
		if !bOK {
			return nil, evalErrorf("cannot compare %T with %T", a, b)
		}

		switch op {
		case OpLt:
			return af < bf, nil
		case OpLe:
			return af <= bf, nil
		case OpGt:
			return af > bf, nil
		default:
			return af >= bf, nil
		}
	}

	as, aOK := a.(string)
	bs, bOK := b.(string)

	if !aOK || !bOK {
		return nil, evalErrorf("cannot compare %T with %T", a, b)
	}

	switch op {
	case OpLt:
		return as < bs, nil
	case OpLe:
		return as <= bs, nil
	case OpGt:
		return as > bs, nil
	default:
		return as >= bs, nil
	}
}

func membership(needle, haystack interface{}) (bool, error) {
	switch hs := haystack.(type) {
	case []interface{}:
		for _, elem := range hs {
			if equalValues(needle, elem) {
				return true, nil
			}
		}

		return false, nil

	case []string:
		ns, ok := needle.(string)
		if !ok {
			return false, nil
		}

		for _, elem := range hs {
			if elem == ns {
				return true, nil
			}
		}

		return false, nil

	case string:
		ns, ok := needle.(string)
		if !ok {
			return false, evalErrorf("cannot test %T membership in a string", needle)
		}

		return strings.Contains(hs, ns), nil

	case map[string]interface{}:
		ns, ok := needle.(string)
		if !ok {
			return false, nil
		}

		_, present := hs[ns]

		return present, nil

	default:
		return false, evalErrorf("cannot test membership in %T", haystack)
	}
}

func arithmetic(op Operator, a, b interface{}) (interface{}, error) {
	if op == OpAdd {
		if as, ok := a.(string); ok {
			bs, bOK := b.(string)
			if !bOK {
				return nil, evalErrorf("cannot concatenate string with %T", b)
			}

			return as + bs, nil
		}
	}

	ai, aIsInt := toInt64(a)
	bi, bIsInt := toInt64(b)

	if aIsInt && bIsInt {
		switch op {
		case OpAdd:
			return ai + bi, nil
		case OpSub:
			return ai - bi, nil
		case OpMul:
			return ai * bi, nil
		case OpMod:
			if bi == 0 {
				return nil, evalErrorf("modulo by zero")
			}

			return ai % bi, nil
		case OpDiv:
			// Division always yields a float, even for two integers.
		}
	}

	af, aOK := toFloat(a)
	bf, bOK := toFloat(b)

	if !aOK || !bOK {
		return nil, evalErrorf("unsupported operand types %T and %T for %q", a, b, op)
	}

	switch op {
	case OpAdd:
		return af + bf, nil
	case OpSub:
		return af - bf, nil
	case OpMul:
		return af * bf, nil
	case OpDiv:
		if bf == 0 {
			return nil, evalErrorf("division by zero")
		}

		return af / bf, nil
	case OpMod:
		return nil, evalErrorf("modulo requires integers")
	default:
		return nil, evalErrorf("unknown arithmetic operator %q", op)
	}
}

func coerceString(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return "", evalErrorf("cannot render %T as string", v)
		}

		return string(encoded), nil
	}
}
