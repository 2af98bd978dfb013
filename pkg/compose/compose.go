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

// Package compose compiles and evaluates the restricted per-host
// variable expressions. The language covers literals, host attribute
// references with dotted access, arithmetic, comparisons, boolean
// logic, membership tests, list literals and the pipe filters
// "string" and "default(x)". Expressions compile once into a small
// tree and evaluate per host with no side effects.
package compose

import "sort"

// Expression is one compiled expression, reusable across hosts and
// safe for concurrent evaluation.
type Expression struct {
	src  string
	root Node
}

// Compile parses src. A *ParseError means the expression is
// malformed; callers treat that as a configuration problem, not a
// runtime one.
func Compile(src string) (*Expression, error) {
	root, err := parse(src)
	if err != nil {
		return nil, err
	}

	return &Expression{src: src, root: root}, nil
}

// Source returns the original expression text.
func (e *Expression) Source() string {
	return e.src
}

// Evaluate computes the expression against one host's attributes.
func (e *Expression) Evaluate(vars map[string]interface{}) (interface{}, error) {
	return eval(e.root, vars)
}

type specVar struct {
	name string
	expr *Expression
}

// SpecSet is a compiled compose block: variable names bound to
// expressions, held in sorted name order so per-host evaluation and
// its warnings are deterministic.
type SpecSet struct {
	vars []specVar
}

// CompileSpec compiles every expression in the block. The first
// malformed expression aborts the compile; nothing runs until the
// whole block parses.
func CompileSpec(spec map[string]string) (*SpecSet, error) {
	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}

	sort.Strings(names)

	vars := make([]specVar, 0, len(names))

	for _, name := range names {
		expr, err := Compile(spec[name])
		if err != nil {
			return nil, &VarError{Name: name, Err: err}
		}

		vars = append(vars, specVar{name: name, expr: expr})
	}

	return &SpecSet{vars: vars}, nil
}

// Len reports the number of compiled variables.
func (s *SpecSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.vars)
}

// Apply evaluates every variable against one host. A failing
// expression omits its variable and contributes a *VarError; the rest
// of the block still applies.
func (s *SpecSet) Apply(hostvars map[string]interface{}) (map[string]interface{}, []error) {
	if s.Len() == 0 {
		return nil, nil
	}

	composed := make(map[string]interface{}, len(s.vars))

	var failures []error

	for _, v := range s.vars {
		val, err := v.expr.Evaluate(hostvars)
		if err != nil {
			failures = append(failures, &VarError{Name: v.name, Err: err})
			continue
		}

		composed[v.name] = val
	}

	return composed, failures
}
