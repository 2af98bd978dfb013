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
	"errors"
	"fmt"
)

// ErrUndefined marks a reference to an attribute the host does not
// carry. The default filter recovers from it; anything else lets it
// surface as an evaluation failure.
var ErrUndefined = errors.New("undefined attribute")

// ParseError reports a syntax problem at compile time.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}

// EvalError reports a type or operator misuse at evaluation time.
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string {
	return "eval error: " + e.Msg
}

func evalErrorf(format string, args ...interface{}) *EvalError {
	return &EvalError{Msg: fmt.Sprintf(format, args...)}
}

func undefinedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUndefined, fmt.Sprintf(format, args...))
}

// VarError ties an evaluation failure to the composed variable it
// belongs to.
type VarError struct {
	Name string
	Err  error
}

func (e *VarError) Error() string {
	return fmt.Sprintf("compose variable %q: %v", e.Name, e.Err)
}

func (e *VarError) Unwrap() error {
	return e.Err
}
