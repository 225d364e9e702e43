package expression

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine is a wrapper around expr-lang/expr with a compiled-program cache.
// Validation rule conditions and conditional step conditions are compiled
// here, both when a definition is checked and when the runtime path
// evaluates them against a document.
type Engine struct {
	programCache map[string]*vm.Program
	mu           sync.RWMutex
}

// NewEngine creates a new expression engine
func NewEngine() *Engine {
	return &Engine{
		programCache: make(map[string]*vm.Program),
	}
}

// CheckSyntax compiles an expression without running it. Validators use
// this to reject definitions carrying uncompilable conditions.
func (e *Engine) CheckSyntax(expression string) error {
	_, err := e.getProgram(expression)
	return err
}

// Evaluate compiles (if needed) and runs an expression against the given
// environment
func (e *Engine) Evaluate(expression string, env map[string]interface{}) (interface{}, error) {
	program, err := e.getProgram(expression)
	if err != nil {
		return nil, err
	}
	return expr.Run(program, env)
}

// EvaluateBool evaluates an expression expected to yield a boolean, as
// rule and step conditions are
func (e *Engine) EvaluateBool(expression string, env map[string]interface{}) (bool, error) {
	result, err := e.Evaluate(expression, env)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q yielded %T, expected bool", expression, result)
	}
	return b, nil
}

func (e *Engine) getProgram(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.programCache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	// Compiled without a typed environment: conditions run against
	// arbitrary documents, so the shape is only known at evaluation time.
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.programCache[expression] = program
	e.mu.Unlock()
	return program, nil
}
