// Package script holds the static side of block execution: parsing block source,
// deciding whether a block depends on inherited names, rewriting a block so it
// always yields a result, and rendering inherited names as bindings.
// This is part of the Functional Core - no I/O, only pure functions.
package script

import (
	"errors"
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
)

const sourceName = "block.js"

// ParseError reports source that could not be parsed.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// program is a parsed block with the file set needed to resolve positions.
type program struct {
	ast   *ast.Program
	files *file.FileSet
}

func (p *program) position(idx file.Idx) file.Position {
	return p.files.Position(idx)
}

func parse(src string) (*program, error) {
	fs := &file.FileSet{}
	prg, err := parser.ParseFile(fs, sourceName, src, 0, parser.WithDisableSourceMaps)
	if err != nil {
		return nil, toParseError(err)
	}
	return &program{ast: prg, files: fs}, nil
}

func toParseError(err error) *ParseError {
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return &ParseError{Line: list[0].Position.Line, Column: list[0].Position.Column, Message: list[0].Message}
	}
	var single *parser.Error
	if errors.As(err, &single) {
		return &ParseError{Line: single.Position.Line, Column: single.Position.Column, Message: single.Message}
	}
	return &ParseError{Message: err.Error()}
}
