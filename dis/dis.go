// Package dis renders instruction trees as indented text.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/wasmint/wasmint/bytecode"
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
)

// Line is one instruction of a disassembled tree.
type Line struct {
	// Depth is the nesting depth, 0 for the function body.
	Depth    int
	Opcode   op.Code
	Name     string
	Operands []string
	// Info names the target of a branch, e.g. "-> loop@2" where 2 is the
	// line number of the scope.
	Info string
}

type scope struct {
	name string
	line int
}

type disassembler struct {
	lines  []Line
	scopes []scope
}

// Disassemble flattens the body of fn into lines in execution order.
func Disassemble(fn *bytecode.Function) ([]Line, error) {
	if fn.Body() == nil {
		return nil, fmt.Errorf("function %q has no body", fn.Name())
	}
	d := &disassembler{}
	d.walk(fn.Body(), 0)
	return d.lines, nil
}

func (d *disassembler) walk(instr bytecode.Instruction, depth int) {
	if instr == nil {
		d.lines = append(d.lines, Line{Depth: depth, Opcode: op.Invalid, Name: "<missing>"})
		return
	}
	line := Line{
		Depth:    depth,
		Opcode:   instr.Opcode(),
		Name:     instr.Name(),
		Operands: operands(instr),
	}
	switch i := instr.(type) {
	case *bytecode.Break:
		line.Info = d.target(i.Depth())
	case *bytecode.BreakIf:
		line.Info = d.target(i.Depth())
	}
	d.lines = append(d.lines, line)

	isScope := op.IsScope(instr.Opcode())
	if isScope {
		d.scopes = append(d.scopes, scope{name: instr.Name(), line: len(d.lines) - 1})
	}
	for idx := 0; idx < instr.ChildCount(); idx++ {
		d.walk(instr.Child(idx), depth+1)
	}
	if isScope {
		d.scopes = d.scopes[:len(d.scopes)-1]
	}
}

func (d *disassembler) target(depth uint32) string {
	if int(depth) >= len(d.scopes) {
		return "-> escapes"
	}
	s := d.scopes[len(d.scopes)-1-int(depth)]
	return fmt.Sprintf("-> %s@%d", s.name, s.line)
}

func operands(instr bytecode.Instruction) []string {
	switch i := instr.(type) {
	case *bytecode.Block:
		return typeOperand(i.ReturnType())
	case *bytecode.Loop:
		return typeOperand(i.ReturnType())
	case *bytecode.If:
		return typeOperand(i.ReturnType())
	case *bytecode.Break:
		return []string{strconv.FormatUint(uint64(i.Depth()), 10)}
	case *bytecode.BreakIf:
		return []string{strconv.FormatUint(uint64(i.Depth()), 10)}
	case *bytecode.Const:
		return []string{fmt.Sprint(i.Value().Interface())}
	case *bytecode.GetLocal:
		return []string{strconv.FormatUint(uint64(i.Index()), 10)}
	case *bytecode.SetLocal:
		return []string{strconv.FormatUint(uint64(i.Index()), 10)}
	case *bytecode.TeeLocal:
		return []string{strconv.FormatUint(uint64(i.Index()), 10)}
	}
	return nil
}

func typeOperand(t *object.Type) []string {
	if t == object.Void {
		return nil
	}
	return []string{t.Name()}
}

var (
	controlColor = color.New(color.FgCyan, color.Bold)
	constColor   = color.New(color.FgYellow)
	infoColor    = color.New(color.Faint)
)

// Print writes the lines as an indented tree, one instruction per line.
// The first column is the line number referenced by branch targets.
// Colors follow color.NoColor.
func Print(lines []Line, writer io.Writer) {
	width := len(strconv.Itoa(len(lines) - 1))
	for idx, line := range lines {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%*d  ", width, idx)
		sb.WriteString(strings.Repeat("  ", line.Depth))
		sb.WriteString(colorize(line))
		for _, operand := range line.Operands {
			sb.WriteString(" ")
			sb.WriteString(operand)
		}
		if line.Info != "" {
			sb.WriteString("  ")
			sb.WriteString(infoColor.Sprint(line.Info))
		}
		fmt.Fprintln(writer, sb.String())
	}
}

// Fprint disassembles fn and prints it under a header line with the
// function signature.
func Fprint(writer io.Writer, fn *bytecode.Function) error {
	lines, err := Disassemble(fn)
	if err != nil {
		return err
	}
	fmt.Fprintln(writer, fn.String())
	Print(lines, writer)
	return nil
}

func colorize(line Line) string {
	switch line.Opcode {
	case op.Block, op.Loop, op.If, op.Break, op.BreakIf, op.Unreachable:
		return controlColor.Sprint(line.Name)
	case op.Const:
		return constColor.Sprint(line.Name)
	default:
		return line.Name
	}
}
