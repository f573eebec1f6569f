package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wasmint/wasmint/errz"
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
	"gopkg.in/yaml.v3"
)

// Decode parses a module in the YAML text format:
//
//	functions:
//	  - name: countdown
//	    params: [i32]
//	    result: i32
//	    body:
//	      block:
//	        type: i32
//	        body:
//	          - loop:
//	              - set_local: {index: 0, value: {i32.sub: [{get_local: 0}, {i32.const: 1}]}}
//	              - br_if: {depth: 1, value: {get_local: 0}, cond: {i32.eqz: {get_local: 0}}}
//	              - br: 0
//	          - unreachable
//
// Every instruction is either a bare name (nop, unreachable) or a mapping
// with a single key naming the instruction.
func Decode(src []byte) (*Module, error) {
	var doc moduleDoc
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("decode module: %w", err)
	}
	functions := make([]*Function, 0, len(doc.Functions))
	for _, fd := range doc.Functions {
		fn, err := fd.decode()
		if err != nil {
			return nil, fmt.Errorf("decode function %q: %w", fd.Name, err)
		}
		functions = append(functions, fn)
	}
	return NewModule(functions...), nil
}

type moduleDoc struct {
	Functions []functionDoc `yaml:"functions"`
}

type functionDoc struct {
	Name   string    `yaml:"name"`
	Params []string  `yaml:"params"`
	Locals []string  `yaml:"locals"`
	Result string    `yaml:"result"`
	Body   yaml.Node `yaml:"body"`
}

func (fd *functionDoc) decode() (*Function, error) {
	params, err := parseTypes(fd.Params)
	if err != nil {
		return nil, err
	}
	locals, err := parseTypes(fd.Locals)
	if err != nil {
		return nil, err
	}
	result, err := object.ParseType(fd.Result)
	if err != nil {
		return nil, err
	}
	d := &decoder{frame: append(copyTypes(params), locals...)}
	if fd.Body.Kind == 0 {
		return nil, fmt.Errorf("missing body")
	}
	body, err := d.node(&fd.Body)
	if err != nil {
		return nil, err
	}
	return NewFunction(FunctionParams{
		Name:   fd.Name,
		Params: params,
		Locals: locals,
		Result: result,
		Body:   body,
	}), nil
}

func parseTypes(names []string) ([]*object.Type, error) {
	types := make([]*object.Type, len(names))
	for i, name := range names {
		t, err := object.ParseType(name)
		if err != nil {
			return nil, err
		}
		if t == object.Void {
			return nil, fmt.Errorf("locals and parameters cannot be void")
		}
		types[i] = t
	}
	return types, nil
}

// decoder holds the frame layout of the function being decoded so local
// accesses can be typed.
type decoder struct {
	frame []*object.Type
}

// unknownInstruction reports an unknown name, suggesting close matches
// among candidates.
func unknownInstruction(n *yaml.Node, name string, candidates []string) error {
	if hint := errz.DidYouMean(name, candidates); hint != "" {
		return nodeErrorf(n, "unknown instruction %q; %s", name, hint)
	}
	return nodeErrorf(n, "unknown instruction %q", name)
}

func nodeErrorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

func (d *decoder) node(n *yaml.Node) (Instruction, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return d.bare(n)
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, nodeErrorf(n, "instruction must have exactly one key")
		}
		return d.keyed(n.Content[0], n.Content[1])
	default:
		return nil, nodeErrorf(n, "expected an instruction")
	}
}

func (d *decoder) nodes(n *yaml.Node) ([]Instruction, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "expected a list of instructions")
	}
	result := make([]Instruction, 0, len(n.Content))
	for _, item := range n.Content {
		instr, err := d.node(item)
		if err != nil {
			return nil, err
		}
		result = append(result, instr)
	}
	return result, nil
}

func (d *decoder) bare(n *yaml.Node) (Instruction, error) {
	switch n.Value {
	case "nop":
		return NewNop(), nil
	case "unreachable":
		return NewUnreachable(), nil
	default:
		return nil, unknownInstruction(n, n.Value, op.Names())
	}
}

func (d *decoder) keyed(key, value *yaml.Node) (Instruction, error) {
	name := key.Value
	if typeName, opName, ok := strings.Cut(name, "."); ok {
		typ, err := object.ParseType(typeName)
		if err != nil {
			return nil, nodeErrorf(key, "%v", err)
		}
		return d.typed(key, typ, opName, value)
	}
	code, ok := op.Lookup(name)
	if !ok {
		return nil, unknownInstruction(key, name, op.Names())
	}
	switch code {
	case op.Nop:
		return NewNop(), nil
	case op.Unreachable:
		return NewUnreachable(), nil
	case op.Drop:
		operand, err := d.node(value)
		if err != nil {
			return nil, err
		}
		return NewDrop(operand), nil
	case op.Block, op.Loop:
		typ, body, err := d.sequence(value)
		if err != nil {
			return nil, err
		}
		if code == op.Loop {
			return NewLoop(typ, body...), nil
		}
		return NewBlock(typ, body...), nil
	case op.Break:
		return d.branch(value)
	case op.BreakIf:
		return d.branchIf(value)
	case op.If:
		return d.conditional(value)
	case op.GetLocal:
		index, typ, err := d.local(value)
		if err != nil {
			return nil, err
		}
		return NewGetLocal(index, typ), nil
	case op.SetLocal, op.TeeLocal:
		fields, err := fieldsOf(value, "index", "value")
		if err != nil {
			return nil, err
		}
		index, typ, err := d.local(fields["index"])
		if err != nil {
			return nil, err
		}
		v, ok := fields["value"]
		if !ok {
			return nil, nodeErrorf(value, "%s requires a value", name)
		}
		operand, err := d.node(v)
		if err != nil {
			return nil, err
		}
		if code == op.TeeLocal {
			return NewTeeLocal(index, typ, operand), nil
		}
		return NewSetLocal(index, typ, operand), nil
	default:
		return nil, nodeErrorf(key, "instruction %q requires a type prefix", name)
	}
}

func (d *decoder) typed(key *yaml.Node, typ *object.Type, name string, value *yaml.Node) (Instruction, error) {
	if name == "const" {
		if value.Kind != yaml.ScalarNode {
			return nil, nodeErrorf(value, "constant must be a scalar")
		}
		v, err := object.ParseValue(typ, value.Value)
		if err != nil {
			return nil, nodeErrorf(value, "%v", err)
		}
		return NewConst(v), nil
	}
	if name == "eqz" {
		operand, err := d.node(value)
		if err != nil {
			return nil, err
		}
		return NewEqz(typ, operand), nil
	}
	bop, isBinary := op.BinaryOpByName(name)
	cop, isCompare := op.CompareOpByName(name)
	if !isBinary && !isCompare {
		var candidates []string
		for _, suffix := range op.TypedSuffixes() {
			candidates = append(candidates, typ.Name()+"."+suffix)
		}
		return nil, unknownInstruction(key, key.Value, candidates)
	}
	operands, err := d.nodes(value)
	if err != nil {
		return nil, err
	}
	if len(operands) != 2 {
		return nil, nodeErrorf(value, "%s takes 2 operands (%d given)", key.Value, len(operands))
	}
	if isBinary {
		return NewBinary(bop, typ, operands[0], operands[1]), nil
	}
	return NewCompare(cop, typ, operands[0], operands[1]), nil
}

// sequence decodes either a list of instructions (a void scope) or a
// mapping with "type" and "body".
func (d *decoder) sequence(n *yaml.Node) (*object.Type, []Instruction, error) {
	if n.Kind == yaml.SequenceNode {
		body, err := d.nodes(n)
		return object.Void, body, err
	}
	fields, err := fieldsOf(n, "type", "body")
	if err != nil {
		return nil, nil, err
	}
	typ := object.Void
	if t, ok := fields["type"]; ok {
		if typ, err = object.ParseType(t.Value); err != nil {
			return nil, nil, nodeErrorf(t, "%v", err)
		}
	}
	var body []Instruction
	if b, ok := fields["body"]; ok {
		if body, err = d.nodes(b); err != nil {
			return nil, nil, err
		}
	}
	return typ, body, nil
}

func (d *decoder) branch(n *yaml.Node) (Instruction, error) {
	if n.Kind == yaml.ScalarNode {
		depth, err := parseDepth(n)
		if err != nil {
			return nil, err
		}
		return NewBreak(depth), nil
	}
	fields, err := fieldsOf(n, "depth", "value")
	if err != nil {
		return nil, err
	}
	depth, err := parseDepth(fields["depth"])
	if err != nil {
		return nil, err
	}
	if v, ok := fields["value"]; ok {
		value, err := d.node(v)
		if err != nil {
			return nil, err
		}
		return NewBreakWithValue(depth, value), nil
	}
	return NewBreak(depth), nil
}

func (d *decoder) branchIf(n *yaml.Node) (Instruction, error) {
	fields, err := fieldsOf(n, "depth", "cond", "value")
	if err != nil {
		return nil, err
	}
	depth, err := parseDepth(fields["depth"])
	if err != nil {
		return nil, err
	}
	c, ok := fields["cond"]
	if !ok {
		return nil, nodeErrorf(n, "br_if requires a cond")
	}
	cond, err := d.node(c)
	if err != nil {
		return nil, err
	}
	if v, ok := fields["value"]; ok {
		value, err := d.node(v)
		if err != nil {
			return nil, err
		}
		return NewBreakIfWithValue(depth, value, cond), nil
	}
	return NewBreakIf(depth, cond), nil
}

func (d *decoder) conditional(n *yaml.Node) (Instruction, error) {
	fields, err := fieldsOf(n, "type", "cond", "then", "else")
	if err != nil {
		return nil, err
	}
	typ := object.Void
	if t, ok := fields["type"]; ok {
		if typ, err = object.ParseType(t.Value); err != nil {
			return nil, nodeErrorf(t, "%v", err)
		}
	}
	parts := map[string]Instruction{}
	for _, name := range []string{"cond", "then", "else"} {
		part, ok := fields[name]
		if !ok {
			if name == "else" {
				continue
			}
			return nil, nodeErrorf(n, "if requires %s", name)
		}
		instr, err := d.node(part)
		if err != nil {
			return nil, err
		}
		parts[name] = instr
	}
	return NewIf(typ, parts["cond"], parts["then"], parts["else"]), nil
}

func (d *decoder) local(n *yaml.Node) (uint32, *object.Type, error) {
	if n == nil {
		return 0, nil, fmt.Errorf("missing local index")
	}
	index, err := strconv.ParseUint(n.Value, 10, 32)
	if err != nil || n.Kind != yaml.ScalarNode {
		return 0, nil, nodeErrorf(n, "invalid local index %q", n.Value)
	}
	if int(index) >= len(d.frame) {
		return 0, nil, nodeErrorf(n, "local %d does not exist (frame has %d slots)", index, len(d.frame))
	}
	return uint32(index), d.frame[index], nil
}

func parseDepth(n *yaml.Node) (uint32, error) {
	if n == nil {
		return 0, fmt.Errorf("missing branch depth")
	}
	depth, err := strconv.ParseUint(n.Value, 10, 32)
	if err != nil || n.Kind != yaml.ScalarNode {
		return 0, nodeErrorf(n, "invalid branch depth %q", n.Value)
	}
	return uint32(depth), nil
}

// fieldsOf returns the values of a mapping node by key, rejecting keys not
// in allowed.
func fieldsOf(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErrorf(n, "expected a mapping with keys %s", strings.Join(allowed, ", "))
	}
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		known := false
		for _, a := range allowed {
			if key.Value == a {
				known = true
				break
			}
		}
		if !known {
			return nil, nodeErrorf(key, "unexpected key %q", key.Value)
		}
		fields[key.Value] = n.Content[i+1]
	}
	return fields, nil
}
