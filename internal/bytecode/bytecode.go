// Package bytecode persists a compiled *compiler.Program to and from a
// binary file, and renders one to human-readable disassembly.
//
// Grounded on funxy's internal/vm.Bundle persistence (bundle.go): a
// fixed magic, a single version byte, then a gob-encoded payload. This
// repo's format is the single-Chunk-vector case funxy calls its legacy
// v1 bytecode, simplified to match spec.md's single Program (no module
// graph, no resources, no self-contained-binary footer — all out of
// this repo's scope).
package bytecode

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/lacewing-lang/lacewing/internal/compiler"
)

func init() {
	gob.Register(&compiler.Program{})
	gob.Register(&compiler.Chunk{})
}

// magic identifies a lacewing bytecode file: "LCWB".
var magic = [4]byte{'L', 'C', 'W', 'B'}

// formatVersion is bumped whenever the gob-encoded shape changes in a
// way that breaks old readers (spec §6: "byte values are an
// implementation choice but must be stable within a Program file
// format version").
const formatVersion byte = 1

// Encode serializes program to lacewing's bytecode file format.
func Encode(program *compiler.Program) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(magic[:])
	buf.WriteByte(formatVersion)
	if err := gob.NewEncoder(buf).Encode(program); err != nil {
		return nil, fmt.Errorf("bytecode: gob encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a lacewing bytecode file produced by Encode.
func Decode(data []byte) (*compiler.Program, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("bytecode: data too short to be a lacewing bytecode file")
	}
	var got [4]byte
	copy(got[:], data[:4])
	if got != magic {
		return nil, fmt.Errorf("bytecode: bad magic, expected %q", string(magic[:]))
	}
	version := data[4]
	if version != formatVersion {
		return nil, fmt.Errorf("bytecode: unsupported format version %d (this build supports %d)", version, formatVersion)
	}
	var program compiler.Program
	if err := gob.NewDecoder(bytes.NewReader(data[5:])).Decode(&program); err != nil {
		return nil, fmt.Errorf("bytecode: gob decode failed: %w", err)
	}
	return &program, nil
}

// ToFile encodes program and writes it to path.
func ToFile(path string, program *compiler.Program) error {
	data, err := Encode(program)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// FromFile reads and decodes a bytecode file written by ToFile.
func FromFile(path string) (*compiler.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bytecode: %w", err)
	}
	return Decode(data)
}

// Disassemble renders every chunk of program in order as human-readable
// text, one "== chunk i: name ==" section per chunk (grounded on funxy's
// internal/vm.Disassemble/disassembleInstruction).
func Disassemble(program *compiler.Program) string {
	var buf bytes.Buffer
	for i, chunk := range program.Chunks {
		name := chunkName(i, chunk)
		fmt.Fprintf(&buf, "== chunk %d: %s ==\n", i, name)
		disassembleChunk(&buf, chunk)
		buf.WriteByte('\n')
	}
	return buf.String()
}

func chunkName(i int, chunk *compiler.Chunk) string {
	if chunk.Debug != nil && chunk.Debug.Name != "" {
		return chunk.Debug.Name
	}
	if i == 0 {
		return "<main>"
	}
	return "<anonymous>"
}

// instrLayout names each opcode's operand shape for disassembly: the
// machine package's dispatch loop is the other copy of this knowledge,
// kept in sync by hand since the two packages serve different readers
// (a human versus the interpreter).
var instrLayout = map[compiler.Opcode][]string{
	compiler.Cpy:   {"src", "dst"},
	compiler.GetUp: {"slot", "dst"},
	compiler.SetUp: {"slot", "src"},
	compiler.Add:   {"r1", "r2", "dst"},
	compiler.Sub:   {"r1", "r2", "dst"},
	compiler.Mul:   {"r1", "r2", "dst"},
	compiler.Div:   {"r1", "r2", "dst"},
	compiler.Mod:   {"r1", "r2", "dst"},
	compiler.Pow:   {"r1", "r2", "dst"},
	compiler.Leq:   {"r1", "r2", "dst"},
	compiler.Geq:   {"r1", "r2", "dst"},
	compiler.Lth:   {"r1", "r2", "dst"},
	compiler.Gth:   {"r1", "r2", "dst"},
	compiler.Eq:    {"r1", "r2", "dst"},
	compiler.Neq:   {"r1", "r2", "dst"},
	compiler.And:   {"r1", "r2", "dst"},
	compiler.Or:    {"r1", "r2", "dst"},
	compiler.Not:   {"src", "dst"},
	compiler.Neg:   {"src", "dst"},
	compiler.Call:  {"fn", "range-start"},
	compiler.Func:  {"chunk", "dst"},
	compiler.Log:   {"src"},
	compiler.Ret:   {"src"},
}

func disassembleChunk(buf *bytes.Buffer, chunk *compiler.Chunk) {
	offset := 0
	for offset < len(chunk.Code) {
		offset = disassembleInstr(buf, chunk, offset)
	}
}

func disassembleInstr(buf *bytes.Buffer, chunk *compiler.Chunk, offset int) int {
	fmt.Fprintf(buf, "%04d ", offset)
	op := compiler.Opcode(chunk.Code[offset])
	offset++

	switch {
	case op == compiler.Jmp || op == compiler.Jif:
		disp := int8(chunk.Code[offset])
		target := offset + int(disp)
		offset++
		if op == compiler.Jif {
			cond := chunk.Code[offset]
			offset++
			fmt.Fprintf(buf, "%-6s -> %04d  cond=R%d\n", op, target, cond)
		} else {
			fmt.Fprintf(buf, "%-6s -> %04d\n", op, target)
		}

	default:
		operands, ok := instrLayout[op]
		if !ok {
			fmt.Fprintf(buf, "%-6s <unknown opcode %d>\n", op, byte(op))
			return offset
		}
		fmt.Fprintf(buf, "%-6s", op.String())
		for _, name := range operands {
			fmt.Fprintf(buf, " %s=%d", name, chunk.Code[offset])
			offset++
		}
		buf.WriteByte('\n')
	}
	return offset
}
