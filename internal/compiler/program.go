package compiler

// Program is an ordered list of Chunks. Index 0 is the top-level
// <main> chunk: zero parameters, no upvalues.
type Program struct {
	Chunks []*Chunk
}

// Main returns the program's entry chunk.
func (p *Program) Main() *Chunk {
	return p.Chunks[0]
}
