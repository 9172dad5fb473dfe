//go:build release

package assert

func debugAssert(cond bool, msg string) {
	// Released builds trust the invariant holds; checking it here would
	// cost every register allocation and every Value construction.
}
