package runtime

import "strconv"

// DebugLine maps an instruction address to a source line, sorted by
// Address so LineForAddress below can resolve a cursor to a line in
// O(log n).
type DebugLine struct {
	Address int
	Line    int
}

// NoMultiParam marks a function with no trailing spread parameter.
const NoMultiParam = -1

// InstructionBlock is the compiled unit the core consumes: a flat
// instruction sequence plus the per-function constant and metadata tables
// the interpreter and decompiler need. The external compiler produces
// these; the core only ever reads them.
type InstructionBlock struct {
	File string
	Name string

	Instructions []Instruction

	// StringConstants backs I_PUSH_STRING and RtValue.ToObject's
	// LOCAL_STRING_IDX case.
	StringConstants []string

	// LocalVariableNames is indexed the same way FCC.Locals is; used by
	// the decompiler and by error messages naming an uninitialised local.
	LocalVariableNames []string

	// NestedFunctions backs I_PUSH_FUNCTION's internal_fn_idx.
	NestedFunctions []*InstructionBlock

	// MinArgs/MaxArgs/MultiParamIndex describe the declared parameter
	// list for arity checking in startFunctionExecution. MultiParamIndex
	// is NoMultiParam when the function has no trailing spread parameter,
	// otherwise the local-slot index (relative to the parameter block)
	// that collects overflow arguments into an Array.
	MinArgs         int
	MaxArgs         int
	MultiParamIndex int

	// NumLocals is the total local-slot count including slots 0-2
	// (this, function, result) and parameters.
	NumLocals int

	Lines []DebugLine
}

// LineForAddress resolves an instruction cursor to a source line via
// binary search over Lines.
func (b *InstructionBlock) LineForAddress(addr int) int {
	lines := b.Lines
	left, right := 0, len(lines)-1
	result := -1
	for left <= right {
		mid := (left + right) / 2
		if lines[mid].Address <= addr {
			result = lines[mid].Line
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	return result
}

// FormatError renders a "[file:line]::Error: message" diagnostic string,
// resolving the line from cursor via LineForAddress.
func (b *InstructionBlock) FormatError(cursor int, message string) string {
	return "[" + b.File + ":" + strconv.Itoa(b.LineForAddress(cursor)) + "]::Error: " + message
}
