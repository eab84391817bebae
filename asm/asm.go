// Package asm is a typed builder over runtime.InstructionBlock's opcode
// encoding — NOT a lexer, parser, or compiler (those are out of scope for
// the execution core). It exists so embedders and tests can hand-assemble
// a function body without poking at Instruction/InstructionBlock fields
// directly: it encodes typed calls directly into the same Instruction
// slice the interpreter consumes (there is no intermediate byte format).
package asm

import "github.com/escript-core/escript/runtime"

// Builder accumulates instructions, string constants, and local-variable
// names for one InstructionBlock. Label resolves forward references: call
// Label to reserve a marker, Jmp/JmpOnTrue/JmpOnFalse/JmpIfSet or
// SetExceptionHandler to emit an instruction targeting it, and Mark to bind
// it to the instruction about to be emitted.
type Builder struct {
	block   *runtime.InstructionBlock
	marks   map[int]int // label id -> resolved address, -1 while unresolved
	pending map[int][]int
	nextID  int
}

// New starts a Builder for a function named name in file (diagnostic-only).
func New(file, name string) *Builder {
	return &Builder{
		block: &runtime.InstructionBlock{
			File:            file,
			Name:            name,
			MultiParamIndex: runtime.NoMultiParam,
		},
		marks:   make(map[int]int),
		pending: make(map[int][]int),
	}
}

// SetArity declares the function's parameter contract; multiParamIndex is
// runtime.NoMultiParam for a fixed-arity function.
func (b *Builder) SetArity(minArgs, maxArgs, multiParamIndex, numLocals int) *Builder {
	b.block.MinArgs = minArgs
	b.block.MaxArgs = maxArgs
	b.block.MultiParamIndex = multiParamIndex
	b.block.NumLocals = numLocals
	return b
}

// DeclareLocal records the diagnostic name for local slot idx.
func (b *Builder) DeclareLocal(idx int, name string) *Builder {
	for len(b.block.LocalVariableNames) <= idx {
		b.block.LocalVariableNames = append(b.block.LocalVariableNames, "")
	}
	b.block.LocalVariableNames[idx] = name
	return b
}

// AddNestedFunction registers a compiled-in closure body, returning the
// index I_PUSH_FUNCTION should reference.
func (b *Builder) AddNestedFunction(nested *runtime.InstructionBlock) uint32 {
	b.block.NestedFunctions = append(b.block.NestedFunctions, nested)
	return uint32(len(b.block.NestedFunctions) - 1)
}

func (b *Builder) stringConst(s string) uint32 {
	for i, existing := range b.block.StringConstants {
		if existing == s {
			return uint32(i)
		}
	}
	b.block.StringConstants = append(b.block.StringConstants, s)
	return uint32(len(b.block.StringConstants) - 1)
}

func (b *Builder) emit(ins runtime.Instruction) int {
	b.block.Instructions = append(b.block.Instructions, ins)
	return len(b.block.Instructions) - 1
}

// Label reserves a jump target to be bound later with Mark.
func (b *Builder) Label() int {
	id := b.nextID
	b.nextID++
	b.marks[id] = -1
	return id
}

// Mark binds label to the address of the next instruction emitted.
func (b *Builder) Mark(label int) *Builder {
	addr := uint32(len(b.block.Instructions))
	b.marks[label] = int(addr)
	for _, idx := range b.pending[label] {
		b.block.Instructions[idx].Addr = addr
	}
	delete(b.pending, label)
	return b
}

func (b *Builder) emitJump(op runtime.OpCode, label int) *Builder {
	idx := b.emit(runtime.Instruction{Op: op})
	if addr, ok := b.marks[label]; ok && addr >= 0 {
		b.block.Instructions[idx].Addr = uint32(addr)
	} else {
		b.pending[label] = append(b.pending[label], idx)
	}
	return b
}

// --- stack/value instructions ---

func (b *Builder) PushVoid() *Builder      { b.emit(runtime.Instruction{Op: runtime.I_PUSH_VOID}); return b }
func (b *Builder) PushUndefined() *Builder { b.emit(runtime.Instruction{Op: runtime.I_PUSH_UNDEFINED}); return b }
func (b *Builder) PushBool(v bool) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_PUSH_BOOL, Bool: v})
	return b
}
func (b *Builder) PushNumber(v float64) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_PUSH_NUMBER, Num: v})
	return b
}
func (b *Builder) PushUint(v uint32) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_PUSH_UINT, U32: v})
	return b
}
func (b *Builder) PushID(id runtime.ID) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_PUSH_ID, Id: id})
	return b
}
func (b *Builder) PushString(s string) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_PUSH_STRING, U32: b.stringConst(s)})
	return b
}
func (b *Builder) PushFunction(nestedIdx uint32) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_PUSH_FUNCTION, U32: nestedIdx})
	return b
}
func (b *Builder) Pop() *Builder { b.emit(runtime.Instruction{Op: runtime.I_POP}); return b }
func (b *Builder) Dup() *Builder { b.emit(runtime.Instruction{Op: runtime.I_DUP}); return b }
func (b *Builder) Not() *Builder { b.emit(runtime.Instruction{Op: runtime.I_NOT}); return b }

// --- control flow ---

func (b *Builder) Jmp(label int) *Builder         { return b.emitJump(runtime.I_JMP, label) }
func (b *Builder) JmpOnTrue(label int) *Builder   { return b.emitJump(runtime.I_JMP_ON_TRUE, label) }
func (b *Builder) JmpOnFalse(label int) *Builder  { return b.emitJump(runtime.I_JMP_ON_FALSE, label) }
func (b *Builder) JmpIfSet(label int) *Builder    { return b.emitJump(runtime.I_JMP_IF_SET, label) }
func (b *Builder) SetMarker(id runtime.ID) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_SET_MARKER, Id: id})
	return b
}

// --- locals ---

func (b *Builder) GetLocal(idx uint32) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_GET_LOCAL_VARIABLE, U32: idx})
	return b
}
func (b *Builder) AssignLocal(idx uint32) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_ASSIGN_LOCAL, U32: idx})
	return b
}
func (b *Builder) ResetLocal(idx uint32) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_RESET_LOCAL_VARIABLE, U32: idx})
	return b
}

// --- variables / attributes ---

func (b *Builder) GetVariable(id runtime.ID) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_GET_VARIABLE, Id: id})
	return b
}
func (b *Builder) FindVariable(id runtime.ID) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_FIND_VARIABLE, Id: id})
	return b
}
func (b *Builder) AssignVariable(id runtime.ID) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_ASSIGN_VARIABLE, Id: id})
	return b
}
func (b *Builder) GetAttribute(id runtime.ID) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_GET_ATTRIBUTE, Id: id})
	return b
}
func (b *Builder) SetAttribute(id runtime.ID) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_SET_ATTRIBUTE, Id: id})
	return b
}
func (b *Builder) AssignAttribute(id runtime.ID) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_ASSIGN_ATTRIBUTE, Id: id})
	return b
}

// --- calls ---

func (b *Builder) Call(nArgs uint32) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_CALL, U32: nArgs})
	return b
}
func (b *Builder) CreateInstance(nArgs uint32) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_CREATE_INSTANCE, U32: nArgs})
	return b
}
func (b *Builder) InitCaller(nSuperArgs uint32) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_INIT_CALLER, U32: nSuperArgs})
	return b
}
func (b *Builder) SetExceptionHandler(label int) *Builder {
	return b.emitJump(runtime.I_SET_EXCEPTION_HANDLER, label)
}
func (b *Builder) SysCall(fnID, nArgs uint32) *Builder {
	b.emit(runtime.Instruction{Op: runtime.I_SYS_CALL, U32: fnID, U32b: nArgs})
	return b
}
func (b *Builder) Yield() *Builder { b.emit(runtime.Instruction{Op: runtime.I_YIELD}); return b }

// Build finalizes and returns the assembled InstructionBlock. Panics if any
// emitted jump still targets a Label that was never Mark-ed, since that is
// always a builder bug, not a runtime error; a Label that no jump uses may
// stay unmarked.
func (b *Builder) Build() *runtime.InstructionBlock {
	if len(b.pending) > 0 {
		panic("asm: unresolved label(s) in function " + b.block.Name)
	}
	return b.block
}
