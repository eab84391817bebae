package runtime

import (
	"fmt"
	"strings"
)

// Decompile renders an InstructionBlock as a flat, human-readable listing —
// one line per instruction, address-prefixed, payload appended according to
// what that opcode actually carries. There is no length-prefixed byte
// stream to walk here; every instruction is already a fixed-size struct
// indexed by address.
func Decompile(b *InstructionBlock) string {
	var out strings.Builder
	fmt.Fprintf(&out, "function %s (%s)\n", b.Name, b.File)
	fmt.Fprintf(&out, "  args: min=%d max=%d multiParam=%d locals=%d\n",
		b.MinArgs, b.MaxArgs, b.MultiParamIndex, b.NumLocals)

	for addr, ins := range b.Instructions {
		fmt.Fprintf(&out, "% 4d  %-22s", addr, ins.Op.String())
		switch ins.Op {
		case I_PUSH_BOOL:
			fmt.Fprintf(&out, "%v", ins.Bool)
		case I_PUSH_NUMBER:
			fmt.Fprintf(&out, "%g", ins.Num)
		case I_PUSH_UINT:
			fmt.Fprintf(&out, "%d", ins.U32)
		case I_PUSH_ID, I_GET_VARIABLE, I_FIND_VARIABLE, I_ASSIGN_VARIABLE,
			I_GET_ATTRIBUTE, I_SET_ATTRIBUTE, I_ASSIGN_ATTRIBUTE:
			fmt.Fprintf(&out, "%s", ins.Id.String())
		case I_PUSH_STRING:
			if int(ins.U32) < len(b.StringConstants) {
				fmt.Fprintf(&out, "%q", b.StringConstants[ins.U32])
			} else {
				fmt.Fprintf(&out, "#%d", ins.U32)
			}
		case I_PUSH_FUNCTION:
			if int(ins.U32) < len(b.NestedFunctions) {
				fmt.Fprintf(&out, "%s", b.NestedFunctions[ins.U32].Name)
			}
		case I_GET_LOCAL_VARIABLE, I_ASSIGN_LOCAL, I_RESET_LOCAL_VARIABLE:
			fmt.Fprintf(&out, "%d %s", ins.U32, b.localName(ins.U32))
		case I_JMP, I_JMP_ON_TRUE, I_JMP_ON_FALSE, I_JMP_IF_SET, I_SET_EXCEPTION_HANDLER:
			fmt.Fprintf(&out, "-> %d", ins.Addr)
		case I_CALL, I_CREATE_INSTANCE, I_INIT_CALLER:
			if ins.U32 == DynamicParameterCount {
				out.WriteString("dynamic")
			} else {
				fmt.Fprintf(&out, "%d", ins.U32)
			}
		case I_SYS_CALL:
			fmt.Fprintf(&out, "fn=%d args=%d", ins.U32, ins.U32b)
		}
		out.WriteByte('\n')
	}
	for _, nested := range b.NestedFunctions {
		out.WriteString(Decompile(nested))
	}
	return out.String()
}

func (b *InstructionBlock) localName(idx uint32) string {
	if int(idx) < len(b.LocalVariableNames) {
		return b.LocalVariableNames[idx]
	}
	return ""
}
