package runtime

// OpCode is a single interpreter instruction's tag. Each carries at most
// one payload field (I_SYS_CALL alone uses two, U32 and U32b), interpreted
// according to the table below; unused payload fields are simply left zero.
type OpCode byte

const (
	I_PUSH_VOID OpCode = iota
	I_PUSH_UNDEFINED
	I_PUSH_BOOL          // payload: Bool
	I_PUSH_NUMBER        // payload: Num
	I_PUSH_UINT          // payload: U32
	I_PUSH_ID            // payload: Id
	I_PUSH_STRING        // payload: U32 (string_const_idx)
	I_PUSH_FUNCTION      // payload: U32 (internal_fn_idx)
	I_POP
	I_DUP
	I_NOT
	I_JMP                // payload: Addr
	I_JMP_ON_TRUE        // payload: Addr
	I_JMP_ON_FALSE       // payload: Addr
	I_JMP_IF_SET         // payload: Addr
	I_SET_MARKER         // payload: Id (no-op at runtime)
	I_GET_LOCAL_VARIABLE // payload: U32 (local idx)
	I_ASSIGN_LOCAL       // payload: U32 (local idx)
	I_RESET_LOCAL_VARIABLE // payload: U32 (local idx)
	I_GET_VARIABLE       // payload: Id
	I_FIND_VARIABLE      // payload: Id
	I_ASSIGN_VARIABLE    // payload: Id
	I_GET_ATTRIBUTE      // payload: Id
	I_SET_ATTRIBUTE      // payload: Id
	I_ASSIGN_ATTRIBUTE   // payload: Id
	I_CALL               // payload: U32 (n_args, or DynamicParameterCount)
	I_CREATE_INSTANCE    // payload: U32 (n_args, or DynamicParameterCount)
	I_INIT_CALLER        // payload: U32 (n_super_args)
	I_SET_EXCEPTION_HANDLER // payload: Addr
	I_SYS_CALL           // payload: U32,U32 (fn_id, n_args)
	I_YIELD
)

// DynamicParameterCount is the sentinel n_args value meaning "pop a u32
// off the stack first to learn the real argument count" (used for spread
// calls whose arity is only known after EXPAND_PARAMS_ON_STACK runs).
const DynamicParameterCount uint32 = 0xFFFFFFFF

// Instruction is one decoded opcode plus whichever payload fields it uses.
// Payload is deliberately flat (no interface{}) so a function body is a
// plain slice with no per-instruction allocation.
type Instruction struct {
	Op   OpCode
	Bool bool
	U32  uint32 // generic 32-bit payload: local idx, string idx, fn idx, n_args
	U32b uint32 // second 32-bit payload, used only by I_SYS_CALL (n_args)
	Num  float64
	Id   ID
	Addr uint32 // jump target: absolute instruction index
}

func (op OpCode) String() string {
	switch op {
	case I_PUSH_VOID:
		return "PUSH_VOID"
	case I_PUSH_UNDEFINED:
		return "PUSH_UNDEFINED"
	case I_PUSH_BOOL:
		return "PUSH_BOOL"
	case I_PUSH_NUMBER:
		return "PUSH_NUMBER"
	case I_PUSH_UINT:
		return "PUSH_UINT"
	case I_PUSH_ID:
		return "PUSH_ID"
	case I_PUSH_STRING:
		return "PUSH_STRING"
	case I_PUSH_FUNCTION:
		return "PUSH_FUNCTION"
	case I_POP:
		return "POP"
	case I_DUP:
		return "DUP"
	case I_NOT:
		return "NOT"
	case I_JMP:
		return "JMP"
	case I_JMP_ON_TRUE:
		return "JMP_ON_TRUE"
	case I_JMP_ON_FALSE:
		return "JMP_ON_FALSE"
	case I_JMP_IF_SET:
		return "JMP_IF_SET"
	case I_SET_MARKER:
		return "SET_MARKER"
	case I_GET_LOCAL_VARIABLE:
		return "GET_LOCAL_VARIABLE"
	case I_ASSIGN_LOCAL:
		return "ASSIGN_LOCAL"
	case I_RESET_LOCAL_VARIABLE:
		return "RESET_LOCAL_VARIABLE"
	case I_GET_VARIABLE:
		return "GET_VARIABLE"
	case I_FIND_VARIABLE:
		return "FIND_VARIABLE"
	case I_ASSIGN_VARIABLE:
		return "ASSIGN_VARIABLE"
	case I_GET_ATTRIBUTE:
		return "GET_ATTRIBUTE"
	case I_SET_ATTRIBUTE:
		return "SET_ATTRIBUTE"
	case I_ASSIGN_ATTRIBUTE:
		return "ASSIGN_ATTRIBUTE"
	case I_CALL:
		return "CALL"
	case I_CREATE_INSTANCE:
		return "CREATE_INSTANCE"
	case I_INIT_CALLER:
		return "INIT_CALLER"
	case I_SET_EXCEPTION_HANDLER:
		return "SET_EXCEPTION_HANDLER"
	case I_SYS_CALL:
		return "SYS_CALL"
	case I_YIELD:
		return "YIELD"
	default:
		return "UNKNOWN"
	}
}
