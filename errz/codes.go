package errz

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Validation errors
//   - E3xxx: Traps
//   - E4xxx: Interpreter faults and host limits
type ErrorCode string

const (
	// Validation errors (E1xxx)
	E1001 ErrorCode = "E1001" // Child type mismatch
	E1002 ErrorCode = "E1002" // Branch depth out of range
	E1003 ErrorCode = "E1003" // Branch value mismatch
	E1004 ErrorCode = "E1004" // Local index out of range
	E1005 ErrorCode = "E1005" // Local type mismatch
	E1006 ErrorCode = "E1006" // Function result mismatch
	E1007 ErrorCode = "E1007" // Invalid operand type
	E1008 ErrorCode = "E1008" // Duplicate function name

	// Traps (E3xxx)
	E3001 ErrorCode = "E3001" // Unreachable executed
	E3002 ErrorCode = "E3002" // Division by zero
	E3003 ErrorCode = "E3003" // Integer overflow
	E3004 ErrorCode = "E3004" // Stack exhausted
	E3005 ErrorCode = "E3005" // Operand stack overflow

	// Faults (E4xxx)
	E4001 ErrorCode = "E4001" // Interpreter inconsistency
	E4002 ErrorCode = "E4002" // Execution halted
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "child type mismatch",
	E1002: "branch depth out of range",
	E1003: "branch value mismatch",
	E1004: "local index out of range",
	E1005: "local type mismatch",
	E1006: "function result mismatch",
	E1007: "invalid operand type",
	E1008: "duplicate function name",
	E3001: "unreachable executed",
	E3002: "division by zero",
	E3003: "integer overflow",
	E3004: "stack exhausted",
	E3005: "operand stack overflow",
	E4001: "interpreter inconsistency",
	E4002: "execution halted",
}

// Description returns a short description of the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

func (c ErrorCode) String() string {
	return string(c)
}
