package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders every instruction of chunk as human-readable
// text, headed by name — the output of the PrintCode debug switch
// (config.Debug).
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = disassembleInstruction(&sb, chunk, offset)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	fmt.Fprintf(sb, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", chunk.Lines[offset])
	}

	op := Opcode(chunk.Code[offset])
	switch op {
	case OpConstant:
		return constantInstruction(sb, op, chunk, offset)
	case OpNil, OpTrue, OpFalse, OpPop, OpEqual, OpGreater, OpLess,
		OpAdd, OpSubtract, OpMultiply, OpDivide, OpNot, OpNegate,
		OpPrint, OpCloseUpvalue, OpReturn, OpInherit:
		return simpleInstruction(sb, op, offset)
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		return byteInstruction(sb, op, chunk, offset)
	case OpGetGlobal, OpSetGlobal, OpDefineGlobal, OpGetProperty,
		OpSetProperty, OpGetSuper, OpClass, OpMethod:
		return constantInstruction(sb, op, chunk, offset)
	case OpJump, OpJumpIfFalse:
		return jumpInstruction(sb, op, 1, chunk, offset)
	case OpLoop:
		return jumpInstruction(sb, op, -1, chunk, offset)
	case OpInvoke, OpSuperInvoke:
		return invokeInstruction(sb, op, chunk, offset)
	case OpClosure:
		return closureInstruction(sb, chunk, offset)
	default:
		fmt.Fprintf(sb, "Unknown opcode %d\n", byte(op))
		return offset + 1
	}
}

func simpleInstruction(sb *strings.Builder, op Opcode, offset int) int {
	fmt.Fprintf(sb, "%s\n", op)
	return offset + 1
}

func byteInstruction(sb *strings.Builder, op Opcode, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(sb, "%-16s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(sb *strings.Builder, op Opcode, sign int, chunk *Chunk, offset int) int {
	jump := int(chunk.ReadUint16(offset + 1))
	fmt.Fprintf(sb, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func constantInstruction(sb *strings.Builder, op Opcode, chunk *Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(sb, "%-16s %4d '%s'\n", op, idx, chunk.Constants[idx].String())
	return offset + 2
}

func invokeInstruction(sb *strings.Builder, op Opcode, chunk *Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	fmt.Fprintf(sb, "%-16s (%d args) %4d '%s'\n", op, argCount, idx, chunk.Constants[idx].String())
	return offset + 3
}

func closureInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	offset++
	idx := chunk.Code[offset]
	offset++
	fmt.Fprintf(sb, "%-16s %4d '%s'\n", OpClosure, idx, chunk.Constants[idx].String())

	fn, ok := chunk.Constants[idx].AsObject().(*ObjFunction)
	if !ok {
		return offset
	}
	for j := 0; j < fn.UpvalueCount; j++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		offset += 2
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(sb, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
