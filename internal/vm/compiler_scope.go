package vm

// ---- bytecode emission ----

func (c *Compiler) chunk() *Chunk { return c.function.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.chunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op Opcode) {
	c.chunk().WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitOpByte(op Opcode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitReturn() {
	if c.funcType == TypeInitializer {
		// Bare `return;` (or falling off the end) in an initializer
		// yields the receiver, which lives in slot 0.
		c.emitOpByte(OpGetLocal, 0)
	} else {
		c.emitOp(OpNil)
	}
	c.emitOp(OpReturn)
}

// emitJump emits a jump opcode with a placeholder 16-bit offset and
// returns the offset of that placeholder, to be patched later.
func (c *Compiler) emitJump(op Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return c.chunk().Len() - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := c.chunk().Len() - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.chunk().PatchUint16(offset, uint16(jump))
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(OpLoop)
	offset := c.chunk().Len() - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) makeConstant(v Value) byte {
	idx := c.chunk().AddConstant(v)
	if idx > 255 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v Value) {
	c.emitOpByte(OpConstant, c.makeConstant(v))
}

// identifierConstant interns name and adds it to the constant pool,
// returning its index for GET/SET_GLOBAL, GET/SET_PROPERTY, METHOD,
// and GET_SUPER operands.
func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(FromObject(c.vm.internBytes([]byte(name))))
}

// ---- scopes ----

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope pops every local declared in the scope being left. A local
// that was captured by a nested closure gets CLOSE_UPVALUE instead of
// a plain POP, moving its value off the stack into the upvalue.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for c.localCount > 0 && c.locals[c.localCount-1].Depth > c.scopeDepth {
		if c.locals[c.localCount-1].IsCaptured {
			c.emitOp(OpCloseUpvalue)
		} else {
			c.emitOp(OpPop)
		}
		c.localCount--
	}
}

// ---- locals ----

// declareVariable adds name as a local in the current scope (with the
// sentinel depth -1, so it can't be read from its own initializer) or
// does nothing at the top level, where variables are globals resolved
// by name instead of slot.
func (c *Compiler) declareVariable(name string) {
	if c.scopeDepth == 0 {
		return
	}
	for i := c.localCount - 1; i >= 0; i-- {
		local := &c.locals[i]
		if local.Depth != -1 && local.Depth < c.scopeDepth {
			break
		}
		if local.Name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if c.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.locals[c.localCount] = Local{Name: name, Depth: -1}
	c.localCount++
}

// markInitialized is define's local-scope half: it sets the pending
// local's depth, making it visible to reads.
func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[c.localCount-1].Depth = c.scopeDepth
}

// defineVariable emits DEFINE_GLOBAL for a global, or just marks the
// local initialized — locals need no runtime instruction since their
// value is already sitting in the right stack slot.
func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(OpDefineGlobal, global)
}

func (c *Compiler) resolveLocal(name string) int {
	for i := c.localCount - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			if c.locals[i].Depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue implements §4.4's three-case resolution: a local in
// the immediately enclosing compiler, a transitively-resolved upvalue
// further out, or not found (meaning: treat as global).
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if local := c.enclosing.resolveLocal(name); local != -1 {
		c.enclosing.locals[local].IsCaptured = true
		return c.addUpvalue(byte(local), true)
	}
	if up := c.enclosing.resolveUpvalue(name); up != -1 {
		return c.addUpvalue(byte(up), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(index byte, isLocal bool) int {
	for i, u := range c.upvalues {
		if u.Index == index && u.IsLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxLocals {
		c.error("Too many closure variables in function.")
		return 0
	}
	c.upvalues = append(c.upvalues, Upvalue{Index: index, IsLocal: isLocal})
	return len(c.upvalues) - 1
}
