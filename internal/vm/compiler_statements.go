package vm

import "github.com/havrix/glox/internal/token"

// declaration is the grammar's top production: a class, function, or
// var declaration, or (falling through) any statement. It resyncs at
// the next statement boundary after a compile error so one bad line
// doesn't cascade into a wall of spurious follow-on errors.
func (c *Compiler) declaration() {
	switch {
	case c.match(token.Class):
		c.classDeclaration()
	case c.match(token.Fun):
		c.funDeclaration()
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.Return):
		c.returnStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) varDeclaration() {
	c.consume(token.Identifier, "Expect variable name.")
	name := c.previous.Lexeme
	c.declareVariable(name)
	global := c.identifierConstant(name)

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	c.consume(token.Identifier, "Expect function name.")
	name := c.previous.Lexeme
	c.declareVariable(name)
	global := c.identifierConstant(name)
	c.markInitialized()
	c.compileFunction(name, TypeFunction)
	c.defineVariable(global)
}

// compileFunction compiles one function body (declaration or method)
// in its own nested Compiler, emitting the enclosing CLOSURE
// instruction with its upvalue-capture operand pairs once the body is
// done.
func (c *Compiler) compileFunction(name string, funcType FunctionType) {
	fc := newFunctionCompiler(c, name, funcType)

	fc.beginScope()
	fc.consume(token.LeftParen, "Expect '(' after function name.")
	if !fc.check(token.RightParen) {
		for {
			fc.function.Arity++
			if fc.function.Arity > 255 {
				fc.errorAtCurrent("Can't have more than 255 parameters.")
			}
			fc.consume(token.Identifier, "Expect parameter name.")
			paramName := fc.previous.Lexeme
			fc.declareVariable(paramName)
			fc.markInitialized()
			if !fc.match(token.Comma) {
				break
			}
		}
	}
	fc.consume(token.RightParen, "Expect ')' after parameters.")
	fc.consume(token.LeftBrace, "Expect '{' before function body.")
	fc.block()

	fn := fc.endCompiler()

	c.current = fc.current
	c.previous = fc.previous

	c.emitOpByte(OpClosure, c.makeConstant(FromObject(fn)))
	for _, up := range fc.upvalues {
		isLocal := byte(0)
		if up.IsLocal {
			isLocal = 1
		}
		c.emitByte(isLocal)
		c.emitByte(up.Index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.Identifier, "Expect class name.")
	name := c.previous.Lexeme
	nameConst := c.identifierConstant(name)
	c.declareVariable(name)

	c.emitOpByte(OpClass, nameConst)
	c.defineVariable(nameConst)

	cs := &classState{enclosing: c.class}
	c.class = cs
	defer func() { c.class = c.class.enclosing }()

	if c.match(token.Less) {
		c.consume(token.Identifier, "Expect superclass name.")
		if c.previous.Lexeme == name {
			c.error("A class can't inherit from itself.")
		}
		c.variable(false) // pushes the superclass

		c.beginScope()
		c.addLocal("super")
		c.markInitialized()

		c.namedVariable(name, false)
		c.emitOp(OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(name, false) // push the class back for METHOD
	c.consume(token.LeftBrace, "Expect '{' before class body.")
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RightBrace, "Expect '}' after class body.")
	c.emitOp(OpPop) // the class value pushed above

	if cs.hasSuperclass {
		c.endScope()
	}
}

func (c *Compiler) method() {
	c.consume(token.Identifier, "Expect method name.")
	name := c.previous.Lexeme
	nameConst := c.identifierConstant(name)

	funcType := TypeMethod
	if name == "init" {
		funcType = TypeInitializer
	}
	c.compileFunction(name, funcType)
	c.emitOpByte(OpMethod, nameConst)
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.statement()

	elseJump := c.emitJump(OpJump)
	c.patchJump(thenJump)
	c.emitOp(OpPop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.chunk().Len()
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(OpPop)
}

// forStatement desugars entirely to a while loop at compile time: no
// dedicated loop opcode exists, matching §4.1's note that `for` is
// syntax sugar over `while`.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.chunk().Len()
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(OpJumpIfFalse)
		c.emitOp(OpPop)
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(OpJump)
		incrementStart := c.chunk().Len()
		c.expression()
		c.emitOp(OpPop)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(OpPop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.funcType == TypeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.Semicolon) {
		c.emitReturn()
		return
	}
	if c.funcType == TypeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after return value.")
	c.emitOp(OpReturn)
}
