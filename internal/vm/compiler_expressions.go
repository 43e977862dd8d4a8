package vm

import "github.com/havrix/glox/internal/token"

// Precedence orders binary operators from loosest to tightest binding,
// mirroring the grammar of spec §4.1.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LeftParen:    {(*Compiler).grouping, (*Compiler).call, PrecCall},
		token.Dot:          {nil, (*Compiler).dot, PrecCall},
		token.Minus:        {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		token.Plus:         {nil, (*Compiler).binary, PrecTerm},
		token.Slash:        {nil, (*Compiler).binary, PrecFactor},
		token.Star:         {nil, (*Compiler).binary, PrecFactor},
		token.Bang:         {(*Compiler).unary, nil, PrecNone},
		token.BangEqual:    {nil, (*Compiler).binary, PrecEquality},
		token.EqualEqual:   {nil, (*Compiler).binary, PrecEquality},
		token.Greater:      {nil, (*Compiler).binary, PrecComparison},
		token.GreaterEqual: {nil, (*Compiler).binary, PrecComparison},
		token.Less:         {nil, (*Compiler).binary, PrecComparison},
		token.LessEqual:    {nil, (*Compiler).binary, PrecComparison},
		token.Identifier:   {(*Compiler).variable, nil, PrecNone},
		token.String:       {(*Compiler).string_, nil, PrecNone},
		token.Number:       {(*Compiler).number, nil, PrecNone},
		token.And:          {nil, (*Compiler).and_, PrecAnd},
		token.Or:           {nil, (*Compiler).or_, PrecOr},
		token.False:        {(*Compiler).literal, nil, PrecNone},
		token.Nil:          {(*Compiler).literal, nil, PrecNone},
		token.True:         {(*Compiler).literal, nil, PrecNone},
		token.This:         {(*Compiler).this_, nil, PrecNone},
		token.Super:        {(*Compiler).super_, nil, PrecNone},
	}
}

func getRule(k token.Kind) parseRule {
	if r, ok := rules[k]; ok {
		return r
	}
	return parseRule{precedence: PrecNone}
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infix := getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) number(canAssign bool) {
	f, _ := c.previous.Literal.(float64)
	c.emitConstant(Number(f))
}

func (c *Compiler) string_(canAssign bool) {
	s, _ := c.previous.Literal.(string)
	c.emitConstant(FromObject(c.vm.internBytes([]byte(s))))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Kind {
	case token.False:
		c.emitOp(OpFalse)
	case token.Nil:
		c.emitOp(OpNil)
	case token.True:
		c.emitOp(OpTrue)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	op := c.previous.Kind
	c.parsePrecedence(PrecUnary)
	switch op {
	case token.Minus:
		c.emitOp(OpNegate)
	case token.Bang:
		c.emitOp(OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	op := c.previous.Kind
	rule := getRule(op)
	c.parsePrecedence(rule.precedence + 1)
	switch op {
	case token.BangEqual:
		c.emitOp(OpEqual)
		c.emitOp(OpNot)
	case token.EqualEqual:
		c.emitOp(OpEqual)
	case token.Greater:
		c.emitOp(OpGreater)
	case token.GreaterEqual:
		c.emitOp(OpLess)
		c.emitOp(OpNot)
	case token.Less:
		c.emitOp(OpLess)
	case token.LessEqual:
		c.emitOp(OpGreater)
		c.emitOp(OpNot)
	case token.Plus:
		c.emitOp(OpAdd)
	case token.Minus:
		c.emitOp(OpSubtract)
	case token.Star:
		c.emitOp(OpMultiply)
	case token.Slash:
		c.emitOp(OpDivide)
	}
}

func (c *Compiler) and_(canAssign bool) {
	endJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(canAssign bool) {
	elseJump := c.emitJump(OpJumpIfFalse)
	endJump := c.emitJump(OpJump)
	c.patchJump(elseJump)
	c.emitOp(OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOpByte(OpCall, argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(token.RightParen) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(count)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Identifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous.Lexeme)

	switch {
	case canAssign && c.match(token.Equal):
		c.expression()
		c.emitOpByte(OpSetProperty, name)
	case c.match(token.LeftParen):
		argCount := c.argumentList()
		c.emitOpByte(OpInvoke, name)
		c.emitByte(argCount)
	default:
		c.emitOpByte(OpGetProperty, name)
	}
}

// variable resolves name as a local, an upvalue, or (failing both) a
// global, and emits the matching GET/SET pair depending on whether an
// assignment follows.
func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp Opcode
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp, setOp = OpGetLocal, OpSetLocal
	} else if arg = c.resolveUpvalue(name); arg != -1 {
		getOp, setOp = OpGetUpvalue, OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = OpGetGlobal, OpSetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}

func (c *Compiler) this_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super_(canAssign bool) {
	switch {
	case c.class == nil:
		c.error("Can't use 'super' outside of a class.")
	case !c.class.hasSuperclass:
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.Dot, "Expect '.' after 'super'.")
	c.consume(token.Identifier, "Expect superclass method name.")
	name := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable("this", false)
	if c.match(token.LeftParen) {
		argCount := c.argumentList()
		c.namedVariable("super", false)
		c.emitOpByte(OpSuperInvoke, name)
		c.emitByte(argCount)
	} else {
		c.namedVariable("super", false)
		c.emitOpByte(OpGetSuper, name)
	}
}
