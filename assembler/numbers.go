package assembler

import (
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var (
	reBin = regexp.MustCompile(`^0b([01]+)$`)
	reOct = regexp.MustCompile(`^0o([0-7]+)$`)
	reDec = regexp.MustCompile(`^-?([0-9]+)$`)
	reHex = regexp.MustCompile(`^0x([0-9a-fA-F]+)$`)
)

// parseNum recognizes decimal, 0x, 0b, and 0o literals, generalizing the
// teacher's parseNum to also accept a leading '-' for decimal.
func parseNum(in string) (int64, error) {
	if m := reHex.FindStringSubmatch(in); m != nil {
		v, err := strconv.ParseInt(m[1], 16, 64)
		return v, err
	}
	if m := reBin.FindStringSubmatch(in); m != nil {
		v, err := strconv.ParseInt(m[1], 2, 64)
		return v, err
	}
	if m := reOct.FindStringSubmatch(in); m != nil {
		v, err := strconv.ParseInt(m[1], 8, 64)
		return v, err
	}
	if reDec.MatchString(in) {
		v, err := strconv.ParseInt(in, 10, 64)
		return v, err
	}
	return 0, ErrParseNumber(in)
}

// evalExpr evaluates a $(...) compile-time constant expression against the
// symbol table collected so far, via a starlark one-liner, the way
// parenEval does for $(...) operands.
func evalExpr(expr string, consts map[string]int64) (int64, error) {
	thread := &starlark.Thread{Name: "asm-expr"}
	opts := syntax.FileOptions{}
	predeclared := starlark.StringDict{}
	for name, v := range consts {
		predeclared[name] = starlark.MakeInt64(v)
	}
	prog := "rc = (" + expr + ")\n"
	dict, err := starlark.ExecFileOptions(&opts, thread, "expr", prog, predeclared)
	if err != nil {
		return 0, ErrParseExpression(expr)
	}
	rc, ok := dict["rc"]
	if !ok {
		return 0, ErrParseExpression(expr)
	}
	i, ok := rc.(starlark.Int)
	if !ok {
		return 0, ErrParseExpression(expr)
	}
	v, ok := i.Int64()
	if !ok {
		return 0, ErrParseExpression(expr)
	}
	return v, nil
}

// resolveValue parses an operand that should evaluate to a plain integer:
// a $(...) expression, a number literal, or a previously defined .const
// symbol, in that order.
func resolveValue(operand string, consts map[string]int64) (int64, error) {
	if strings.HasPrefix(operand, "$(") && strings.HasSuffix(operand, ")") {
		return evalExpr(operand[2:len(operand)-1], consts)
	}
	if v, err := parseNum(operand); err == nil {
		return v, nil
	}
	if v, ok := consts[operand]; ok {
		return v, nil
	}
	return 0, ErrParseNumber(operand)
}
