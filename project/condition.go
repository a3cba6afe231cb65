package project

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ConditionError reports a condition that could not be parsed or evaluated.
type ConditionError struct {
	Condition string
	Msg       string
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("condition %q: %s", e.Condition, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokWord
	tokLParen
	tokRParen
	tokComma
	tokNot
	tokOp
	tokAnd
	tokOr
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(cond string) ([]token, error) {
	var toks []token
	for i := 0; i < len(cond); {
		c := cond[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '\'':
			end := quoteEnd(cond, i)
			if end < 0 {
				return nil, &ConditionError{Condition: cond, Msg: "unterminated string"}
			}
			toks = append(toks, token{tokString, cond[i+1 : end]})
			i = end + 1
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '=' || c == '!' || c == '<' || c == '>':
			if i+1 < len(cond) && cond[i+1] == '=' {
				toks = append(toks, token{tokOp, cond[i : i+2]})
				i += 2
				continue
			}
			switch c {
			case '!':
				toks = append(toks, token{tokNot, "!"})
			case '=':
				return nil, &ConditionError{Condition: cond, Msg: "single '=' is not an operator"}
			default:
				toks = append(toks, token{tokOp, string(c)})
			}
			i++
		case c == '$' && i+1 < len(cond) && cond[i+1] == '(':
			end := refEnd(cond, i)
			if end < 0 {
				return nil, &ConditionError{Condition: cond, Msg: "unterminated property reference"}
			}
			toks = append(toks, token{tokString, cond[i : end+1]})
			i = end + 1
		default:
			start := i
			for i < len(cond) && isWordByte(cond[i]) {
				i++
			}
			if start == i {
				return nil, &ConditionError{Condition: cond, Msg: fmt.Sprintf("unexpected character %q", c)}
			}
			word := cond[start:i]
			switch strings.ToLower(word) {
			case "and":
				toks = append(toks, token{tokAnd, word})
			case "or":
				toks = append(toks, token{tokOr, word})
			default:
				toks = append(toks, token{tokWord, word})
			}
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

// quoteEnd returns the index of the quote closing the string opened at
// start, or -1. Quotes inside $(...) references do not close the string.
func quoteEnd(cond string, start int) int {
	for i := start + 1; i < len(cond); i++ {
		switch {
		case cond[i] == '\'':
			return i
		case strings.HasPrefix(cond[i:], "$("):
			end := refEnd(cond, i)
			if end < 0 {
				return -1
			}
			i = end
		}
	}
	return -1
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

// conditionParser evaluates an MSBuild condition while parsing it.
//
//	expr    = and { "or" and }
//	and     = unary { "and" unary }
//	unary   = "!" unary | primary
//	primary = "(" expr ")" | call | operand [ op operand ]
type conditionParser struct {
	cond   string
	toks   []token
	pos    int
	expand func(string) string
	exists func(string) bool
}

func evalCondition(cond string, expand func(string) string, exists func(string) bool) (bool, error) {
	if strings.TrimSpace(cond) == "" {
		return true, nil
	}
	toks, err := tokenize(cond)
	if err != nil {
		return false, err
	}
	p := &conditionParser{cond: cond, toks: toks, expand: expand, exists: exists}
	v, err := p.or()
	if err != nil {
		return false, err
	}
	if p.peek().kind != tokEOF {
		return false, p.errorf("unexpected %q", p.peek().text)
	}
	return v, nil
}

func (p *conditionParser) peek() token { return p.toks[p.pos] }

func (p *conditionParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *conditionParser) errorf(format string, args ...any) error {
	return &ConditionError{Condition: p.cond, Msg: fmt.Sprintf(format, args...)}
}

func (p *conditionParser) or() (bool, error) {
	v, err := p.and()
	if err != nil {
		return false, err
	}
	for p.peek().kind == tokOr {
		p.next()
		rhs, err := p.and()
		if err != nil {
			return false, err
		}
		v = v || rhs
	}
	return v, nil
}

func (p *conditionParser) and() (bool, error) {
	v, err := p.unary()
	if err != nil {
		return false, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		rhs, err := p.unary()
		if err != nil {
			return false, err
		}
		v = v && rhs
	}
	return v, nil
}

func (p *conditionParser) unary() (bool, error) {
	if p.peek().kind == tokNot {
		p.next()
		v, err := p.unary()
		return !v, err
	}
	return p.primary()
}

func (p *conditionParser) primary() (bool, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		v, err := p.or()
		if err != nil {
			return false, err
		}
		if p.next().kind != tokRParen {
			return false, p.errorf("missing ')'")
		}
		return v, nil
	case tokWord:
		if p.peek().kind == tokLParen {
			return p.call(t.text)
		}
		return p.comparison(t.text)
	case tokString:
		value := p.expand(t.text)
		// An unsupported property function expands to "" and reads as false.
		if value == "" && p.peek().kind != tokOp && callsFunction(t.text) {
			return false, nil
		}
		return p.comparison(value)
	default:
		return false, p.errorf("unexpected %q", t.text)
	}
}

func (p *conditionParser) comparison(lhs string) (bool, error) {
	if p.peek().kind != tokOp {
		return parseBool(lhs, p)
	}
	op := p.next().text
	rt := p.next()
	if rt.kind != tokString && rt.kind != tokWord {
		return false, p.errorf("missing right operand for %s", op)
	}
	rhs := rt.text
	if rt.kind == tokString {
		rhs = p.expand(rhs)
	}

	switch op {
	case "==":
		return strings.EqualFold(lhs, rhs), nil
	case "!=":
		return !strings.EqualFold(lhs, rhs), nil
	}

	l, lerr := strconv.ParseFloat(strings.TrimSpace(lhs), 64)
	r, rerr := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
	if lerr != nil || rerr != nil {
		return false, p.errorf("%q %s %q compares non-numeric values", lhs, op, rhs)
	}
	switch op {
	case "<":
		return l < r, nil
	case ">":
		return l > r, nil
	case "<=":
		return l <= r, nil
	default:
		return l >= r, nil
	}
}

func (p *conditionParser) call(name string) (bool, error) {
	p.next() // (
	arg := p.next()
	if arg.kind != tokString && arg.kind != tokWord {
		return false, p.errorf("%s expects one argument", name)
	}
	if p.next().kind != tokRParen {
		return false, p.errorf("%s expects one argument", name)
	}
	value := p.expand(arg.text)

	switch strings.ToLower(name) {
	case "exists":
		return strings.TrimSpace(value) != "" && p.exists(strings.TrimSpace(value)), nil
	case "hastrailingslash":
		return strings.HasSuffix(value, "/") || strings.HasSuffix(value, `\`), nil
	default:
		return false, p.errorf("unsupported function %s", name)
	}
}

func parseBool(s string, p *conditionParser) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "yes", "!false", "!off", "!no":
		return true, nil
	case "false", "off", "no", "!true", "!on", "!yes":
		return false, nil
	default:
		return false, p.errorf("%q is not a boolean", s)
	}
}
