package program

import (
	"fmt"
	"strconv"
	"strings"
)

type MalformedProgramError struct {
	Token  int
	Reason string
}

func (e *MalformedProgramError) Error() string {
	return fmt.Sprintf("malformed program at token %d: %s", e.Token, e.Reason)
}

// Parser turns program text into a Program. Tokens accepted by
// ResolveInstruction become instruction references; a nil resolver yields
// names for every non-literal symbol.
type Parser struct {
	ResolveInstruction func(token string) (Instruction, bool)
}

// Parse parses text without any instruction resolution.
func Parse(text string) (*Program, error) {
	return Parser{}.Parse(text)
}

func tokenize(text string) []string {
	text = strings.ReplaceAll(text, "(", " ( ")
	text = strings.ReplaceAll(text, ")", " ) ")
	return strings.Fields(text)
}

// Parse parses text. A text made of a single parenthesized group yields that
// group as the root; otherwise the tokens become the root's elements.
func (ps Parser) Parse(text string) (*Program, error) {
	tokens := tokenize(text)

	top := New()
	open := []*Program{top}
	openedAt := []int{-1}

	for i, tok := range tokens {
		current := open[len(open)-1]
		switch tok {
		case "(":
			sub := New()
			current.Append(sub)
			open = append(open, sub)
			openedAt = append(openedAt, i)
		case ")":
			if len(open) == 1 {
				return nil, &MalformedProgramError{Token: i, Reason: "unexpected )"}
			}
			open = open[:len(open)-1]
			openedAt = openedAt[:len(openedAt)-1]
		default:
			current.Append(ps.atom(tok))
		}
	}

	if len(open) > 1 {
		return nil, &MalformedProgramError{Token: openedAt[len(openedAt)-1], Reason: "( is never closed"}
	}

	if len(tokens) > 0 && tokens[0] == "(" && top.Len() == 1 {
		if root, ok := top.At(0).(*Program); ok {
			return root, nil
		}
	}
	return top, nil
}

func (ps Parser) atom(tok string) Atom {
	switch tok {
	case "true":
		return Boolean(true)
	case "false":
		return Boolean(false)
	}

	if ps.ResolveInstruction != nil {
		if inst, ok := ps.ResolveInstruction(tok); ok {
			return inst
		}
	}

	if strings.Contains(tok, ".") {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return Float(f)
		}
	} else if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Integer(i)
	}

	return Name(tok)
}

// MustParse is Parse that panics on malformed text. Intended for literals in
// tests and defaults.
func MustParse(text string) *Program {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}
