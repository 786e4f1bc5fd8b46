/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package queryexpr

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type astExpr struct {
	Root *astDisjunction `parser:"@@?"`
}

type astDisjunction struct {
	Operands []*astConjunction `parser:"@@ ( 'or' @@ )*"`
}

type astConjunction struct {
	Operands []*astBooleanNot `parser:"@@ ( 'and' @@ )*"`
}

type astBooleanNot struct {
	HasNot  bool     `parser:"@'not'?"`
	Operand *astAtom `parser:"@@"`
}

type astAtom struct {
	Paren      *astDisjunction `parser:"'(' @@ ')'"`
	Comparison *astComparison  `parser:"| @@"`
}

type astComparison struct {
	Name  string      `parser:"@Ident"`
	Op    string      `parser:"@Op"`
	Value *astLiteral `parser:"@@"`
}

type astLiteral struct {
	StringVal   *string `parser:"@String"`
	NumberVal   *string `parser:"| @Number"`
	True        bool    `parser:"| @'true'"`
	False       bool    `parser:"| @'false'"`
	Placeholder *string `parser:"| @Placeholder"`
}

var scanner = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Op", Pattern: `\^=|!=|<=|>=|=|<|>`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Number", Pattern: `[-+]?(\d*\.)?\d+`},
	{Name: "Placeholder", Pattern: `:[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[astExpr](
	participle.Lexer(scanner),
	participle.Unquote("String"),
	participle.Elide("whitespace"),
)

func (a *astLiteral) attributeValue(args map[string]types.AttributeValue) (types.AttributeValue, error) {
	switch {
	case a.StringVal != nil:
		return &types.AttributeValueMemberS{Value: *a.StringVal}, nil
	case a.NumberVal != nil:
		return &types.AttributeValueMemberN{Value: *a.NumberVal}, nil
	case a.True:
		return &types.AttributeValueMemberBOOL{Value: true}, nil
	case a.False:
		return &types.AttributeValueMemberBOOL{Value: false}, nil
	case a.Placeholder != nil:
		v, ok := args[strings.TrimPrefix(*a.Placeholder, ":")]
		if !ok {
			return nil, fmt.Errorf("no value for placeholder %v", *a.Placeholder)
		}
		return v, nil
	}
	return nil, fmt.Errorf("empty literal")
}

func (d *astDisjunction) toIR(args map[string]types.AttributeValue) (irNode, error) {
	if len(d.Operands) == 1 {
		return d.Operands[0].toIR(args)
	}

	ors := make(irOr, len(d.Operands))
	for i, op := range d.Operands {
		n, err := op.toIR(args)
		if err != nil {
			return nil, err
		}
		ors[i] = n
	}
	return ors, nil
}

func (c *astConjunction) toIR(args map[string]types.AttributeValue) (irNode, error) {
	if len(c.Operands) == 1 {
		return c.Operands[0].toIR(args)
	}

	ands := make(irAnd, len(c.Operands))
	for i, op := range c.Operands {
		n, err := op.toIR(args)
		if err != nil {
			return nil, err
		}
		ands[i] = n
	}
	return ands, nil
}

func (b *astBooleanNot) toIR(args map[string]types.AttributeValue) (irNode, error) {
	n, err := b.Operand.toIR(args)
	if err != nil {
		return nil, err
	}
	if b.HasNot {
		return irNot{operand: n}, nil
	}
	return n, nil
}

func (a *astAtom) toIR(args map[string]types.AttributeValue) (irNode, error) {
	if a.Paren != nil {
		return a.Paren.toIR(args)
	}
	return a.Comparison.toIR(args)
}

func (c *astComparison) toIR(args map[string]types.AttributeValue) (irNode, error) {
	v, err := c.Value.attributeValue(args)
	if err != nil {
		return nil, err
	}
	if c.Op == "^=" {
		if _, isStr := v.(*types.AttributeValueMemberS); !isStr {
			return nil, fmt.Errorf("operand of '^=' on %v must be a string", c.Name)
		}
	}
	return irComparison{name: c.Name, op: c.Op, value: v}, nil
}
