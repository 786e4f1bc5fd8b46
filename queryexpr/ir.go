/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package queryexpr

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dynascript/resultset"
)

// irNode is a compiled expression node. It can evaluate itself against an
// item held in memory and render itself as a DynamoDB condition.
type irNode interface {
	eval(item resultset.Item) bool
	condition() expression.ConditionBuilder
}

type irOr []irNode

func (o irOr) eval(item resultset.Item) bool {
	for _, n := range o {
		if n.eval(item) {
			return true
		}
	}
	return false
}

func (o irOr) condition() expression.ConditionBuilder {
	conds := make([]expression.ConditionBuilder, len(o))
	for i, n := range o {
		conds[i] = n.condition()
	}
	return expression.Or(conds[0], conds[1], conds[2:]...)
}

type irAnd []irNode

func (a irAnd) eval(item resultset.Item) bool {
	for _, n := range a {
		if !n.eval(item) {
			return false
		}
	}
	return true
}

func (a irAnd) condition() expression.ConditionBuilder {
	return andConditions(a)
}

func andConditions(nodes []irNode) expression.ConditionBuilder {
	if len(nodes) == 1 {
		return nodes[0].condition()
	}
	conds := make([]expression.ConditionBuilder, len(nodes))
	for i, n := range nodes {
		conds[i] = n.condition()
	}
	return expression.And(conds[0], conds[1], conds[2:]...)
}

type irNot struct {
	operand irNode
}

func (n irNot) eval(item resultset.Item) bool {
	return !n.operand.eval(item)
}

func (n irNot) condition() expression.ConditionBuilder {
	return expression.Not(n.operand.condition())
}

type irComparison struct {
	name  string
	op    string
	value types.AttributeValue
}

func (c irComparison) eval(item resultset.Item) bool {
	v, ok := item[c.name]
	if !ok {
		return c.op == "!="
	}

	switch c.op {
	case "^=":
		sv, isStr := v.(*types.AttributeValueMemberS)
		return isStr && strings.HasPrefix(sv.Value, c.value.(*types.AttributeValueMemberS).Value)
	case "=":
		cmp, comparable := compareValues(v, c.value)
		return comparable && cmp == 0
	case "!=":
		cmp, comparable := compareValues(v, c.value)
		return !comparable || cmp != 0
	case "<":
		cmp, comparable := compareValues(v, c.value)
		return comparable && cmp < 0
	case "<=":
		cmp, comparable := compareValues(v, c.value)
		return comparable && cmp <= 0
	case ">":
		cmp, comparable := compareValues(v, c.value)
		return comparable && cmp > 0
	case ">=":
		cmp, comparable := compareValues(v, c.value)
		return comparable && cmp >= 0
	}
	return false
}

func (c irComparison) condition() expression.ConditionBuilder {
	name := expression.Name(c.name)
	switch c.op {
	case "^=":
		return name.BeginsWith(c.value.(*types.AttributeValueMemberS).Value)
	case "!=":
		return name.NotEqual(expression.Value(c.value))
	case "<":
		return name.LessThan(expression.Value(c.value))
	case "<=":
		return name.LessThanEqual(expression.Value(c.value))
	case ">":
		return name.GreaterThan(expression.Value(c.value))
	case ">=":
		return name.GreaterThanEqual(expression.Value(c.value))
	}
	return name.Equal(expression.Value(c.value))
}

// keyCondition renders the comparison as a key condition. ok is false for
// operators a key condition cannot express.
func (c irComparison) keyCondition() (kc expression.KeyConditionBuilder, ok bool) {
	key := expression.Key(c.name)
	switch c.op {
	case "=":
		return key.Equal(expression.Value(c.value)), true
	case "^=":
		return key.BeginsWith(c.value.(*types.AttributeValueMemberS).Value), true
	case "<":
		return key.LessThan(expression.Value(c.value)), true
	case "<=":
		return key.LessThanEqual(expression.Value(c.value)), true
	case ">":
		return key.GreaterThan(expression.Value(c.value)), true
	case ">=":
		return key.GreaterThanEqual(expression.Value(c.value)), true
	}
	return expression.KeyConditionBuilder{}, false
}

// compareValues orders two scalar values of the same type. comparable is
// false when the types differ or are not ordered.
func compareValues(a, b types.AttributeValue) (cmp int, comparable bool) {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		if !ok {
			return 0, false
		}
		return strings.Compare(av.Value, bv.Value), true
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		if !ok {
			return 0, false
		}
		af, err1 := strconv.ParseFloat(av.Value, 64)
		bf, err2 := strconv.ParseFloat(bv.Value, 64)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	case *types.AttributeValueMemberB:
		bv, ok := b.(*types.AttributeValueMemberB)
		if !ok {
			return 0, false
		}
		return bytes.Compare(av.Value, bv.Value), true
	case *types.AttributeValueMemberBOOL:
		// Booleans are not ordered; unequal values compare as incomparable.
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return 0, ok && av.Value == bv.Value
	}
	return 0, false
}
