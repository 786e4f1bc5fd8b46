/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package queryexpr

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/storagemodels"
)

// QueryExpr is a parsed query expression.
type QueryExpr struct {
	src string
	ast *astExpr
}

// Parse parses a query expression. An empty expression matches every item.
func Parse(expr string) (*QueryExpr, error) {
	ast, err := parser.ParseString("expr", expr)
	if err != nil {
		return nil, errors.NewExpressionError(expr, err)
	}
	return &QueryExpr{src: expr, ast: ast}, nil
}

func (q *QueryExpr) String() string {
	return q.src
}

// Plan is a compiled expression bound to one table.
type Plan struct {
	table     *resultset.Table
	root      irNode
	operation storagemodels.Operation
	indexName string
	expr      *expression.Expression
}

// Compile binds the expression to a table and decides how to fetch it. args
// supplies the values of :name placeholders.
func (q *QueryExpr) Compile(table *resultset.Table, args map[string]types.AttributeValue) (*Plan, error) {
	plan := &Plan{table: table, operation: storagemodels.OperationScan}
	if q.ast.Root == nil {
		return plan, nil
	}

	root, err := q.ast.Root.toIR(args)
	if err != nil {
		return nil, errors.NewExpressionError(q.src, err)
	}
	plan.root = root

	builder := expression.NewBuilder()
	if kc, rest, index, ok := keyConditionFor(table, root); ok {
		plan.operation = storagemodels.OperationQuery
		plan.indexName = index
		builder = builder.WithKeyCondition(kc)
		if len(rest) > 0 {
			builder = builder.WithFilter(andConditions(rest))
		}
	} else {
		builder = builder.WithFilter(root.condition())
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, errors.NewExpressionError(q.src, err)
	}
	plan.expr = &expr
	return plan, nil
}

// Operation reports whether the plan runs as a Query or a Scan.
func (p *Plan) Operation() storagemodels.Operation {
	return p.operation
}

// IndexName is the GSI a query runs against, empty for the primary key.
func (p *Plan) IndexName() string {
	return p.indexName
}

// Match evaluates the expression against an item held in memory.
func (p *Plan) Match(item resultset.Item) (bool, error) {
	if p.root == nil {
		return true, nil
	}
	return p.root.eval(item), nil
}

// Params returns the parameters of the first page.
func (p *Plan) Params() *storagemodels.QueryParams {
	params := &storagemodels.QueryParams{
		TableName: p.table.Name,
		Operation: p.operation,
		Match:     p.Match,
	}
	if p.indexName != "" {
		params.IndexName = aws.String(p.indexName)
	}
	if p.expr != nil {
		params.KeyConditionExpression = p.expr.KeyCondition()
		params.FilterExpression = p.expr.Filter()
		params.ExpressionAttributeNames = p.expr.Names()
		params.ExpressionAttributeValues = p.expr.Values()
	}
	return params
}

// keyConditionFor looks for a top-level conjunct pinning the partition key of
// the primary key or a GSI with '='. The remaining conjuncts become the filter.
func keyConditionFor(table *resultset.Table, root irNode) (expression.KeyConditionBuilder, []irNode, string, bool) {
	var conjuncts []irNode
	switch n := root.(type) {
	case irAnd:
		conjuncts = n
	case irComparison:
		conjuncts = []irNode{n}
	default:
		return expression.KeyConditionBuilder{}, nil, "", false
	}

	candidates := append([]resultset.GSI{{Keys: table.Keys}}, table.GSIs...)
	for _, idx := range candidates {
		pkPos := findKeyComparison(table, conjuncts, idx.Keys.PartitionKey, func(op string) bool { return op == "=" })
		if pkPos < 0 {
			continue
		}
		kc, _ := conjuncts[pkPos].(irComparison).keyCondition()
		used := map[int]bool{pkPos: true}

		if idx.Keys.SortKey != "" {
			skPos := findKeyComparison(table, conjuncts, idx.Keys.SortKey, func(op string) bool { return op != "!=" })
			if skPos >= 0 {
				skc, _ := conjuncts[skPos].(irComparison).keyCondition()
				kc = kc.And(skc)
				used[skPos] = true
			}
		}

		var rest []irNode
		for i, n := range conjuncts {
			if !used[i] {
				rest = append(rest, n)
			}
		}
		return kc, rest, idx.Name, true
	}
	return expression.KeyConditionBuilder{}, nil, "", false
}

func findKeyComparison(table *resultset.Table, conjuncts []irNode, attr string, opOK func(string) bool) int {
	for i, n := range conjuncts {
		c, ok := n.(irComparison)
		if !ok || c.name != attr || !opOK(c.op) {
			continue
		}
		if want, declared := table.AttributeTypes[attr]; declared && string(want) != resultset.TypeName(c.value) {
			continue
		}
		return i
	}
	return -1
}
