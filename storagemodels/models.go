/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dynascript/resultset"
)

// Operation selects between a keyed Query and a full table Scan.
type Operation int

const (
	// OperationScan reads every item of the table and applies the filter.
	OperationScan Operation = iota
	// OperationQuery reads the items sharing one partition key.
	OperationQuery
)

func (o Operation) String() string {
	if o == OperationQuery {
		return "query"
	}
	return "scan"
}

// QueryParams defines parameters for one DynamoDB Query or Scan page.
type QueryParams struct {
	// TableName is the DynamoDB table name.
	TableName string
	// Operation selects Query or Scan.
	Operation Operation
	// KeyConditionExpression is the primary condition for a query. Empty for scans.
	KeyConditionExpression *string
	// FilterExpression is an optional filter expression.
	FilterExpression *string
	// ExpressionAttributeNames contains the names for expression placeholders.
	ExpressionAttributeNames map[string]string
	// ExpressionAttributeValues contains the values for expression placeholders.
	ExpressionAttributeValues map[string]types.AttributeValue
	// IndexName is optional if you wish to query a secondary index.
	IndexName *string
	// Limit defines an optional limit per page.
	Limit *int32
	// ExclusiveStartKey for pagination
	ExclusiveStartKey map[string]types.AttributeValue
	// Match evaluates the whole expression against one item. Stores without
	// a server-side expression engine use it instead of the expression strings.
	Match func(resultset.Item) (bool, error)
}

// Page is one page of results returned by the store.
type Page struct {
	Items []resultset.Item
	// LastEvaluatedKey is nil on the final page.
	LastEvaluatedKey map[string]types.AttributeValue
}

// WithStartKey returns a copy of the params starting after key.
func (p *QueryParams) WithStartKey(key map[string]types.AttributeValue) *QueryParams {
	np := *p
	np.ExclusiveStartKey = key
	return &np
}
