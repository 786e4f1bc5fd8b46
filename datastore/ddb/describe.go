/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dynascript/resultset"
)

// tableFromDescription builds a table descriptor from a DescribeTable
// response. The GSI key schemas come from the table itself.
func tableFromDescription(desc *types.TableDescription) *resultset.Table {
	table := &resultset.Table{
		Name:           aws.ToString(desc.TableName),
		Keys:           keysFromSchema(desc.KeySchema),
		AttributeTypes: make(map[string]resultset.AttributeType, len(desc.AttributeDefinitions)),
	}

	for _, def := range desc.AttributeDefinitions {
		table.AttributeTypes[aws.ToString(def.AttributeName)] = resultset.AttributeType(def.AttributeType)
	}

	for _, gsi := range desc.GlobalSecondaryIndexes {
		table.GSIs = append(table.GSIs, resultset.GSI{
			Name: aws.ToString(gsi.IndexName),
			Keys: keysFromSchema(gsi.KeySchema),
		})
	}

	return table
}

func keysFromSchema(schema []types.KeySchemaElement) resultset.KeyAttribute {
	var keys resultset.KeyAttribute
	for _, el := range schema {
		switch el.KeyType {
		case types.KeyTypeHash:
			keys.PartitionKey = aws.ToString(el.AttributeName)
		case types.KeyTypeRange:
			keys.SortKey = aws.ToString(el.AttributeName)
		}
	}
	return keys
}
