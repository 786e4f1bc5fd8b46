/*
Package storagemodels defines the data structures passed between the query
engine and table store implementations.

Key Types:

QueryParams:
Parameters for one page of a Query or Scan:

	params := &QueryParams{
	    TableName:              "inventory",
	    Operation:              OperationQuery,
	    KeyConditionExpression: aws.String("#0 = :0"),
	    ExpressionAttributeNames: map[string]string{"#0": "pk"},
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":0": &types.AttributeValueMemberS{Value: "02"},
	    },
	    Limit: aws.Int32(100),
	}

Page:
One page of items plus the key to continue from:

	type Page struct {
	    Items            []resultset.Item
	    LastEvaluatedKey map[string]types.AttributeValue
	}

QueryOptions:
Configuration for fetch behavior:

	opts := []QueryOption{
	    WithTimeout(5 * time.Second),
	    WithMaxRetries(3),
	    WithPageSize(100),
	}

These types provide a consistent interface across different storage implementations.
*/
package storagemodels
