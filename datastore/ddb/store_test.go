/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/suparena/dynascript/datastore"
	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/storagemodels"
)

var _ datastore.TableStore = (*Store)(nil)

type fakeClient struct {
	Client
	describe  *types.TableDescription
	queryIn   *sdk.QueryInput
	scanIn    *sdk.ScanInput
	queryOut  *sdk.QueryOutput
	err       error
	listPages [][]string
	listCalls int
}

func (f *fakeClient) DescribeTable(ctx context.Context, in *sdk.DescribeTableInput, _ ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sdk.DescribeTableOutput{Table: f.describe}, nil
}

func (f *fakeClient) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.queryIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.queryOut, nil
}

func (f *fakeClient) Scan(ctx context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.scanIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &sdk.ScanOutput{}, nil
}

func (f *fakeClient) ListTables(ctx context.Context, in *sdk.ListTablesInput, _ ...func(*sdk.Options)) (*sdk.ListTablesOutput, error) {
	page := f.listPages[f.listCalls]
	f.listCalls++
	out := &sdk.ListTablesOutput{TableNames: page}
	if f.listCalls < len(f.listPages) {
		out.LastEvaluatedTableName = aws.String(page[len(page)-1])
	}
	return out, nil
}

func TestDescribeTable(t *testing.T) {
	client := &fakeClient{
		describe: &types.TableDescription{
			TableName: aws.String("inventory"),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
			},
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeN},
				{AttributeName: aws.String("PK1"), AttributeType: types.ScalarAttributeTypeS},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndexDescription{
				{
					IndexName: aws.String("GSI1"),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("PK1"), KeyType: types.KeyTypeHash},
						{AttributeName: aws.String("SK1"), KeyType: types.KeyTypeRange},
					},
				},
			},
		},
	}

	table, err := NewStore(client).DescribeTable(context.Background(), "inventory")
	if err != nil {
		t.Fatalf("DescribeTable failed: %v", err)
	}

	if table.Name != "inventory" || table.Keys.PartitionKey != "pk" || table.Keys.SortKey != "sk" {
		t.Errorf("Unexpected table %+v", table)
	}
	if table.AttributeTypes["sk"] != "N" {
		t.Errorf("Expected sk to be N, got %q", table.AttributeTypes["sk"])
	}
	if len(table.GSIs) != 1 || table.GSIs[0].Name != "GSI1" || table.GSIs[0].Keys.PartitionKey != "PK1" {
		t.Errorf("Unexpected GSIs %+v", table.GSIs)
	}
}

func TestQueryPagePassesParams(t *testing.T) {
	client := &fakeClient{
		queryOut: &sdk.QueryOutput{
			Items: []map[string]types.AttributeValue{
				{"pk": &types.AttributeValueMemberS{Value: "02"}},
			},
			LastEvaluatedKey: map[string]types.AttributeValue{
				"pk": &types.AttributeValueMemberS{Value: "02"},
			},
		},
	}

	params := &storagemodels.QueryParams{
		TableName:              "inventory",
		Operation:              storagemodels.OperationQuery,
		KeyConditionExpression: aws.String("#0 = :0"),
		IndexName:              aws.String("GSI1"),
		Limit:                  aws.Int32(25),
	}

	page, err := datastore.FetchPage(context.Background(), NewStore(client), params)
	if err != nil {
		t.Fatalf("QueryPage failed: %v", err)
	}

	if client.queryIn == nil || client.scanIn != nil {
		t.Fatal("Expected a Query call and no Scan call")
	}
	if aws.ToString(client.queryIn.KeyConditionExpression) != "#0 = :0" ||
		aws.ToString(client.queryIn.IndexName) != "GSI1" ||
		aws.ToInt32(client.queryIn.Limit) != 25 {
		t.Errorf("Unexpected query input %+v", client.queryIn)
	}
	if len(page.Items) != 1 || page.LastEvaluatedKey == nil {
		t.Errorf("Unexpected page %+v", page)
	}
}

func TestListTablesPages(t *testing.T) {
	client := &fakeClient{listPages: [][]string{{"a", "b"}, {"c"}}}

	names, err := NewStore(client).ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(names) != 3 || client.listCalls != 2 {
		t.Errorf("Expected 3 names over 2 pages, got %v over %d", names, client.listCalls)
	}
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

var _ net.Error = timeoutNetError{}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "resource not found", err: &types.ResourceNotFoundException{Message: aws.String("no table")}, expected: errors.ErrTableNotFound},
		{name: "unrecognized client", err: &smithy.GenericAPIError{Code: "UnrecognizedClientException"}, expected: errors.ErrAuth},
		{name: "expired token", err: &smithy.GenericAPIError{Code: "ExpiredTokenException"}, expected: errors.ErrAuth},
		{name: "throughput", err: &types.ProvisionedThroughputExceededException{}, expected: errors.ErrNetwork},
		{name: "internal", err: &types.InternalServerError{}, expected: errors.ErrNetwork},
		{name: "net error", err: fmt.Errorf("send: %w", timeoutNetError{}), expected: errors.ErrNetwork},
		{name: "deadline", err: fmt.Errorf("op: %w", context.DeadlineExceeded), expected: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError("query", "inventory", tt.err)
			if !stderrors.Is(got, tt.expected) {
				t.Errorf("classifyError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}

	t.Run("other errors are not retryable", func(t *testing.T) {
		got := classifyError("query", "inventory", &smithy.GenericAPIError{Code: "ValidationException"})
		if errors.IsRetryable(got) || errors.IsAuth(got) {
			t.Errorf("ValidationException should not be classified, got %v", got)
		}
	})

	if classifyError("put", "inventory", nil) != nil {
		t.Error("nil should stay nil")
	}
}
