/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/storagemodels"
)

// Store implements datastore.TableStore on top of DynamoDB.
type Store struct {
	client Client
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for per-page debug output
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore wraps a DynamoDB client.
func NewStore(client Client, opts ...Option) *Store {
	s := &Store{client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStoreFromConfig builds the DynamoDB client and wraps it.
func NewStoreFromConfig(ctx context.Context, cc ClientConfig, opts ...Option) (*Store, error) {
	client, err := NewDynamoDBClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return NewStore(client, opts...), nil
}

// DescribeTable fetches the key schema and GSIs of a table.
func (s *Store) DescribeTable(ctx context.Context, name string) (*resultset.Table, error) {
	out, err := s.client.DescribeTable(ctx, &sdk.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return nil, classifyError("describe", name, err)
	}
	return tableFromDescription(out.Table), nil
}

// QueryPage runs one page of a Query.
func (s *Store) QueryPage(ctx context.Context, params *storagemodels.QueryParams) (storagemodels.Page, error) {
	input := &sdk.QueryInput{
		TableName:                 aws.String(params.TableName),
		KeyConditionExpression:    params.KeyConditionExpression,
		FilterExpression:          params.FilterExpression,
		ExpressionAttributeNames:  params.ExpressionAttributeNames,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ExclusiveStartKey:         params.ExclusiveStartKey,
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return storagemodels.Page{}, classifyError("query", params.TableName, err)
	}

	s.logger.Debug("query page", "table", params.TableName, "index", aws.ToString(params.IndexName),
		"count", out.Count, "scanned", out.ScannedCount, "more", out.LastEvaluatedKey != nil)
	return toPage(out.Items, out.LastEvaluatedKey), nil
}

// ScanPage runs one page of a Scan.
func (s *Store) ScanPage(ctx context.Context, params *storagemodels.QueryParams) (storagemodels.Page, error) {
	input := &sdk.ScanInput{
		TableName:                 aws.String(params.TableName),
		FilterExpression:          params.FilterExpression,
		ExpressionAttributeNames:  params.ExpressionAttributeNames,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ExclusiveStartKey:         params.ExclusiveStartKey,
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return storagemodels.Page{}, classifyError("scan", params.TableName, err)
	}

	s.logger.Debug("scan page", "table", params.TableName,
		"count", out.Count, "scanned", out.ScannedCount, "more", out.LastEvaluatedKey != nil)
	return toPage(out.Items, out.LastEvaluatedKey), nil
}

// PutItem writes a whole item.
func (s *Store) PutItem(ctx context.Context, table string, item resultset.Item) error {
	_, err := s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	return classifyError("put", table, err)
}

// ListTables returns the names of every table visible to the credentials.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	paginator := sdk.NewListTablesPaginator(s.client, &sdk.ListTablesInput{})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyError("list", "tables", err)
		}
		names = append(names, out.TableNames...)
	}
	return names, nil
}

func toPage(items []map[string]types.AttributeValue, lastKey map[string]types.AttributeValue) storagemodels.Page {
	page := storagemodels.Page{
		Items:            make([]resultset.Item, len(items)),
		LastEvaluatedKey: lastKey,
	}
	for i, it := range items {
		page.Items[i] = it
	}
	return page
}
