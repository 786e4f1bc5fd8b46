/*
Package datastore defines the interface between the query engine and the
remote table store.

	type TableStore interface {
	    DescribeTable(ctx context.Context, name string) (*resultset.Table, error)
	    QueryPage(ctx context.Context, params *storagemodels.QueryParams) (storagemodels.Page, error)
	    ScanPage(ctx context.Context, params *storagemodels.QueryParams) (storagemodels.Page, error)
	    PutItem(ctx context.Context, table string, item resultset.Item) error
	    ListTables(ctx context.Context) ([]string, error)
	}

Implementations:
  - ddb: DynamoDB implementation built on aws-sdk-go-v2
  - mock: In-memory implementation with error injection for testing

A TableStore is called from the engine's worker goroutines and must be safe
for concurrent use.
*/
package datastore
