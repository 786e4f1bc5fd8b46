/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/storagemodels"
)

// TableStore is the remote table store the query engine talks to.
//
// Implementations classify their failures with the errors package:
// TableNotFound, NetworkError, AuthError and Timeout.
type TableStore interface {
	DescribeTable(ctx context.Context, name string) (*resultset.Table, error)

	QueryPage(ctx context.Context, params *storagemodels.QueryParams) (storagemodels.Page, error)

	ScanPage(ctx context.Context, params *storagemodels.QueryParams) (storagemodels.Page, error)

	PutItem(ctx context.Context, table string, item resultset.Item) error

	ListTables(ctx context.Context) ([]string, error)
}

// FetchPage runs one page of params with the operation it asks for.
func FetchPage(ctx context.Context, store TableStore, params *storagemodels.QueryParams) (storagemodels.Page, error) {
	if params.Operation == storagemodels.OperationQuery {
		return store.QueryPage(ctx, params)
	}
	return store.ScanPage(ctx, params)
}
