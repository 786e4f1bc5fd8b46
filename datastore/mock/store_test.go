/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dynascript/datastore"
	"github.com/suparena/dynascript/datastore/mock"
	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/storagemodels"
)

var _ datastore.TableStore = (*mock.Store)(nil)

var table = &resultset.Table{
	Name:           "inventory",
	Keys:           resultset.KeyAttribute{PartitionKey: "pk"},
	AttributeTypes: map[string]resultset.AttributeType{"pk": resultset.TypeString},
}

func pk(v string) resultset.Item {
	return resultset.Item{"pk": &types.AttributeValueMemberS{Value: v}}
}

func pkOf(it resultset.Item) string {
	return it["pk"].(*types.AttributeValueMemberS).Value
}

func TestMockStore(t *testing.T) {
	ctx := context.Background()

	t.Run("DescribeTable", func(t *testing.T) {
		store := mock.New().WithTable(table)

		got, err := store.DescribeTable(ctx, "inventory")
		if err != nil {
			t.Fatalf("DescribeTable failed: %v", err)
		}
		if got.Keys.PartitionKey != "pk" {
			t.Errorf("Unexpected key schema %+v", got.Keys)
		}

		_, err = store.DescribeTable(ctx, "missing")
		if !errors.IsTableNotFound(err) {
			t.Errorf("Expected table not found, got %v", err)
		}
	})

	t.Run("PagingPreservesOrder", func(t *testing.T) {
		store := mock.New().
			WithTable(table, pk("01"), pk("02"), pk("020"), pk("03")).
			WithPageSize(2)

		params := &storagemodels.QueryParams{TableName: "inventory"}
		var got []string
		pages := 0
		for {
			page, err := datastore.FetchPage(ctx, store, params)
			if err != nil {
				t.Fatalf("page failed: %v", err)
			}
			pages++
			for _, it := range page.Items {
				got = append(got, pkOf(it))
			}
			if page.LastEvaluatedKey == nil {
				break
			}
			params = params.WithStartKey(page.LastEvaluatedKey)
		}

		expected := []string{"01", "02", "020", "03"}
		if len(got) != len(expected) {
			t.Fatalf("Expected %v, got %v", expected, got)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("item %d: expected %q, got %q", i, expected[i], got[i])
			}
		}
		if pages != 2 || store.Calls().Page != 2 {
			t.Errorf("Expected 2 pages, got %d (calls %d)", pages, store.Calls().Page)
		}
	})

	t.Run("Match", func(t *testing.T) {
		store := mock.New().WithTable(table, pk("01"), pk("02"))

		page, err := store.ScanPage(ctx, &storagemodels.QueryParams{
			TableName: "inventory",
			Match: func(it resultset.Item) (bool, error) {
				return pkOf(it) == "02", nil
			},
		})
		if err != nil {
			t.Fatalf("ScanPage failed: %v", err)
		}
		if len(page.Items) != 1 || pkOf(page.Items[0]) != "02" {
			t.Errorf("Expected only 02, got %v", page.Items)
		}
	})

	t.Run("PageErrors", func(t *testing.T) {
		netErr := errors.NewNetworkError("scan", stderrors.New("connection reset"))
		store := mock.New().WithTable(table, pk("01")).WithPageErrors(netErr, nil)

		params := &storagemodels.QueryParams{TableName: "inventory"}
		if _, err := store.ScanPage(ctx, params); err != netErr {
			t.Fatalf("Expected injected error, got %v", err)
		}
		if _, err := store.ScanPage(ctx, params); err != nil {
			t.Fatalf("Expected second call to succeed, got %v", err)
		}
	})

	t.Run("Hang", func(t *testing.T) {
		store := mock.New().WithTable(table, pk("01")).WithPageErrors(mock.Hang)

		hctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err := store.ScanPage(hctx, &storagemodels.QueryParams{TableName: "inventory"})
		if !stderrors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Expected deadline exceeded, got %v", err)
		}
	})

	t.Run("Put", func(t *testing.T) {
		store := mock.New().WithTable(table, pk("01"), pk("02"))

		updated := pk("01")
		updated["address"] = &types.AttributeValueMemberS{Value: "123 Fake St."}
		if err := store.PutItem(ctx, "inventory", updated); err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
		if err := store.PutItem(ctx, "inventory", pk("03")); err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}

		items := store.Items("inventory")
		if len(items) != 3 || pkOf(items[0]) != "01" || pkOf(items[2]) != "03" {
			t.Fatalf("Unexpected items %v", items)
		}
		if _, ok := items[0]["address"]; !ok {
			t.Error("Put should replace the existing item in place")
		}

		calls := store.Calls()
		if calls.Put != 2 || calls.Total() != 2 {
			t.Errorf("Unexpected calls %+v", calls)
		}
	})

	t.Run("ListTables", func(t *testing.T) {
		other := &resultset.Table{Name: "accounts", Keys: resultset.KeyAttribute{PartitionKey: "id"}}
		store := mock.New().WithTable(table).WithTable(other)

		names, err := store.ListTables(ctx)
		if err != nil {
			t.Fatalf("ListTables failed: %v", err)
		}
		if len(names) != 2 || names[0] != "accounts" || names[1] != "inventory" {
			t.Errorf("Unexpected tables %v", names)
		}
	})
}
