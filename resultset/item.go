/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resultset

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is one stored record.
type Item map[string]types.AttributeValue

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	if i == nil {
		return nil
	}
	newItem := make(Item, len(i))
	for k, v := range i {
		newItem[k] = CloneValue(v)
	}
	return newItem
}

// KeyValue extracts the primary key attributes of the item.
func (i Item) KeyValue(table *Table) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue, 2)
	for _, name := range table.KeyNames() {
		if v, ok := i[name]; ok {
			key[name] = CloneValue(v)
		}
	}
	return key
}

// Attributes returns the attribute names of the item in sorted order.
func (i Item) Attributes() []string {
	names := make([]string, 0, len(i))
	for k := range i {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CloneValue deep copies an attribute value.
func CloneValue(v types.AttributeValue) types.AttributeValue {
	switch tv := v.(type) {
	case *types.AttributeValueMemberS:
		return &types.AttributeValueMemberS{Value: tv.Value}
	case *types.AttributeValueMemberN:
		return &types.AttributeValueMemberN{Value: tv.Value}
	case *types.AttributeValueMemberBOOL:
		return &types.AttributeValueMemberBOOL{Value: tv.Value}
	case *types.AttributeValueMemberNULL:
		return &types.AttributeValueMemberNULL{Value: tv.Value}
	case *types.AttributeValueMemberB:
		return &types.AttributeValueMemberB{Value: append([]byte(nil), tv.Value...)}
	case *types.AttributeValueMemberSS:
		return &types.AttributeValueMemberSS{Value: append([]string(nil), tv.Value...)}
	case *types.AttributeValueMemberNS:
		return &types.AttributeValueMemberNS{Value: append([]string(nil), tv.Value...)}
	case *types.AttributeValueMemberBS:
		bs := make([][]byte, len(tv.Value))
		for i, b := range tv.Value {
			bs[i] = append([]byte(nil), b...)
		}
		return &types.AttributeValueMemberBS{Value: bs}
	case *types.AttributeValueMemberL:
		l := make([]types.AttributeValue, len(tv.Value))
		for i, e := range tv.Value {
			l[i] = CloneValue(e)
		}
		return &types.AttributeValueMemberL{Value: l}
	case *types.AttributeValueMemberM:
		m := make(map[string]types.AttributeValue, len(tv.Value))
		for k, e := range tv.Value {
			m[k] = CloneValue(e)
		}
		return &types.AttributeValueMemberM{Value: m}
	default:
		return v
	}
}

// TypeName returns the DynamoDB type descriptor of an attribute value ("S", "N", "BOOL", ...).
func TypeName(v types.AttributeValue) string {
	switch v.(type) {
	case *types.AttributeValueMemberS:
		return "S"
	case *types.AttributeValueMemberN:
		return "N"
	case *types.AttributeValueMemberB:
		return "B"
	case *types.AttributeValueMemberBOOL:
		return "BOOL"
	case *types.AttributeValueMemberNULL:
		return "NULL"
	case *types.AttributeValueMemberL:
		return "L"
	case *types.AttributeValueMemberM:
		return "M"
	case *types.AttributeValueMemberSS:
		return "SS"
	case *types.AttributeValueMemberNS:
		return "NS"
	case *types.AttributeValueMemberBS:
		return "BS"
	case nil:
		return "nil"
	default:
		return "unknown"
	}
}
