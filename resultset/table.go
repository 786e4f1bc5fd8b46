/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resultset

// AttributeType is a DynamoDB scalar attribute type as declared in a key schema.
type AttributeType string

const (
	TypeString AttributeType = "S"
	TypeNumber AttributeType = "N"
	TypeBinary AttributeType = "B"
)

// KeyAttribute names the attributes forming a primary key.
type KeyAttribute struct {
	PartitionKey string
	SortKey      string
}

// GSI describes a global secondary index of a table.
type GSI struct {
	Name string
	Keys KeyAttribute
}

// Table describes a remote table. It is immutable once fetched.
type Table struct {
	Name           string
	Keys           KeyAttribute
	AttributeTypes map[string]AttributeType
	GSIs           []GSI
}

// IsKey reports whether attr is part of the table's primary key.
func (t *Table) IsKey(attr string) bool {
	if t == nil || attr == "" {
		return false
	}
	return attr == t.Keys.PartitionKey || attr == t.Keys.SortKey
}

// KeyType returns the declared type of a key attribute.
func (t *Table) KeyType(attr string) (AttributeType, bool) {
	if !t.IsKey(attr) {
		return "", false
	}
	at, ok := t.AttributeTypes[attr]
	return at, ok
}

// KeyNames returns the primary key attribute names, partition key first.
func (t *Table) KeyNames() []string {
	if t.Keys.SortKey == "" {
		return []string{t.Keys.PartitionKey}
	}
	return []string{t.Keys.PartitionKey, t.Keys.SortKey}
}
