/*
Package resultset holds the in-memory model that scripts read and mutate.

A ResultSet is the ordered output of one query against one Table. It owns its
Rows; each Row wraps an Item (a DynamoDB attribute map) together with the
metadata needed to write it back later:

	rs := resultset.New(table, `pk^="02"`, items)
	row := rs.Row(0)
	if err := row.Set("address", &types.AttributeValueMemberS{Value: "123 Fake St."}); err != nil {
	    // errors.ErrTypeMismatch or errors.ErrReadOnlyKey; the old value is kept
	}
	dirty := rs.ModifiedRows()

Key attributes follow two rules: the value must match the table's declared
key type, and a row that already exists in the store cannot change its key.

Nothing in this package performs I/O. Write-back is the engine's job.
*/
package resultset
