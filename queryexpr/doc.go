/*
Package queryexpr parses the query expressions scripts pass to session.query.

Grammar:

	expr       := disjunction?
	disjunction := conjunction ('or' conjunction)*
	conjunction := ['not'] atom ('and' ['not'] atom)*
	atom       := '(' disjunction ')' | comparison
	comparison := Ident op literal
	op         := '=' | '!=' | '^=' | '<' | '<=' | '>' | '>='
	literal    := String | Number | 'true' | 'false' | :placeholder

'^=' is a string prefix match. A comparison against a missing attribute is
false, except for '!='.

Usage:

	q, err := queryexpr.Parse(`pk^="02"`)
	if err != nil {
	    return err // errors.ErrInvalidExpression
	}
	plan, err := q.Compile(table, nil)
	params := plan.Params()

Compile runs the expression as a Query when a top-level conjunct pins the
partition key of the primary key or of a GSI with '='. A comparison on the
matching sort key joins the key condition and everything else becomes the
filter. Any other expression runs as a Scan with a filter.
*/
package queryexpr
