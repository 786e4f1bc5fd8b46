/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package engine

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Options are the per-query options a script passes to session.query.
type Options struct {
	// Table is the name of the table to query. Required.
	Table string
	// Args supplies the values of :name placeholders in the expression.
	Args map[string]any
}

// OptionsFromMap reads the recognized keys of a script options object.
// The table may be given by name or as a table object carrying a name.
// Unrecognized keys are ignored.
func OptionsFromMap(m map[string]any) Options {
	var opts Options
	switch table := m["table"].(type) {
	case string:
		opts.Table = table
	case map[string]any:
		if name, ok := table["name"].(string); ok {
			opts.Table = name
		}
	}
	if args, ok := m["args"].(map[string]any); ok {
		opts.Args = args
	}
	return opts
}

func (o Options) attributeArgs() (map[string]types.AttributeValue, error) {
	if len(o.Args) == 0 {
		return nil, nil
	}
	args := make(map[string]types.AttributeValue, len(o.Args))
	for k, v := range o.Args {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cannot marshal arg %q: %w", k, err)
		}
		args[k] = av
	}
	return args, nil
}
