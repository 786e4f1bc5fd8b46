/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import "errors"

// ErrClosed is returned for work submitted after the host was closed.
var ErrClosed = errors.New("scripting host is closed")

var errNoResultSet = errors.New("no current result set")

// ScriptError is an exception raised by script code that does not map to a
// dynascript error.
type ScriptError struct {
	Script  string
	Message string
}

func (e *ScriptError) Error() string {
	if e.Script != "" {
		return e.Script + ": " + e.Message
	}
	return e.Message
}
