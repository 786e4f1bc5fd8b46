/*
Package errors provides the error taxonomy of the dynascript runtime.

Every failure that reaches a script is one of the kinds below. Each kind has
a sentinel value, a typed error carrying context, a constructor and, for the
kinds callers branch on, an Is* helper.

Common Errors:

	var (
	    ErrInvalidExpression = errors.New("invalid expression")
	    ErrMissingOption     = errors.New("missing option")
	    ErrTableNotFound     = errors.New("table not found")
	    ErrNetwork           = errors.New("network error")
	    ErrAuth              = errors.New("authentication error")
	    ErrTimeout           = errors.New("timeout")
	    ErrTypeMismatch      = errors.New("type mismatch")
	    ErrReadOnlyKey       = errors.New("read-only key")
	    ErrUnknownCommand    = errors.New("unknown command")
	    ErrCancelled         = errors.New("cancelled")
	    ErrReadOnly          = errors.New("session is read-only")
	    ErrPermissionDenied  = errors.New("permission denied")
	)

Usage:

	rs, err := op.Wait(ctx)
	if err != nil {
	    if errors.IsRetryable(err) {
	        // NetworkError or Timeout
	    }
	    return fmt.Errorf("query failed (%s): %w", errors.KindOf(err), err)
	}

KindOf maps an error back to its taxonomy name; the scripting host uses it to
set the kind property of the Error objects that reject script promises.
*/
package errors
