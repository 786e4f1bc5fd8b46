/*
Package engine executes query expressions against a datastore.TableStore.

	e := engine.New(store,
	    engine.WithQueryOptions(
	        storagemodels.WithTimeout(5*time.Second),
	        storagemodels.WithMaxRetries(3),
	    ),
	)
	defer e.Close()

	op := e.Query(ctx, `pk^="02"`, engine.Options{Table: "inventory"})
	rs, err := op.Wait(ctx)

Query returns a pending.Op at once. The describe call and every page are run
under the retry policy:

  - NetworkError: retried up to MaxRetries with linear backoff
  - Timeout: each attempt is bounded by Timeout and a timed out attempt is
    retried exactly once before errors.ErrTimeout is surfaced
  - AuthError: surfaced, and every later call fails without contacting the store
  - anything else: surfaced on first occurrence

Option validation and expression parsing happen before any remote call, so a
missing table option or a malformed expression never reaches the store.
*/
package engine
