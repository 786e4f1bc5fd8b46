/*
Package ddb provides a DynamoDB implementation of the datastore.TableStore interface.

The Store supports:
  - Key schema and GSI discovery through DescribeTable
  - Paged Query and Scan with expressions built by package queryexpr
  - Whole-item write-back with PutItem
  - Classification of SDK failures into the errors taxonomy

Construction:

	store, err := ddb.NewStoreFromConfig(ctx, ddb.ClientConfig{
	    Region:   "us-east-1",
	    Endpoint: "http://localhost:8000", // optional, e.g. DynamoDB Local
	})

Error classification:

	ResourceNotFoundException            -> errors.ErrTableNotFound
	UnrecognizedClientException, ...     -> errors.ErrAuth
	throttling, internal, network errors -> errors.ErrNetwork
	context deadline                     -> passed through

The store does not retry. Retry and timeout policy belong to the engine.
*/
package ddb
