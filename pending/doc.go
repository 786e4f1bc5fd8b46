// Package pending provides Op, the deferred result returned by queries and UI
// requests. An Op is identified by a UUID and settles exactly once.
package pending
