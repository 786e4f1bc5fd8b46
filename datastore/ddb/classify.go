/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	dserrors "github.com/suparena/dynascript/errors"
)

var authErrorCodes = map[string]bool{
	"UnrecognizedClientException":         true,
	"InvalidSignatureException":           true,
	"AccessDeniedException":               true,
	"ExpiredTokenException":               true,
	"MissingAuthenticationTokenException": true,
	"InvalidClientTokenId":                true,
	"IncompleteSignature":                 true,
}

// classifyError maps a DynamoDB failure onto the error taxonomy. Context
// errors are passed through so the caller can tell a deadline from a cancel.
func classifyError(op, table string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", op, table, err)
	}

	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return dserrors.NewTableNotFoundError(table, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && authErrorCodes[apiErr.ErrorCode()] {
		return dserrors.NewAuthError(err)
	}

	if isRetryableError(err) {
		return dserrors.NewNetworkError(op+" "+table, err)
	}

	return fmt.Errorf("%s %s: %w", op, table, err)
}

// isRetryableError determines if a DynamoDB error is transient
func isRetryableError(err error) bool {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
	)
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Check for AWS SDK retryable errors
	var retryable interface{ RetryableError() bool }
	if errors.As(err, &retryable) {
		return retryable.RetryableError()
	}

	return false
}
