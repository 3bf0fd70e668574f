package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/mediastore/core/media"
)

var (
	// ErrPaginatorNil means a mock client was injected without a paginator
	// factory; see WithPaginatorFactory.
	ErrPaginatorNil = errors.New("s3: paginator not available for this client")

	// ErrPresignerNil means a mock client was injected without a presign
	// client; see WithPresigner.
	ErrPresignerNil = errors.New("s3: presigner not available for this client")
)

// isNotFound reports whether err is any of the SDK's object-absent shapes.
// HeadObject yields types.NotFound, GetObject yields types.NoSuchKey, and
// some S3-compatible services only set the API error code.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// classifyS3Error converts SDK errors to domain errors. Context errors pass
// through for errors.Is checks; availability-shaped failures wrap
// media.ErrBackendUnavailable so callers can apply their own retry policy.
func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", operation, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "SlowDown", "ServiceUnavailable", "RequestTimeout", "InternalError":
			return fmt.Errorf("%w: %s (code: %s)", media.ErrBackendUnavailable, operation, code)
		default:
			return fmt.Errorf("%s failed (code: %s): %w", operation, code, err)
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}
