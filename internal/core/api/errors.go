package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

// Auth errors are mapped in the auth package interceptor.
// Malformed or over-limit trees map to INVALID_ARGUMENT.
// Missing stored trees map to NOT_FOUND.
// Context timeouts map to DEADLINE_EXCEEDED.
// Everything else (database errors) maps to UNAVAILABLE.

var invalidArgument = []error{
	types.ErrInvalidOperand,
	types.ErrUnknownOperator,
	types.ErrArity,
	types.ErrOperandTooDeep,
	types.ErrOperandTooCostly,
	types.ErrTooManyOperands,
	types.ErrPathTooDeep,
	types.ErrTooManyWildcards,
	types.ErrInvalidPath,
	types.ErrTooManyMemberValues,
	types.ErrInvalidPattern,
	types.ErrInvalidParameter,
}

// statusError converts a Go error into a gRPC status error.
func statusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, types.ErrOperandNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	for _, sentinel := range invalidArgument {
		if errors.Is(err, sentinel) {
			return status.Error(codes.InvalidArgument, err.Error())
		}
	}
	return status.Error(codes.Unavailable, err.Error())
}
