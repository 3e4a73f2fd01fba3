package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/status"
)

// ErrorDump flattens an error chain for structured logging. Firestore surfaces
// failures as gRPC status errors, so the dump carries the status code alongside
// the wrapped chain.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	GRPCCode    string `json:"grpc_code,omitempty"`
	GRPCMessage string `json:"grpc_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := status.FromError(e); ok && st != nil {
			d.GRPCCode = st.Code().String()
			d.GRPCMessage = st.Message()
			break
		}
	}

	return d
}
