package errors

import (
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCodeMappings(t *testing.T) {
	tests := []struct {
		code     Code
		grpcCode codes.Code
		httpCode int
	}{
		{CodeInvalidSymbol, codes.InvalidArgument, http.StatusBadRequest},
		{CodeSymbolMismatch, codes.InvalidArgument, http.StatusBadRequest},
		{CodeInvalidAmount, codes.InvalidArgument, http.StatusBadRequest},
		{CodeMemoTooLong, codes.InvalidArgument, http.StatusBadRequest},
		{CodeUnsupportedType, codes.InvalidArgument, http.StatusBadRequest},
		{CodeSelfTransfer, codes.InvalidArgument, http.StatusBadRequest},
		{CodeOverdrawnLimit, codes.FailedPrecondition, http.StatusUnprocessableEntity},
		{CodeSupplyExceeded, codes.FailedPrecondition, http.StatusUnprocessableEntity},
		{CodeNotCommunityMember, codes.FailedPrecondition, http.StatusUnprocessableEntity},
		{CodeCurrencyNotFound, codes.NotFound, http.StatusNotFound},
		{CodeUnknownAccountIdentity, codes.NotFound, http.StatusNotFound},
		{CodeNotFound, codes.NotFound, http.StatusNotFound},
		{CodeDuplicateCurrency, codes.AlreadyExists, http.StatusConflict},
		{CodeNotAuthorized, codes.PermissionDenied, http.StatusForbidden},
		{CodeUnknown, codes.Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.GRPCCode(); got != tt.grpcCode {
				t.Fatalf("expected gRPC %v, got %v", tt.grpcCode, got)
			}
			if got := tt.code.HTTPStatus(); got != tt.httpCode {
				t.Fatalf("expected HTTP %d, got %d", tt.httpCode, got)
			}
		})
	}
}

func TestHandleErrorTranslatesDomainError(t *testing.T) {
	err := WithMetadata(CodeMemoTooLong, "memo has 300 bytes", map[string]string{"Max": "256"})

	st, ok := status.FromError(HandleError(err, ""))
	if !ok {
		t.Fatal("expected gRPC status")
	}
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", st.Code())
	}
	if st.Message() != "memo has 300 bytes" {
		t.Fatalf("unexpected message %q", st.Message())
	}
	if len(st.Details()) != 2 {
		t.Fatalf("expected error info and localized message, got %d details", len(st.Details()))
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	st, ok := status.FromError(HandleError(fmt.Errorf("disk on fire"), "en-US"))
	if !ok {
		t.Fatal("expected gRPC status")
	}
	if st.Code() != codes.Internal {
		t.Fatalf("expected Internal, got %v", st.Code())
	}
	// The raw cause is never leaked to clients.
	if st.Message() == "disk on fire" {
		t.Fatal("expected generic message")
	}
}

func TestGetCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(CodeSelfTransfer, "self transfer"))
	if got := GetCode(wrapped); got != CodeSelfTransfer {
		t.Fatalf("expected CodeSelfTransfer, got %s", got)
	}
	if got := GetCode(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown, got %s", got)
	}
	if !IsCode(wrapped, CodeSelfTransfer) {
		t.Fatal("expected IsCode match")
	}
}
