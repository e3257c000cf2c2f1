package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Symbol and amount errors
	CodeInvalidSymbol  Code = "INVALID_SYMBOL"
	CodeSymbolMismatch Code = "SYMBOL_MISMATCH"
	CodeInvalidAmount  Code = "INVALID_AMOUNT"
	CodeMemoTooLong    Code = "MEMO_TOO_LONG"

	// Currency registry errors
	CodeDuplicateCurrency Code = "DUPLICATE_CURRENCY"
	CodeCurrencyNotFound  Code = "CURRENCY_NOT_FOUND"
	CodeUnsupportedType   Code = "UNSUPPORTED_TYPE"

	// Ledger mutation errors
	CodeOverdrawnLimit Code = "OVERDRAWN_LIMIT"
	CodeSupplyExceeded Code = "SUPPLY_EXCEEDED"
	CodeSelfTransfer   Code = "SELF_TRANSFER"

	// Identity and membership errors
	CodeNotAuthorized          Code = "NOT_AUTHORIZED"
	CodeUnknownAccountIdentity Code = "UNKNOWN_ACCOUNT_IDENTITY"
	CodeNotCommunityMember     Code = "NOT_COMMUNITY_MEMBER"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidSymbol,
		CodeSymbolMismatch,
		CodeInvalidAmount,
		CodeMemoTooLong,
		CodeUnsupportedType,
		CodeSelfTransfer:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeOverdrawnLimit,
		CodeSupplyExceeded,
		CodeNotCommunityMember:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeCurrencyNotFound,
		CodeUnknownAccountIdentity:
		return codes.NotFound

	case CodeDuplicateCurrency:
		return codes.AlreadyExists

	case CodeNotAuthorized:
		return codes.PermissionDenied

	default:
		return codes.Internal
	}
}
