package errors

import "net/http"

// HTTPStatus maps domain codes to HTTP status codes for the JSON API.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidSymbol,
		CodeSymbolMismatch,
		CodeInvalidAmount,
		CodeMemoTooLong,
		CodeUnsupportedType,
		CodeSelfTransfer:
		return http.StatusBadRequest

	case CodeOverdrawnLimit,
		CodeSupplyExceeded,
		CodeNotCommunityMember:
		return http.StatusUnprocessableEntity

	case CodeNotFound,
		CodeCurrencyNotFound,
		CodeUnknownAccountIdentity:
		return http.StatusNotFound

	case CodeDuplicateCurrency:
		return http.StatusConflict

	case CodeNotAuthorized:
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}
