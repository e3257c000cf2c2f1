package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeInvalidSymbol          = "INVALID_SYMBOL"
	CodeSymbolMismatch         = "SYMBOL_MISMATCH"
	CodeInvalidAmount          = "INVALID_AMOUNT"
	CodeMemoTooLong            = "MEMO_TOO_LONG"
	CodeDuplicateCurrency      = "DUPLICATE_CURRENCY"
	CodeCurrencyNotFound       = "CURRENCY_NOT_FOUND"
	CodeUnsupportedType        = "UNSUPPORTED_TYPE"
	CodeOverdrawnLimit         = "OVERDRAWN_LIMIT"
	CodeSupplyExceeded         = "SUPPLY_EXCEEDED"
	CodeSelfTransfer           = "SELF_TRANSFER"
	CodeNotAuthorized          = "NOT_AUTHORIZED"
	CodeUnknownAccountIdentity = "UNKNOWN_ACCOUNT_IDENTITY"
	CodeNotCommunityMember     = "NOT_COMMUNITY_MEMBER"
	CodeNotFound               = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[string]string{
		// Symbol and amount errors
		CodeInvalidSymbol:  "Invalid currency symbol",
		CodeSymbolMismatch: "All amounts must share the same currency symbol",
		CodeInvalidAmount:  "Amount must be a valid positive quantity",
		CodeMemoTooLong:    "Memo has more than {{.Max}} bytes",

		// Currency registry errors
		CodeDuplicateCurrency: "A currency with this symbol already exists",
		CodeCurrencyNotFound:  "Currency {{.Symbol}} does not exist",
		CodeUnsupportedType:   "Unsupported currency type {{.Type}}",

		// Ledger mutation errors
		CodeOverdrawnLimit: "Balance would fall below the community overdraft limit",
		CodeSupplyExceeded: "Quantity exceeds the available currency supply",
		CodeSelfTransfer:   "Cannot transfer to self",

		// Identity and membership errors
		CodeNotAuthorized:          "Caller is not authorized for this operation",
		CodeUnknownAccountIdentity: "Destination account {{.Account}} does not exist",
		CodeNotCommunityMember:     "Account {{.Account}} does not belong to the community",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
	},
}
