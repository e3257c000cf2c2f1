package domain

import (
	"fmt"
	"strconv"

	apperrors "github.com/communis/ledger/internal/platform/errors"
)

// MaxMemoBytes bounds operation memos.
const MaxMemoBytes = 256

// ValidateMemo enforces the memo length bound.
func ValidateMemo(memo string) error {
	if len(memo) > MaxMemoBytes {
		return apperrors.WithMetadata(apperrors.CodeMemoTooLong,
			fmt.Sprintf("memo has %d bytes, limit is %d", len(memo), MaxMemoBytes),
			map[string]string{"Max": strconv.Itoa(MaxMemoBytes)})
	}
	return nil
}
