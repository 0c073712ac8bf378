// internal/features/encode.go
package features

import (
	xerrors "planwise-service/internal/pkg/errors"
)

// Recognized categorical encodings for the auto-renewal flag. The set is
// closed: anything else is rejected at the ingestion boundary instead of
// propagating a null into the feature space.
const (
	autoRenewalYes = "Yes"
	autoRenewalNo  = "No"
)

// AutoRenewalColumn is the column name reported in validation errors.
const AutoRenewalColumn = "auto_renewal_allowed"

// EncodeAutoRenewal maps the categorical auto-renewal flag to 1 ("Yes") or
// 0 ("No"). rowID identifies the offending plan row in the returned
// *xerrors.FieldError when the value is outside the recognized set.
func EncodeAutoRenewal(value string, rowID int64) (float64, error) {
	switch value {
	case autoRenewalYes:
		return 1, nil
	case autoRenewalNo:
		return 0, nil
	default:
		return 0, &xerrors.FieldError{Column: AutoRenewalColumn, Row: rowID, Value: value}
	}
}
