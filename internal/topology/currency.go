package topology

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/moolen/faultline/internal/subject"
)

// MissingValue is shown when no predicted value exists.
const MissingValue = "₹0.00"

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders v as whole rupees with en-IN digit grouping.
func FormatINR(v float64) string {
	return inr.Sprintf("₹%v", number.Decimal(v, number.MaxFractionDigits(0)))
}

// FormatINRPaise renders v with exactly two fraction digits, the way the
// predicted value is shown.
func FormatINRPaise(v float64) string {
	return inr.Sprintf("₹%v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// PredictedValue returns the INR display value of the subject with id, or
// MissingValue when it is absent or carries no value.
func PredictedValue(subjects []subject.Subject, id string) string {
	for _, s := range subjects {
		if !strings.EqualFold(s.ID, id) {
			continue
		}
		if !s.Metrics.Has(subject.MetricValueINR) {
			return MissingValue
		}
		return FormatINRPaise(s.Metrics.Get(subject.MetricValueINR))
	}
	return MissingValue
}
