package wizard

import (
	"github.com/go-playground/validator/v10"

	"github.com/marcusb/eventwise/core"
)

var (
	paymentSplitTag  = "paymentsplit"
	paymentSplitText = "down payment and balance must add up to the total"

	paymentTypeTag  = "paymenttype"
	paymentTypeText = "payment type must be one of: half, full, custom"
)

func init() {
	core.Validate.RegisterStructValidation(paymentStructValidation, PaymentData{})
	core.RegisterCustomTranslation(paymentSplitTag, paymentSplitText)
	core.RegisterCustomTranslation(paymentTypeTag, paymentTypeText)
}

// paymentStructValidation enforces the payment invariants on any PaymentData
// crossing the storage boundary: the split must add up exactly, and the type
// must be known (or empty, for untouched payment steps).
func paymentStructValidation(sl validator.StructLevel) {
	pd, ok := sl.Current().Interface().(PaymentData)
	if !ok {
		return
	}

	if pd.DownPayment+pd.Balance != pd.Total {
		sl.ReportError(pd.DownPayment, "down_payment", "DownPayment", paymentSplitTag, "")
	}

	switch pd.Type {
	case "", PaymentHalf, PaymentFull, PaymentCustom:
	default:
		sl.ReportError(pd.Type, "type", "Type", paymentTypeTag, "")
	}
}
