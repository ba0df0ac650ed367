package wizard

import (
	"math"

	"github.com/pkg/errors"

	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/catalog"
)

// BaseGuestAllowance is the guest count covered by a venue's base price;
// guests above it are charged the venue's extra-pax rate.
const BaseGuestAllowance = 100

var (
	// ErrPriceLocked rejects any attempt to lower a locked package price.
	ErrPriceLocked = errors.New("package price is locked and cannot be reduced")

	// ErrOverageUnconfirmed blocks a change that pushes the inclusions total
	// over the package price until the client explicitly accepts the overage.
	ErrOverageUnconfirmed = errors.New("inclusions exceed the package price; overage must be accepted")

	errUnknownPaymentType = errors.New("unknown payment type")
)

// VenueCost is the venue's base price, plus the extra-pax rate for every
// guest above the base allowance.
func VenueCost(v catalog.Venue, guestCount int) int64 {
	if guestCount <= BaseGuestAllowance {
		return v.Price
	}
	return v.Price + int64(guestCount-BaseGuestAllowance)*v.ExtraPaxRate
}

// TotalVenueCost sums VenueCost over all selected venues.
func TotalVenueCost(venues []catalog.Venue, guestCount int) int64 {
	var total int64
	for _, v := range venues {
		total += VenueCost(v, guestCount)
	}
	return total
}

// RemainingVenueBudget is what is left of the package's venue buffer,
// clamped at zero.
func RemainingVenueBudget(buffer, totalVenueCost int64) int64 {
	if buffer > totalVenueCost {
		return buffer - totalVenueCost
	}
	return 0
}

// ClientAdditionalPayment is what the client owes on top of the venue buffer,
// clamped at zero. By construction at most one of RemainingVenueBudget and
// ClientAdditionalPayment is nonzero.
func ClientAdditionalPayment(buffer, totalVenueCost int64) int64 {
	if totalVenueCost > buffer {
		return totalVenueCost - buffer
	}
	return 0
}

// InclusionsTotal sums the prices of included components.
func InclusionsTotal(components []Component) int64 {
	var total int64
	for _, c := range components {
		if c.Included {
			total += c.Price
		}
	}
	return total
}

// Overage is the result of comparing the inclusions total against the
// package price. A flagged overage requires explicit client confirmation
// ("Accept Overage") before the change is committed; there is no silent
// auto-accept path.
type Overage struct {
	Amount               int64 `json:"amount"`
	RequiresConfirmation bool  `json:"requires_confirmation"`
}

func CheckOverage(packagePrice, inclusionsTotal int64) Overage {
	if inclusionsTotal > packagePrice {
		return Overage{
			Amount:               inclusionsTotal - packagePrice,
			RequiresConfirmation: true,
		}
	}
	return Overage{}
}

// CheckPriceReduction rejects any attempted price below the locked price.
// Once a package price is set it can only be raised or left unchanged.
func CheckPriceReduction(lockedPrice, attemptedPrice int64) error {
	if attemptedPrice < lockedPrice {
		return core.NewValidationError(ErrPriceLocked,
			core.FieldError{Field: "package_price", Error: ErrPriceLocked.Error()})
	}
	return nil
}

// PaymentSplit splits total into a down payment and a balance.
// "half" pays 50%, "full" pays 100%, "custom" pays customPercentage (0-100).
// The down payment is rounded to the nearest unit and the balance is computed
// as the remainder, so DownPayment + Balance == Total holds exactly.
func PaymentSplit(total int64, typ PaymentType, customPercentage float64) (PaymentData, error) {
	var pct float64
	switch typ {
	case PaymentHalf:
		pct = 50
	case PaymentFull:
		pct = 100
	case PaymentCustom:
		if customPercentage < 0 || customPercentage > 100 {
			return PaymentData{}, core.NewValidationError(nil, core.FieldError{
				Field: "custom_percentage",
				Error: "must be between 0 and 100",
			})
		}
		pct = customPercentage
	default:
		return PaymentData{}, core.NewValidationError(errUnknownPaymentType, core.FieldError{
			Field: "type",
			Error: errUnknownPaymentType.Error(),
		})
	}

	down := int64(math.Round(float64(total) * pct / 100))
	return PaymentData{
		Total:            total,
		DownPayment:      down,
		Balance:          total - down,
		Type:             typ,
		CustomPercentage: pct,
	}, nil
}

// BudgetSummary holds the derived financial figures recomputed on every
// wizard mutation.
type BudgetSummary struct {
	TotalVenueCost          int64   `json:"total_venue_cost"`
	RemainingVenueBudget    int64   `json:"remaining_venue_budget"`
	ClientAdditionalPayment int64   `json:"client_additional_payment"`
	InclusionsTotal         int64   `json:"inclusions_total"`
	Overage                 Overage `json:"overage"`
}

// Summarize derives all budget figures for the given state and venue buffer.
func Summarize(s *State, venueBuffer int64) BudgetSummary {
	var venues []catalog.Venue
	if s.SelectedVenue != nil {
		venues = append(venues, *s.SelectedVenue)
	}
	totalVenue := TotalVenueCost(venues, s.EventDetails.GuestCount)
	inclusions := s.InclusionsTotal()
	return BudgetSummary{
		TotalVenueCost:          totalVenue,
		RemainingVenueBudget:    RemainingVenueBudget(venueBuffer, totalVenue),
		ClientAdditionalPayment: ClientAdditionalPayment(venueBuffer, totalVenue),
		InclusionsTotal:         inclusions,
		Overage:                 CheckOverage(s.OriginalPackagePrice, inclusions),
	}
}
