package booking

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/catalog"
	"github.com/marcusb/eventwise/core/wizard"
)

var (
	// errors
	ErrNotFound         = errors.New("booking not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrNotAccepted      = errors.New("booking has not been accepted")
	ErrAlreadyProcessed = errors.New("booking has already been processed")
)

type (
	Repository interface {
		CreateBooking(ctx context.Context, bkg Booking) (Booking, error)
		GetBookingByID(ctx context.Context, id string) (Booking, error)
		QueryAllBookings(ctx context.Context) ([]Booking, error)
		QueryBookingsByClient(ctx context.Context, clientID string) ([]Booking, error)
		UpdateBooking(ctx context.Context, bkg Booking) (Booking, error)
		CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
		QueryPaymentsByBooking(ctx context.Context, bookingID string) ([]Payment, error)
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		GetEventByBooking(ctx context.Context, bookingID string) (Event, error)
	}

	Service struct {
		repo       Repository
		catalogSvc *catalog.Service
		drafts     *wizard.Manager
		mailSvc    core.EmailService
		log        core.Logger
	}
)

func NewService(repo Repository, catalogSvc *catalog.Service, drafts *wizard.Manager,
	mailSvc core.EmailService, log core.Logger) *Service {
	return &Service{
		repo:       repo,
		catalogSvc: catalogSvc,
		drafts:     drafts,
		mailSvc:    mailSvc,
		log:        log,
	}
}

// checkState re-runs the wizard's budget rules on the submitted state.
// Clients cannot be trusted to have gone through the wizard, so a
// reduced package price or an unconfirmed overage is rejected here too.
func (svc *Service) checkState(ctx context.Context, st wizard.State, acceptOverage bool) (catalog.Package, error) {
	var fieldErrs []core.FieldError
	if st.ClientData.Name == "" {
		fieldErrs = append(fieldErrs, core.FieldError{Field: "clientData.name", Error: "is required"})
	}
	if st.EventDetails.EventType == "" {
		fieldErrs = append(fieldErrs, core.FieldError{Field: "eventDetails.event_type", Error: "is required"})
	}
	if st.EventDetails.EventDate.IsZero() {
		fieldErrs = append(fieldErrs, core.FieldError{Field: "eventDetails.event_date", Error: "is required"})
	}
	if st.SelectedPackageID == "" {
		fieldErrs = append(fieldErrs, core.FieldError{Field: "selectedPackageId", Error: "is required"})
	}
	if st.SelectedVenueID == "" {
		fieldErrs = append(fieldErrs, core.FieldError{Field: "selectedVenueId", Error: "is required"})
	}
	if len(fieldErrs) > 0 {
		return catalog.Package{}, core.NewValidationError(nil, fieldErrs...)
	}

	pkg, err := svc.catalogSvc.GetPackage(ctx, st.SelectedPackageID)
	if err != nil {
		return catalog.Package{}, err
	}
	if _, err = svc.catalogSvc.GetVenue(ctx, st.SelectedVenueID); err != nil {
		return catalog.Package{}, err
	}

	if err = wizard.CheckPriceReduction(pkg.Price, st.OriginalPackagePrice); err != nil {
		return catalog.Package{}, err
	}
	if ovg := wizard.CheckOverage(st.OriginalPackagePrice, st.InclusionsTotal()); ovg.RequiresConfirmation && !acceptOverage {
		return catalog.Package{}, wizard.ErrOverageUnconfirmed
	}
	return pkg, nil
}

// Create turns a completed wizard state into a pending booking, clears the
// submitter's draft and sends a confirmation email. draftScope is the scope
// the draft was saved under; when empty it is derived from clientID.
func (svc *Service) Create(ctx context.Context, clientID, draftScope string, st wizard.State, acceptOverage bool) (Booking, error) {
	pkg, err := svc.checkState(ctx, st, acceptOverage)
	if err != nil {
		return Booking{}, err
	}

	summary := wizard.Summarize(&st, pkg.VenueBuffer)
	now := time.Now().UTC()
	bkg := Booking{
		ID:            uuid.New().String(),
		ClientID:      clientID,
		PackageID:     st.SelectedPackageID,
		VenueID:       st.SelectedVenueID,
		EventType:     st.EventDetails.EventType,
		EventDate:     st.EventDetails.EventDate,
		GuestCount:    st.EventDetails.GuestCount,
		PackagePrice:  st.OriginalPackagePrice,
		OverageAmount: summary.Overage.Amount,
		VenueExcess:   summary.ClientAdditionalPayment,
		TotalAmount:   st.OriginalPackagePrice + summary.Overage.Amount + summary.ClientAdditionalPayment,
		Components:    st.Components,
		Organizers:    st.SelectedOrganizers,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	bkg, err = svc.repo.CreateBooking(ctx, bkg)
	if err != nil {
		return Booking{}, err
	}

	if draftScope == "" {
		draftScope = wizard.Scope(clientID)
	}
	if err = svc.drafts.Clear(ctx, draftScope); err != nil {
		svc.log.Warn(fmt.Sprintf("clearing draft for %s: %v", draftScope, err))
	}

	if st.ClientData.Email != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: st.ClientData.Name, Address: st.ClientData.Email}},
			Subject: "Your booking request was received",
			BodyStr: fmt.Sprintf(
				"Hi %s,\n\nWe received your %s booking for %s. "+
					"Our staff will review it and get back to you shortly.\n\nReference: %s\n",
				st.ClientData.Name, bkg.EventType, bkg.EventDate.Format("January 2, 2006"), bkg.ID,
			),
		})
	}
	return bkg, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Booking, error) {
	return svc.repo.QueryAllBookings(ctx)
}

func (svc *Service) QueryByClient(ctx context.Context, clientID string) ([]Booking, error) {
	return svc.repo.QueryBookingsByClient(ctx, clientID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Booking, error) {
	return svc.repo.GetBookingByID(ctx, id)
}

// Accept marks a pending booking accepted, schedules its event and records
// the organizer assignments for the event date.
func (svc *Service) Accept(ctx context.Context, id string) (Booking, Event, error) {
	bkg, err := svc.repo.GetBookingByID(ctx, id)
	if err != nil {
		return Booking{}, Event{}, err
	}
	if bkg.Status != StatusPending {
		return Booking{}, Event{}, ErrAlreadyProcessed
	}

	now := time.Now().UTC()
	bkg.Status = StatusAccepted
	bkg.AcceptedAt = &now
	bkg.UpdatedAt = now
	if bkg, err = svc.repo.UpdateBooking(ctx, bkg); err != nil {
		return Booking{}, Event{}, err
	}

	evt := Event{
		ID:        uuid.New().String(),
		BookingID: bkg.ID,
		Name:      fmt.Sprintf("%s (%s)", bkg.EventType, bkg.EventDate.Format("2006-01-02")),
		EventDate: bkg.EventDate,
		Status:    "scheduled",
		CreatedAt: now,
	}
	if evt, err = svc.repo.CreateEvent(ctx, evt); err != nil {
		return Booking{}, Event{}, err
	}

	if len(bkg.Organizers) > 0 {
		if _, err = svc.catalogSvc.AssignOrganizers(ctx, bkg.ID, bkg.EventDate, bkg.Organizers...); err != nil {
			svc.log.Warn(fmt.Sprintf("assigning organizers to booking %s: %v", bkg.ID, err))
		}
	}
	return bkg, evt, nil
}

// Reject marks a pending booking rejected.
func (svc *Service) Reject(ctx context.Context, id string) (Booking, error) {
	bkg, err := svc.repo.GetBookingByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if bkg.Status != StatusPending {
		return Booking{}, ErrAlreadyProcessed
	}
	bkg.Status = StatusRejected
	bkg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBooking(ctx, bkg)
}

// CreatePayment records a payment plan for an accepted booking. The split is
// computed server-side from the booking total so the stored figures always
// add up.
func (svc *Service) CreatePayment(ctx context.Context, np NewPayment) (Payment, error) {
	bkg, err := svc.repo.GetBookingByID(ctx, np.BookingID)
	if err != nil {
		return Payment{}, err
	}
	if bkg.Status != StatusAccepted {
		return Payment{}, ErrNotAccepted
	}

	split, err := wizard.PaymentSplit(bkg.TotalAmount, wizard.PaymentType(np.Type), np.CustomPercentage)
	if err != nil {
		return Payment{}, err
	}
	pmt := Payment{
		ID:          uuid.New().String(),
		BookingID:   bkg.ID,
		Total:       split.Total,
		DownPayment: split.DownPayment,
		Balance:     split.Balance,
		Type:        split.Type,
		Method:      np.Method,
		Status:      PaymentPending,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreatePayment(ctx, pmt)
}

func (svc *Service) QueryPayments(ctx context.Context, bookingID string) ([]Payment, error) {
	return svc.repo.QueryPaymentsByBooking(ctx, bookingID)
}

func (svc *Service) GetEvent(ctx context.Context, bookingID string) (Event, error) {
	return svc.repo.GetEventByBooking(ctx, bookingID)
}
