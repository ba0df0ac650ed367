package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/booking"
)

type bookingApi struct {
	svc *booking.Service
}

func registerBookingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *booking.Service) {
	api := bookingApi{svc: svc}

	bg := g.Group("/bookings", jwt)
	bg.GET("", api.query)
	bg.POST("/:id/accept", api.accept, staffMiddleware())
	bg.POST("/:id/reject", api.reject, staffMiddleware())

	// detail endpoints; a client only sees their own bookings
	dg := bg.Group("/:id", ctxBookingMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.GET("/payments", api.queryPayments)
	dg.POST("/payments", api.createPayment, staffMiddleware())
	dg.GET("/event", api.retrieveEvent)
}

// Handlers

func (api *bookingApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var bkgs []booking.Booking
	switch {
	case claims.IsStaff || claims.IsAdmin:
		bkgs, err = api.svc.QueryAll(ctx.Request().Context())
	case claims.IsClient:
		bkgs, err = api.svc.QueryByClient(ctx.Request().Context(), claims.Subject)
	default:
		return errHttpForbidden
	}
	if err != nil {
		return errors.Wrap(err, "querying bookings")
	}
	if bkgs == nil {
		bkgs = []booking.Booking{}
	}
	return ctx.JSON(http.StatusOK, bkgs)
}

func (api *bookingApi) retrieve(ctx echo.Context) error {
	bkg, ok := ctx.Get("object").(booking.Booking)
	if !ok {
		return errors.Wrap(errBkgNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, bkg)
}

func (api *bookingApi) accept(ctx echo.Context) error {
	bkg, evt, err := api.svc.Accept(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		switch errors.Cause(err) {
		case booking.ErrNotFound:
			return errHttpNotFound
		case booking.ErrAlreadyProcessed:
			return core.NewValidationError(booking.ErrAlreadyProcessed)
		}
		return errors.Wrap(err, "accepting booking")
	}
	return ctx.JSON(http.StatusOK, BookingDecisionResponse{Booking: bkg, Event: &evt})
}

func (api *bookingApi) reject(ctx echo.Context) error {
	bkg, err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		switch errors.Cause(err) {
		case booking.ErrNotFound:
			return errHttpNotFound
		case booking.ErrAlreadyProcessed:
			return core.NewValidationError(booking.ErrAlreadyProcessed)
		}
		return errors.Wrap(err, "rejecting booking")
	}
	return ctx.JSON(http.StatusOK, BookingDecisionResponse{Booking: bkg})
}

func (api *bookingApi) createPayment(ctx echo.Context) error {
	var data booking.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	data.BookingID = ctx.Param("id")
	if err := data.Validate(); err != nil {
		return err
	}

	pmt, err := api.svc.CreatePayment(ctx.Request().Context(), data)
	if err != nil {
		switch errors.Cause(err) {
		case booking.ErrNotFound:
			return errHttpNotFound
		case booking.ErrNotAccepted:
			return core.NewValidationError(booking.ErrNotAccepted)
		}
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *bookingApi) queryPayments(ctx echo.Context) error {
	pmts, err := api.svc.QueryPayments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if pmts == nil {
		pmts = []booking.Payment{}
	}
	return ctx.JSON(http.StatusOK, pmts)
}

func (api *bookingApi) retrieveEvent(ctx echo.Context) error {
	evt, err := api.svc.GetEvent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if cause := errors.Cause(err); cause == booking.ErrNotFound || cause == booking.ErrNotAccepted {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding event by booking")
	}
	return ctx.JSON(http.StatusOK, evt)
}

var errBkgNotFoundInCtx = errors.New("booking object not found in echo.Context")

// ctxBookingMiddleware loads the booking and refuses access unless the caller
// is staff, admin or the owning client.
func ctxBookingMiddleware(svc *booking.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			bkg, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == booking.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding booking by ID")
			}

			if claims.IsStaff || claims.IsAdmin || (claims.IsClient && bkg.ClientID == claims.Subject) {
				ctx.Set("object", bkg)
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}

type BookingDecisionResponse struct {
	Booking booking.Booking `json:"booking"`
	Event   *booking.Event  `json:"event,omitempty"`
}
