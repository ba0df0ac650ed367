package echoapi

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/booking"
	"github.com/marcusb/eventwise/core/catalog"
	"github.com/marcusb/eventwise/core/wizard"
)

type wizardApi struct {
	drafts     *wizard.Manager
	bookingSvc *booking.Service
	catalogSvc *catalog.Service
}

func registerWizardAPI(g *echo.Group, jwt echo.MiddlewareFunc, drafts *wizard.Manager, bookingSvc *booking.Service, catalogSvc *catalog.Service) {
	api := wizardApi{
		drafts:     drafts,
		bookingSvc: bookingSvc,
		catalogSvc: catalogSvc,
	}

	// the wizard works for anonymous visitors too; auth only narrows the draft scope
	wg := g.Group("/wizard", optionalJWTMiddleware(jwt))
	wg.GET("/steps", api.querySteps)
	wg.GET("/draft", api.retrieveDraft)
	wg.PUT("/draft", api.saveDraft)
	wg.DELETE("/draft", api.discardDraft)
	wg.POST("/budget", api.previewBudget)
	wg.POST("/submit", api.submit)
}

// wizardScope derives the draft scope from the authenticated user, falling
// back to the anonymous scope.
func wizardScope(ctx echo.Context) string {
	if claims, err := getContextClaims(ctx); err == nil {
		return wizard.Scope(claims.Subject)
	}
	return wizard.AnonymousScope
}

// restoreContext applies the referrer heuristic: a referrer from our own host
// means in-app navigation; anything else (including no referrer at all) is
// treated as a reload and the wizard reopens on the first step.
func restoreContext(ctx echo.Context) wizard.RestoreContext {
	referer := ctx.Request().Referer()
	if referer == "" {
		return wizard.RestoreReload
	}
	ref, err := url.Parse(referer)
	if err != nil {
		return wizard.RestoreReload
	}
	if ref.Host == ctx.Request().Host {
		return wizard.RestoreNavigation
	}
	return wizard.RestoreReload
}

// Handlers

func (api *wizardApi) querySteps(ctx echo.Context) error {
	steps := wizard.DefaultSteps()
	resp := make([]StepResponse, 0, len(steps))
	for i, step := range steps {
		resp = append(resp, StepResponse{Index: i, ID: step.ID, Title: step.Title})
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *wizardApi) retrieveDraft(ctx echo.Context) error {
	rec, err := api.drafts.Load(ctx.Request().Context(), wizardScope(ctx), restoreContext(ctx))
	if err != nil {
		if errors.Cause(err) == wizard.ErrNoDraft {
			return errHttpNotFound
		}
		return errors.Wrap(err, "loading draft")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *wizardApi) saveDraft(ctx echo.Context) error {
	var state wizard.State
	if err := ctx.Bind(&state); err != nil {
		return errors.Wrap(err, "binding to State")
	}
	if err := core.Validate.Struct(state); err != nil {
		return err
	}

	rec, err := api.drafts.Save(ctx.Request().Context(), wizardScope(ctx), state)
	if err != nil {
		return errors.Wrap(err, "saving draft")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *wizardApi) discardDraft(ctx echo.Context) error {
	if err := api.drafts.Clear(ctx.Request().Context(), wizardScope(ctx)); err != nil {
		return errors.Wrap(err, "clearing draft")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *wizardApi) previewBudget(ctx echo.Context) error {
	var state wizard.State
	if err := ctx.Bind(&state); err != nil {
		return errors.Wrap(err, "binding to State")
	}

	var venueBuffer int64
	if state.SelectedPackageID != "" {
		pkg, err := api.catalogSvc.GetPackage(ctx.Request().Context(), state.SelectedPackageID)
		if err != nil {
			if errors.Cause(err) == catalog.ErrPackageNotFound {
				return core.NewValidationError(nil, core.FieldError{Field: "selectedPackageId", Error: "package not found"})
			}
			return errors.Wrap(err, "finding package by ID")
		}
		venueBuffer = pkg.VenueBuffer
	}

	return ctx.JSON(http.StatusOK, wizard.Summarize(&state, venueBuffer))
}

func (api *wizardApi) submit(ctx echo.Context) error {
	var data SubmitWizardRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitWizardRequest")
	}

	reqCtx := ctx.Request().Context()
	scope := wizardScope(ctx)

	// fall back to the stored draft when no state is posted
	state := data.State
	if state == nil {
		rec, err := api.drafts.Load(reqCtx, scope, wizard.RestoreNavigation)
		if err != nil {
			if errors.Cause(err) == wizard.ErrNoDraft {
				return core.NewValidationError(errors.New("no wizard state to submit"))
			}
			return errors.Wrap(err, "loading draft")
		}
		state = &rec.State
	}

	var clientID string
	if claims, err := getContextClaims(ctx); err == nil && claims.IsClient {
		clientID = claims.Subject
	}

	// clear under the scope the draft was saved under, which differs from
	// the client scope for authenticated non-client submitters
	bkg, err := api.bookingSvc.Create(reqCtx, clientID, scope, *state, data.AcceptOverage)
	if err != nil {
		if errors.Cause(err) == wizard.ErrOverageUnconfirmed {
			return core.NewValidationError(wizard.ErrOverageUnconfirmed)
		}
		return err
	}

	return ctx.JSON(http.StatusCreated, SubmitWizardResponse{
		Status:  "success",
		Message: "Your booking has been received. We will contact you to confirm the details.",
		Booking: bkg,
	})
}

type (
	StepResponse struct {
		Index int    `json:"index"`
		ID    string `json:"id"`
		Title string `json:"title"`
	}

	SubmitWizardRequest struct {
		State         *wizard.State `json:"state"`
		AcceptOverage bool          `json:"accept_overage"`
	}

	SubmitWizardResponse struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Booking booking.Booking `json:"booking"`
	}
)
