package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/catalog"
)

type catalogApi struct {
	svc *catalog.Service
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *catalog.Service) {
	api := catalogApi{svc: svc}

	cg := g.Group("/catalog")

	// un-authed endpoints; the wizard browses these before login
	cg.GET("/packages", api.queryPackages)
	cg.GET("/packages/:id", api.retrievePackage)
	cg.GET("/venues", api.queryVenues)
	cg.GET("/venues/:id", api.retrieveVenue)
	cg.GET("/organizers", api.queryOrganizers)
	cg.GET("/organizers/available", api.queryAvailableOrganizers)

	// authed endpoints
	ag := cg.Group("", jwt)
	ag.GET("/organizers/:id/assignments", api.queryAssignments, organizerMiddleware())
	ag.POST("/suppliers", api.createSupplier, staffMiddleware())
	ag.POST("/offers", api.createOffer, organizerMiddleware())
	ag.POST("/ratings", api.createRating)
	ag.DELETE("/cache", api.invalidateCache, adminMiddleware())
}

// Handlers

func (api *catalogApi) queryPackages(ctx echo.Context) error {
	pkgs, err := api.svc.ListPackages(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying packages")
	}
	if pkgs == nil {
		pkgs = []catalog.Package{}
	}
	return ctx.JSON(http.StatusOK, pkgs)
}

func (api *catalogApi) retrievePackage(ctx echo.Context) error {
	pkg, err := api.svc.GetPackage(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrPackageNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding package by ID")
	}
	return ctx.JSON(http.StatusOK, pkg)
}

func (api *catalogApi) queryVenues(ctx echo.Context) error {
	venues, err := api.svc.ListVenues(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying venues")
	}
	if venues == nil {
		venues = []catalog.Venue{}
	}
	return ctx.JSON(http.StatusOK, venues)
}

func (api *catalogApi) retrieveVenue(ctx echo.Context) error {
	venue, err := api.svc.GetVenue(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrVenueNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding venue by ID")
	}
	return ctx.JSON(http.StatusOK, venue)
}

func (api *catalogApi) queryOrganizers(ctx echo.Context) error {
	orgs, err := api.svc.ListOrganizers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying organizers")
	}
	if orgs == nil {
		orgs = []catalog.Organizer{}
	}
	return ctx.JSON(http.StatusOK, orgs)
}

func (api *catalogApi) queryAvailableOrganizers(ctx echo.Context) error {
	date, err := bindTimeParam(ctx, "date")
	if err != nil {
		return err
	}
	if date.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	}

	orgs, err := api.svc.AvailableOrganizers(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "querying available organizers")
	}
	if orgs == nil {
		orgs = []catalog.Organizer{}
	}
	return ctx.JSON(http.StatusOK, orgs)
}

func (api *catalogApi) queryAssignments(ctx echo.Context) error {
	asgs, err := api.svc.OrganizerAssignments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrOrganizerNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying organizer assignments")
	}
	if asgs == nil {
		asgs = []catalog.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *catalogApi) createSupplier(ctx echo.Context) error {
	var data catalog.NewSupplier
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSupplier")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sup, err := api.svc.CreateSupplier(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating supplier")
	}
	return ctx.JSON(http.StatusCreated, sup)
}

func (api *catalogApi) createOffer(ctx echo.Context) error {
	var data catalog.NewOffer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOffer")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	off, err := api.svc.CreateOffer(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrOrganizerNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "organizer_id", Error: "organizer not found"})
		}
		return errors.Wrap(err, "creating offer")
	}
	return ctx.JSON(http.StatusCreated, off)
}

func (api *catalogApi) createRating(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data catalog.NewRating
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRating")
	}
	data.ClientID = claims.Subject
	if err := data.Validate(); err != nil {
		return err
	}

	rat, err := api.svc.CreateRating(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == catalog.ErrOrganizerNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "organizer_id", Error: "organizer not found"})
		}
		return errors.Wrap(err, "creating rating")
	}
	return ctx.JSON(http.StatusCreated, rat)
}

// invalidateCache drops the cached catalog lists so edits made outside the
// API (SQL, back-office tooling) become visible without waiting out the TTL.
func (api *catalogApi) invalidateCache(ctx echo.Context) error {
	api.svc.InvalidateCache()
	return ctx.NoContent(http.StatusNoContent)
}
