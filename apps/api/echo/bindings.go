package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marcusb/eventwise/core"
	"github.com/marcusb/eventwise/core/user"
)

const dateParamLayout = "2006-01-02"

// bindUserQueryFilter populates the filter from query parameters:
// search, roles (comma-separated), is_active, created_from, created_to.
func bindUserQueryFilter(ctx echo.Context, filter *user.QueryFilter) error {
	params := ctx.QueryParams()
	if len(params) == 0 {
		return nil
	}

	filter.Search = ctx.QueryParam("search")
	if roles := ctx.QueryParam("roles"); roles != "" {
		for _, role := range strings.Split(roles, ",") {
			if role = strings.TrimSpace(role); role != "" {
				filter.Roles = append(filter.Roles, role)
			}
		}
	}
	if active := ctx.QueryParam("is_active"); active != "" {
		val, err := strconv.ParseBool(active)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "is_active", Error: "invalid boolean"})
		}
		filter.IsActive = &val
	}

	var err error
	if filter.CreatedFrom, err = bindTimeParam(ctx, "created_from"); err != nil {
		return err
	}
	filter.CreatedTo, err = bindTimeParam(ctx, "created_to")
	return err
}

// bindTimeParam parses an optional query parameter as either a date
// (2006-01-02) or an RFC 3339 timestamp.
func bindTimeParam(ctx echo.Context, name string) (time.Time, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateParamLayout, val); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: name, Error: "invalid date"})
	}
	return t, nil
}
