package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"powereye/internal/auth"
	apperrors "powereye/internal/errors"
)

// MessageResponse is the body of successful mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("Invalid id")
	}
	return uint(id), nil
}

// requester returns the verified claims of the caller.
func requester(c echo.Context) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: auth.MsgNoToken,
			Code:  "TOKEN_MISSING",
		})
	}
	return claims, nil
}

func badBody() error {
	return apperrors.BadRequest("Invalid request body")
}

// bindAndValidate decodes the body into req and validates it.
func bindAndValidate(c echo.Context, req interface{}, fallback string, messages map[string]string) error {
	if err := c.Bind(req); err != nil {
		return badBody()
	}
	return validateStruct(c, req, fallback, messages)
}

// validateStruct runs the echo validator. A failing field listed in
// messages gets that message unless the failure is a missing value;
// everything else gets fallback.
func validateStruct(c echo.Context, req interface{}, fallback string, messages map[string]string) error {
	err := c.Validate(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if msg, ok := messages[fe.Field()]; ok && fe.Tag() != "required" {
				return apperrors.BadRequest(msg)
			}
		}
	}
	return apperrors.BadRequest(fallback)
}

// fail converts a service error into the echo error rendered to the client.
func fail(err error) error {
	return apperrors.MapErrorToHTTP(err).Echo().SetInternal(err)
}
