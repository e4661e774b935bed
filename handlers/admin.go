package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"shmboard/models"
	"shmboard/services"
)

type ValidatorAdmin interface {
	ListValidators(ctx context.Context, creds models.Credentials) ([]models.AdminValidator, error)
	UpdateValidator(ctx context.Context, creds models.Credentials, publicKey, alias, avatar string) error
}

// AdminHandlers pass the caller's Basic auth credentials through to the
// leaderboard backend. Nothing is checked or stored here.
type AdminHandlers struct {
	admin ValidatorAdmin
}

func NewAdminHandlers(admin ValidatorAdmin) *AdminHandlers {
	return &AdminHandlers{admin: admin}
}

type UpdateValidatorRequest struct {
	Alias  string `json:"alias"`
	Avatar string `json:"avatar"`
}

func credentials(c echo.Context) models.Credentials {
	user, pass, _ := c.Request().BasicAuth()
	return models.Credentials{Username: user, Password: pass}
}

func (ah *AdminHandlers) ListValidators(c echo.Context) error {
	validators, err := ah.admin.ListValidators(c.Request().Context(), credentials(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, validators)
}

func (ah *AdminHandlers) UpdateValidator(c echo.Context) error {
	var req UpdateValidatorRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	publicKey := c.Param("publicKey")
	if err := ah.admin.UpdateValidator(c.Request().Context(), credentials(c), publicKey, req.Alias, req.Avatar); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":         "Validator updated",
		"public_key":      publicKey,
		"allowed_avatars": models.AllowedAvatars,
	})
}

// ListAvatars returns the avatars UpdateValidator accepts
func (ah *AdminHandlers) ListAvatars(c echo.Context) error {
	return c.JSON(http.StatusOK, models.AllowedAvatars)
}

var _ ValidatorAdmin = (*services.AdminService)(nil)
