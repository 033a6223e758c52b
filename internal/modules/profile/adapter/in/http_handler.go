package in

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"detox/internal/modules/profile/dto"
	profilein "detox/internal/modules/profile/port/in"
	"detox/internal/platform/httperr"
)

type registerRequest struct {
	Username        string `json:"username"`
	BaselineMinutes int    `json:"baseline_minutes"`
}

type profileResponse struct {
	Username        string    `json:"username"`
	Points          int       `json:"points"`
	Balance         float64   `json:"balance"`
	BaselineMinutes int       `json:"baseline_minutes"`
	TargetMinutes   int       `json:"target_minutes"`
	RedeemableValue float64   `json:"redeemable_value"`
	CreatedAt       time.Time `json:"created_at"`
}

type HTTPHandler struct {
	usecase profilein.Usecase
}

func NewHTTPHandler(usecase profilein.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Register(g *echo.Group) {
	g.POST("/users", h.create)
	g.GET("/users/:user", h.get)
	g.DELETE("/users/:user/progress", h.reset)
}

func (h HTTPHandler) create(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	out, err := h.usecase.Register(c.Request().Context(), dto.RegisterInput{Username: req.Username, BaselineMinutes: req.BaselineMinutes})
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusCreated, toResponse(out))
}

func (h HTTPHandler) get(c echo.Context) error {
	out, err := h.usecase.Get(c.Request().Context(), c.Param("user"))
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, toResponse(out))
}

func (h HTTPHandler) reset(c echo.Context) error {
	out, err := h.usecase.Reset(c.Request().Context(), c.Param("user"))
	if err != nil {
		return httperr.From(err)
	}
	return c.JSON(http.StatusOK, toResponse(out))
}

func toResponse(p dto.ProfileOutput) profileResponse {
	return profileResponse{
		Username:        p.Username,
		Points:          p.Points,
		Balance:         p.Balance,
		BaselineMinutes: p.BaselineMinutes,
		TargetMinutes:   p.TargetMinutes,
		RedeemableValue: p.RedeemableValue,
		CreatedAt:       p.CreatedAt,
	}
}
