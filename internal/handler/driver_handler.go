package handler

import (
	"net/http"

	"fruitpack/internal/config"
	"fruitpack/internal/domain/model"
	"fruitpack/internal/middleware"
	"fruitpack/internal/usecase"

	"github.com/labstack/echo/v4"
)

type DriverHandler struct {
	uc *usecase.DriverUsecase
}

func NewDriverHandler(uc *usecase.DriverUsecase) *DriverHandler {
	return &DriverHandler{uc: uc}
}

type UpdateDriverStatusRequest struct {
	Status string `json:"status"`
}

type UpdateDriverLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *DriverHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/drivers")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RequireRole(model.RoleDriver))

	g.GET("/me", h.me)
	g.PATCH("/status", h.updateStatus)
	g.POST("/location", h.updateLocation)
}

func (h *DriverHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetMe(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DriverHandler) updateStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req UpdateDriverStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), userID, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DriverHandler) updateLocation(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req UpdateDriverLocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateLocation(c.Request().Context(), userID, req.Latitude, req.Longitude)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
