package handler

import (
	"net/http"
	"strconv"

	"fruitpack/internal/config"
	"fruitpack/internal/domain/model"
	"fruitpack/internal/middleware"
	"fruitpack/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /claims はドライバー専用。
type ClaimHandler struct {
	uc *usecase.ClaimUsecase
}

func NewClaimHandler(uc *usecase.ClaimUsecase) *ClaimHandler {
	return &ClaimHandler{uc: uc}
}

func (h *ClaimHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/claims")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RequireRole(model.RoleDriver))

	g.POST("/claim/order/:order_id/driver/:driver_id", h.claim)
	g.GET("/driver/claims", h.listMine)
	g.GET("/system/claims", h.listSystem)
}

func (h *ClaimHandler) claim(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
	}
	driverID, err := strconv.ParseInt(c.Param("driver_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid driver id"})
	}

	out, err := h.uc.ClaimOrder(c.Request().Context(), userID, driverID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ClaimHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMyClaims(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ClaimHandler) listSystem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListSystemClaims(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
