package handler

import (
	"net/http"

	"fruitpack/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 決済プロバイダからの戻り口。認証ヘッダは付いてこないのでJWTガードは掛けない。
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type webhookRequest struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/payments/callback", h.callback)
	e.POST("/payments/webhook", h.webhook)
}

// Paystackのリダイレクト先。?reference=FP-XXXXXXXX が付いてくる。
func (h *PaymentHandler) callback(c echo.Context) error {
	reference := c.QueryParam("reference")
	if reference == "" {
		// 一部のプロバイダ設定ではtrxrefで来る
		reference = c.QueryParam("trxref")
	}

	out, err := h.uc.HandleCallback(c.Request().Context(), reference)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) webhook(c echo.Context) error {
	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.HandleWebhook(c.Request().Context(), req.Event, req.Data.Reference)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
