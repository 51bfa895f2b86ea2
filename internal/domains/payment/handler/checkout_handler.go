package handler

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"researchequals-backend/internal/domains/payment/service"
	"researchequals-backend/internal/shared/response"
)

// CreateCheckoutRequest is the body of POST /checkout/sessions. Amount
// is a decimal string in euros, used only for pay-what-you-want
// licenses.
type CreateCheckoutRequest struct {
	ModuleID int64  `json:"module_id"`
	Amount   string `json:"amount"`
}

func (r CreateCheckoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ModuleID, validation.Required, validation.Min(int64(1))),
	)
}

// CheckoutHandler opens hosted payment sessions.
type CheckoutHandler struct {
	service *service.CheckoutService
}

func NewCheckoutHandler(service *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// CreateSession handles POST /checkout/sessions.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	amount := decimal.Zero
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			response.BadRequest(c, "amount must be a decimal number")
			return
		}
		amount = parsed
	}

	session, err := h.service.CreateSession(c.Request.Context(), req.ModuleID, amount)
	if err != nil {
		switch {
		case service.IsModuleNotFound(err):
			response.NotFound(c, "module not found")
		case errors.Is(err, service.ErrModuleAlreadyPublished):
			response.Conflict(c, "module is already published")
		case errors.Is(err, service.ErrModuleMissingLicense), errors.Is(err, service.ErrAmountRequired):
			response.BadRequest(c, err.Error())
		default:
			response.InternalServerError(c, "failed to create checkout session")
		}
		return
	}

	response.Success(c, http.StatusCreated, session)
}
