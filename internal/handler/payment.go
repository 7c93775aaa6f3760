package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digichit/digichit-server/internal/domain"
	"github.com/digichit/digichit-server/internal/service"
)

// PaymentHandler handles payment gateway endpoints
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreateOrderRequest is the body of POST /api/payment/create-order.
// Amount is in the currency's smallest unit (paise for INR).
type CreateOrderRequest struct {
	Amount   int64                  `json:"amount" validate:"required,min=100"`
	Currency string                 `json:"currency" validate:"omitempty,len=3"`
	Receipt  string                 `json:"receipt" validate:"max=40"`
	Notes    map[string]interface{} `json:"notes"`
}

// CreateOrderResponse carries the created gateway order
type CreateOrderResponse struct {
	Order *service.Order `json:"order"`
}

// CreateOrder handles POST /api/payment/create-order
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, err.Error())
		return
	}

	order, err := h.paymentService.CreateOrder(r.Context(), req.Amount, req.Currency, req.Receipt, req.Notes)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, CreateOrderResponse{Order: order})
}

// VerifyPaymentRequest carries the gateway's payment completion triple
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// VerifyPaymentResponse reports whether the payment signature is authentic
type VerifyPaymentResponse struct {
	Valid bool `json:"valid"`
}

// VerifyPayment handles POST /api/payment/verify-payment
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodeValidation, err.Error())
		return
	}

	valid := h.paymentService.VerifyPayment(r.Context(), req.OrderID, req.PaymentID, req.Signature)
	if !valid {
		RespondWithError(w, r, http.StatusBadRequest, domain.CodePaymentFailed, "payment signature verification failed")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, VerifyPaymentResponse{Valid: true})
}

// PaymentDetails handles GET /api/payment/payment/{paymentID}
func (h *PaymentHandler) PaymentDetails(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	payment, err := h.paymentService.GetPayment(r.Context(), paymentID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{"payment": payment})
}
