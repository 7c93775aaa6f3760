package service

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	rzputils "github.com/razorpay/razorpay-go/utils"

	"github.com/digichit/digichit-server/internal/domain"
)

// PaymentService wraps the Razorpay gateway. The gateway is treated as a
// black box: orders are created remotely and signature verification goes
// through the SDK, never reimplemented here.
type PaymentService struct {
	client    *razorpay.Client
	keySecret string
}

// NewPaymentService creates a PaymentService. With empty credentials the
// service is constructed but every call fails with ErrPaymentFailed, which
// keeps local development possible without gateway keys.
func NewPaymentService(keyID, keySecret string) *PaymentService {
	var client *razorpay.Client
	if keyID != "" {
		client = razorpay.NewClient(keyID, keySecret)
	}
	return &PaymentService{
		client:    client,
		keySecret: keySecret,
	}
}

// Order is the projection of a gateway order returned to the client
type Order struct {
	OrderID  string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder creates a gateway order. Amount is in the currency's smallest
// unit (paise for INR), as the gateway requires.
func (s *PaymentService) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	if s.client == nil {
		return nil, domain.ErrPaymentFailed
	}
	if currency == "" {
		currency = "INR"
	}

	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := s.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}

	order := &Order{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}
	if id, ok := body["id"].(string); ok {
		order.OrderID = id
	}
	if status, ok := body["status"].(string); ok {
		order.Status = status
	}

	return order, nil
}

// VerifyPayment checks the gateway signature for a completed payment and
// reports whether it is authentic
func (s *PaymentService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) bool {
	if s.client == nil {
		return false
	}

	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return rzputils.VerifyPaymentSignature(params, signature, s.keySecret)
}

// GetPayment fetches payment details from the gateway
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	if s.client == nil {
		return nil, domain.ErrPaymentFailed
	}

	body, err := s.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}

	return body, nil
}
