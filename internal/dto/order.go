package dto

// CheckoutItem is one cart line at checkout.
type CheckoutItem struct {
	BatchID  string `json:"batch_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=99"`
}

// CheckoutRequest places an order from the cart contents.
type CheckoutRequest struct {
	Items      []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	ShippingTo string         `json:"shipping_to" validate:"required,min=5,max=500"`
}
