package domain

import "time"

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentWechatPay      PaymentMethod = "WECHAT_PAY"
	PaymentAlipay         PaymentMethod = "ALIPAY"
	PaymentUnionPay       PaymentMethod = "UNION_PAY"
)

// Supported reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Supported() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentWechatPay, PaymentAlipay, PaymentUnionPay:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPendingPayment   OrderStatus = "PENDING_PAYMENT"
	OrderStatusAwaitingShipment OrderStatus = "AWAITING_SHIPMENT"
	OrderStatusShipped          OrderStatus = "SHIPPED"
	OrderStatusDelivered        OrderStatus = "DELIVERED"
	OrderStatusCompleted        OrderStatus = "COMPLETED"
)

// OrderLineItem is one purchased variant of an order. UnitPrice is the
// catalog price captured at commit time and never changes afterwards,
// even if the variant is repriced later.
type OrderLineItem struct {
	VariantID   int64   `json:"variant_id"`
	VariantName string  `json:"variant_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type Order struct {
	ID           string
	UserID       int64
	AddressID    int64
	PayMethod    PaymentMethod
	TotalCount   int
	TotalPrice   float64
	TransitPrice float64
	Status       OrderStatus
	Items        []OrderLineItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
