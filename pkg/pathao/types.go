package pathao

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// TrackingURL returns the merchant-facing tracking page for a consignment.
func TrackingURL(consignmentID string) string {
	return "https://merchant.pathao.com/tracking?consignment_id=" + url.QueryEscape(consignmentID)
}

// issueTokenRequest is the password-grant payload for the token endpoint.
type issueTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

type issueTokenResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Provider enum values for delivery_type and item_type.
const (
	DeliveryTypeNormal   = 48
	DeliveryTypeOnDemand = 12
	ItemTypeDocument     = 1
	ItemTypeParcel       = 2
)

// CreateOrderRequest is the consignment payload sent to the provider.
type CreateOrderRequest struct {
	StoreID            string          `json:"store_id"`
	MerchantOrderID    string          `json:"merchant_order_id"`
	RecipientName      string          `json:"recipient_name"`
	RecipientPhone     string          `json:"recipient_phone"`
	RecipientAddress   string          `json:"recipient_address"`
	RecipientCity      int             `json:"recipient_city,omitempty"`
	RecipientZone      int             `json:"recipient_zone,omitempty"`
	DeliveryType       int             `json:"delivery_type"`
	ItemType           int             `json:"item_type"`
	ItemQuantity       int             `json:"item_quantity"`
	ItemWeight         string          `json:"item_weight"`
	ItemDescription    string          `json:"item_description,omitempty"`
	AmountToCollect    decimal.Decimal `json:"amount_to_collect"`
	SpecialInstruction string          `json:"special_instruction,omitempty"`
}

// Consignment is the normalized result of creating a provider order.
type Consignment struct {
	ConsignmentID string
	Status        string
	DeliveryFee   decimal.Decimal
}

// ConsignmentStatus is the normalized result of a status query.
type ConsignmentStatus struct {
	ConsignmentID string
	Status        string
}

type apiEnvelope struct {
	Message string          `json:"message"`
	Type    string          `json:"type"`
	Code    int             `json:"code"`
	Data    consignmentData `json:"data"`
}

type consignmentData struct {
	ConsignmentID   string          `json:"consignment_id"`
	MerchantOrderID string          `json:"merchant_order_id"`
	OrderStatus     string          `json:"order_status"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
}
