package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/pickup-checkout/internal/domain"
)

type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequestDTO struct {
	CartID string `json:"cart_id"`
	Day    string `json:"day"`
	Window string `json:"window"`
}

type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type CartTotalsDTO struct {
	Subtotal      MoneyDTO `json:"subtotal"`
	TotalQuantity int      `json:"total_quantity"`
}

type CartLineDTO struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	UnitPrice MoneyDTO `json:"unit_price"`
}

type CartDTO struct {
	ID           string        `json:"id,omitempty"`
	Guest        bool          `json:"guest"`
	Lines        []CartLineDTO `json:"lines"`
	Totals       CartTotalsDTO `json:"totals"`
	CheckoutOpen bool          `json:"checkout_in_progress"`
	CheckedOutAt *time.Time    `json:"checked_out_at,omitempty"`
}

type SlotAvailabilityDTO struct {
	Day       string `json:"day"`
	Window    string `json:"window"`
	Available bool   `json:"available"`
	Remaining int    `json:"remaining"`
}

type OrderLineDTO struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	UnitPrice MoneyDTO `json:"unit_price"`
}

type OrderDTO struct {
	ID             string         `json:"id"`
	SlotID         string         `json:"slot_id"`
	Status         string         `json:"status"`
	Total          MoneyDTO       `json:"total"`
	Lines          []OrderLineDTO `json:"lines"`
	ProviderTxnRef string         `json:"provider_txn_ref"`
	CreatedAt      time.Time      `json:"created_at"`
}

func mapMoneyToDTO(m domain.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   m.Amount.StringFixed(2),
		Currency: m.Currency.String(),
	}
}

func mapTotalsToDTO(t domain.CartTotals) CartTotalsDTO {
	return CartTotalsDTO{
		Subtotal:      mapMoneyToDTO(t.Subtotal),
		TotalQuantity: t.TotalQuantity,
	}
}

func mapCartToDTO(c domain.Cart, totals domain.CartTotals) CartDTO {
	lines := make([]CartLineDTO, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, CartLineDTO{
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: mapMoneyToDTO(l.UnitPrice),
		})
	}

	dto := CartDTO{
		Guest:        c.Guest,
		Lines:        lines,
		Totals:       mapTotalsToDTO(totals),
		CheckoutOpen: c.CheckoutAttempt != nil,
		CheckedOutAt: c.CheckedOutAt,
	}
	if c.ID != uuid.Nil {
		dto.ID = c.ID.String()
	}

	return dto
}

func mapOrderToDTO(o domain.Order) OrderDTO {
	lines := make([]OrderLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineDTO{
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: mapMoneyToDTO(l.UnitPrice),
		})
	}

	return OrderDTO{
		ID:             o.ID.String(),
		SlotID:         o.SlotID.String(),
		Status:         string(o.Status),
		Total:          mapMoneyToDTO(o.Total),
		Lines:          lines,
		ProviderTxnRef: o.Payment.ProviderTxnRef,
		CreatedAt:      o.CreatedAt,
	}
}
