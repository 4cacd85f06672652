package http

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Wire types of openapi.yaml.

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type NewOrderLine struct {
	Upc      string `json:"upc"`
	Quantity int    `json:"quantity"`
}

type NewOrder struct {
	CustomerRef *string        `json:"customerRef,omitempty"`
	Lines       []NewOrderLine `json:"lines"`
}

type OrderLine struct {
	Id                openapi_types.UUID `json:"id"`
	Upc               string             `json:"upc"`
	QuantityOrdered   int                `json:"quantityOrdered"`
	QuantityAllocated int                `json:"quantityAllocated"`
}

type Order struct {
	Id          openapi_types.UUID `json:"id"`
	CustomerId  openapi_types.UUID `json:"customerId"`
	CustomerRef *string            `json:"customerRef,omitempty"`
	Status      string             `json:"status"`
	CreatedAt   *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty"`
	Lines       []OrderLine        `json:"lines"`
}

type OrderSummary struct {
	Id          openapi_types.UUID `json:"id"`
	CustomerId  openapi_types.UUID `json:"customerId"`
	CustomerRef *string            `json:"customerRef,omitempty"`
	Status      string             `json:"status"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type OrderState struct {
	Id     openapi_types.UUID `json:"id"`
	Status string             `json:"status"`
}

type ListOrdersParams struct {
	Status *string `form:"status,omitempty" json:"status,omitempty"`
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
}
