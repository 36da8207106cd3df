package domain

import (
	"fmt"
	"strings"
)

type ProductType string

const (
	ProductTypeHandmade ProductType = "HANDMADE"
	ProductTypeBottle   ProductType = "BOTTLE"
	ProductTypeBakery   ProductType = "BAKERY"
)

var productTypeText = map[ProductType]string{
	ProductTypeHandmade: "제조 음료",
	ProductTypeBottle:   "병 음료",
	ProductTypeBakery:   "베이커리",
}

func (t ProductType) Valid() bool {
	_, ok := productTypeText[t]
	return ok
}

// Text returns the label shown on the kiosk screen.
func (t ProductType) Text() string { return productTypeText[t] }

type ProductSellingStatus string

const (
	SellingStatusSelling     ProductSellingStatus = "SELLING"
	SellingStatusHold        ProductSellingStatus = "HOLD"
	SellingStatusStopSelling ProductSellingStatus = "STOP_SELLING"
)

var sellingStatusText = map[ProductSellingStatus]string{
	SellingStatusSelling:     "판매중",
	SellingStatusHold:        "판매보류",
	SellingStatusStopSelling: "판매중지",
}

func (s ProductSellingStatus) Valid() bool {
	_, ok := sellingStatusText[s]
	return ok
}

func (s ProductSellingStatus) Text() string { return sellingStatusText[s] }

// ForDisplay lists the statuses a product may have and still be shown to customers.
func ForDisplay() []ProductSellingStatus {
	return []ProductSellingStatus{SellingStatusSelling, SellingStatusHold}
}

type Product struct {
	ID            int64
	ProductNumber string
	Type          ProductType
	SellingStatus ProductSellingStatus
	Name          string
	Price         int
}

// NewProduct validates the fields and returns an unsaved product.
func NewProduct(productNumber string, typ ProductType, status ProductSellingStatus, name string, price int) (*Product, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown product type %q", ErrInvalidProduct, typ)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown selling status %q", ErrInvalidProduct, status)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return &Product{
		ProductNumber: productNumber,
		Type:          typ,
		SellingStatus: status,
		Name:          name,
		Price:         price,
	}, nil
}
