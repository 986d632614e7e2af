package domain

import (
	"fmt"
	"slices"
	"strconv"
)

type ProductDetails struct {
	Name   string `json:"name" validate:"required"`
	MRP    string `json:"mrp" validate:"required"`
	MSP    string `json:"msp" validate:"required"`
	Image1 string `json:"image1" validate:"required"`
	Image2 string `json:"image2" validate:"required"`
	Image3 string `json:"image3,omitempty"`
}

// A Quantity is the number of products a seller commits to register.
//
// Values keep the zero padded form shown to the user.
type Quantity string

const DefaultQuantity Quantity = "02"

var quantities = []Quantity{"02", "30", "75", "100", "250", "500", "1000"}

// Quantities returns the selectable target counts in display order.
func Quantities() []Quantity {
	return slices.Clone(quantities)
}

func ParseQuantity(s string) (Quantity, error) {
	q := Quantity(s)
	if !slices.Contains(quantities, q) {
		return "", fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return q, nil
}

func (q Quantity) Count() int {
	n, err := strconv.Atoi(string(q))
	if err != nil {
		return 0
	}
	return n
}
