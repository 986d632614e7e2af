package httphandler

import (
	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/validate"
)

type (
	TargetRequest struct {
		Quantity domain.Quantity `json:"quantity"`
	}

	ProductsResponse struct {
		Products   []domain.ProductDetails `json:"products"`
		Candidate  domain.ProductDetails   `json:"candidate"`
		Target     domain.Quantity         `json:"target"`
		Quantities []domain.Quantity       `json:"quantities"`
		Done       int                     `json:"done"`
		Total      int                     `json:"total"`
		State      string                  `json:"state"`
	}

	FieldErrorsResponse struct {
		Errors validate.FieldErrors `json:"errors"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)
