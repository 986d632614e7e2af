package domain

type TaskerDetails struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required,phone"`
}

type SellerDetails struct {
	SellerName        string `json:"sellerName" validate:"required"`
	ShopName          string `json:"shopName" validate:"required"`
	ShopImage         string `json:"shopImage" validate:"required"`
	GSTNumber         string `json:"gstNumber" validate:"required,gstin"`
	SellerPhoneNumber string `json:"sellerPhoneNumber" validate:"required,phone"`
	ProductCount      int    `json:"productCount"`
}

// A Draft is the partially completed registration kept on the device.
//
// A nil slice means the screen owning it has not been confirmed yet.
// Products is present when non-nil, even if empty.
type Draft struct {
	Tasker   *TaskerDetails   `json:"taskerDetails,omitempty"`
	Seller   *SellerDetails   `json:"sellerDetails,omitempty"`
	Products []ProductDetails `json:"products,omitempty"`
}

// Merge returns d with every slice present in partial replaced wholesale.
func (d Draft) Merge(partial Draft) Draft {
	if partial.Tasker != nil {
		d.Tasker = partial.Tasker
	}
	if partial.Seller != nil {
		d.Seller = partial.Seller
	}
	if partial.Products != nil {
		d.Products = partial.Products
	}
	return d
}

func (d Draft) IsEmpty() bool {
	return d.Tasker == nil && d.Seller == nil && d.Products == nil
}

// Submission is the body sent to the registration endpoint.
type Submission struct {
	TaskerDetails TaskerDetails    `json:"taskerDetails"`
	SellerDetails SellerDetails    `json:"sellerDetails"`
	Products      []ProductDetails `json:"products"`
}
