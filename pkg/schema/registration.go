package schema

import "github.com/hamba/avro/v2"

const RegistrationSchemaTextV1 = `{
	"type": "record",
	"namespace": "onboarding",
	"name": "registration",
	"fields": [
		{"name": "submission_id", "type": "string"},
		{"name": "tasker", "type": {
			"type": "record",
			"name": "tasker",
			"fields": [
				{"name": "name", "type": "string"},
				{"name": "phone", "type": "string"}
			]
		}},
		{"name": "seller", "type": {
			"type": "record",
			"name": "seller",
			"fields": [
				{"name": "seller_name", "type": "string"},
				{"name": "shop_name", "type": "string"},
				{"name": "shop_image", "type": "string"},
				{"name": "gst_number", "type": "string"},
				{"name": "seller_phone_number", "type": "string"},
				{"name": "product_count", "type": "int"}
			]
		}},
		{"name": "products", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "product",
				"fields": [
					{"name": "name", "type": "string"},
					{"name": "mrp", "type": "string"},
					{"name": "msp", "type": "string"},
					{"name": "image1", "type": "string"},
					{"name": "image2", "type": "string"},
					{"name": "image3", "type": "string", "default": ""}
				]
			}
		}}
	]
}`

type (
	RegistrationV1 struct {
		SubmissionID string      `avro:"submission_id"`
		Tasker       TaskerV1    `avro:"tasker"`
		Seller       SellerV1    `avro:"seller"`
		Products     []ProductV1 `avro:"products"`
	}

	TaskerV1 struct {
		Name  string `avro:"name"`
		Phone string `avro:"phone"`
	}

	SellerV1 struct {
		SellerName        string `avro:"seller_name"`
		ShopName          string `avro:"shop_name"`
		ShopImage         string `avro:"shop_image"`
		GSTNumber         string `avro:"gst_number"`
		SellerPhoneNumber string `avro:"seller_phone_number"`
		ProductCount      int    `avro:"product_count"`
	}

	ProductV1 struct {
		Name   string `avro:"name"`
		MRP    string `avro:"mrp"`
		MSP    string `avro:"msp"`
		Image1 string `avro:"image1"`
		Image2 string `avro:"image2"`
		Image3 string `avro:"image3"`
	}
)

// RegistrationV1Avro parses [RegistrationSchemaTextV1], panics on failure.
func RegistrationV1Avro() avro.Schema {
	return avro.MustParse(RegistrationSchemaTextV1)
}
