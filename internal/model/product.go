package model

// Product is a catalogue entry as persisted in the products collection.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ProductPatch carries the fields of a partial update.
// A nil field is left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
}

// Apply overwrites the supplied fields on p.
// Empty strings and a zero price count as not supplied.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil && *pp.Name != "" {
		p.Name = *pp.Name
	}
	if pp.Description != nil && *pp.Description != "" {
		p.Description = *pp.Description
	}
	if pp.Price != nil && *pp.Price != 0 {
		p.Price = *pp.Price
	}
}

// FindProduct returns the index of the product with the given id, or -1.
func FindProduct(products []Product, id int64) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
