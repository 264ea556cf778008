package product

// Product represents a catalog entry. Prices are stored in minor currency
// units. Stock never goes below zero.
type Product struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Desc      string  `json:"desc"`
	Price     int     `json:"price"`
	ImgURL    string  `json:"imgurl"`
	Stock     int     `json:"stock"`
	CreatedAt *string `json:"createdAt,omitempty"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
}
