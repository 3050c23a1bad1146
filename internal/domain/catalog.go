package domain

// Product is the catalog read model. Prices are whole baht.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Price         int64   `json:"price"`
	OriginalPrice int64   `json:"original_price"`
	CategoryID    int64   `json:"category_id"`
	BrandID       int64   `json:"brand_id"`
	Image         string  `json:"image"`
	Description   string  `json:"description"`
	Stock         int     `json:"stock"`
	Rating        float64 `json:"rating"`
	Reviews       int     `json:"reviews"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}
