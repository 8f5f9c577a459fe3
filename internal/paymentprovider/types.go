package paymentprovider

// Sale — данные о продаже, возвращаемые провайдером при верификации.
type Sale struct {
	ID          string `json:"id"`
	ProductName string `json:"product_name"`
	Email       string `json:"email"`
	PriceCents  int    `json:"price_cents"`
	Currency    string `json:"currency"`
	Refunded    bool   `json:"refunded"`
}

// verifySaleResponse — конверт ответа провайдера.
type verifySaleResponse struct {
	Success bool `json:"success"`
	Sale    Sale `json:"sale"`
}
