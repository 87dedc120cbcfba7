package billing

// CreateCustomerRequest запрос на создание клиента у провайдера.
type CreateCustomerRequest struct {
	Email string `json:"email"`
}

// Customer ответ провайдера с созданным клиентом.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateCheckoutSessionRequest запрос на создание checkout-сессии.
//
// CustomerID пуст, если у пользователя ещё нет клиента у провайдера:
// в этом случае провайдер создаёт нового.
type CreateCheckoutSessionRequest struct {
	CustomerID string `json:"customer,omitempty"`
	PriceRef   string `json:"price"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// CreatePortalSessionRequest запрос на создание сессии портала управления подпиской.
type CreatePortalSessionRequest struct {
	CustomerID string `json:"customer"`
	ReturnURL  string `json:"return_url"`
}

// Session ответ провайдера: сессия с URL для редиректа пользователя.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
