// Package paymentprovider реализует клиент платёжного провайдера с
// hosted-checkout: ссылка на оплату строится на стороне сервиса, факт
// продажи подтверждается вебхуком и верифицируется через API провайдера.
package paymentprovider

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"encoding/json"
)

// Client — HTTP-клиент API провайдера.
type Client struct {
	checkoutURL string
	apiURL      string
	apiToken    string
	httpClient  *http.Client
}

// NewClient создаёт новый клиент провайдера.
func NewClient(checkoutURL, apiURL, apiToken string) *Client {
	return &Client{
		checkoutURL: checkoutURL,
		apiURL:      apiURL,
		apiToken:    apiToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// BuildCheckoutURL строит ссылку на оплату продукта. Код ваучера и uid
// пользователя передаются провайдеру параметрами и возвращаются в
// метаданных вебхука.
func (c *Client) BuildCheckoutURL(product, userUID, voucherCode string) string {
	q := url.Values{}
	q.Set("product", product)
	q.Set("user_uid", userUID)
	if voucherCode != "" {
		q.Set("voucher", voucherCode)
	}
	return c.checkoutURL + "?" + q.Encode()
}

// VerifySale запрашивает у провайдера данные о продаже по её ID.
// Используется для подтверждения вебхуков: сам вебхук содержит только
// подпись и идентификатор.
func (c *Client) VerifySale(saleID string) (*Sale, error) {
	const op = "paymentprovider.VerifySale"

	req, err := http.NewRequest(http.MethodGet, c.apiURL+"/sales/"+url.PathEscape(saleID), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var verifyResp verifySaleResponse
	if err := json.NewDecoder(resp.Body).Decode(&verifyResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !verifyResp.Success {
		return nil, errors.New("sale not found")
	}
	return &verifyResp.Sale, nil
}
