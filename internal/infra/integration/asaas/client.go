package asaas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  logrus.FieldLogger
}

func NewClient(apiKey, baseURL string, logger logrus.FieldLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// CreateCheckoutSession cria um link de pagamento recorrente do plano e devolve a URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, accountID string, plan *entity.Plan) (string, error) {
	url := fmt.Sprintf("%s/paymentLinks", c.baseURL)

	value, _ := plan.Price.Float64()
	payload := createPaymentLinkRequest{
		Name:                "Plano " + plan.Name,
		Description:         fmt.Sprintf("Assinatura do plano %s (%d grupos)", plan.Name, plan.GroupLimit),
		Value:               value,
		BillingType:         "UNDEFINED",
		ChargeType:          "RECURRENT",
		SubscriptionCycle:   "MONTHLY",
		DueDateLimitDays:    5,
		ExternalReference:   CheckoutReferencePrefix + accountID,
		NotificationEnabled: false,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("erro ao gerar json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("erro na conexão com asaas: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(logrus.Fields{
			"status":     resp.StatusCode,
			"account_id": accountID,
			"plan_id":    plan.ID,
		}).Errorf("❌ ERRO API ASAAS: %s", describe(body))
		return "", fmt.Errorf("api asaas rejeitou (status %d)", resp.StatusCode)
	}

	var response paymentLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("erro ao ler resposta asaas: %w", err)
	}
	if response.URL == "" {
		return "", fmt.Errorf("asaas não devolveu url do checkout (link %s)", response.ID)
	}
	return response.URL, nil
}

// describe junta as descrições de erro do Asaas; sem elas, devolve o corpo cru.
func describe(body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || len(apiErr.Errors) == 0 {
		return string(body)
	}
	msgs := make([]string, 0, len(apiErr.Errors))
	for _, e := range apiErr.Errors {
		msgs = append(msgs, e.Code+": "+e.Description)
	}
	return strings.Join(msgs, "; ")
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("access_token", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "LigueRateio/1.0")
}
