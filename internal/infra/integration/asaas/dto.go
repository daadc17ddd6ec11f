package asaas

// CheckoutReferencePrefix marca links de checkout de plano; o webhook não
// trata esses pagamentos como cobrança de participante.
const CheckoutReferencePrefix = "conta:"

// createPaymentLinkRequest é o corpo de POST /paymentLinks.
type createPaymentLinkRequest struct {
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	Value               float64 `json:"value"`
	BillingType         string  `json:"billingType"`
	ChargeType          string  `json:"chargeType"`
	SubscriptionCycle   string  `json:"subscriptionCycle"`
	DueDateLimitDays    int     `json:"dueDateLimitDays"`
	ExternalReference   string  `json:"externalReference"`
	NotificationEnabled bool    `json:"notificationEnabled"`
}

type paymentLinkResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type apiErrorResponse struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

// WebhookEvent é o envelope que o Asaas manda para /webhook.
type WebhookEvent struct {
	Event   string         `json:"event"`
	Payment WebhookPayment `json:"payment"`
}

type WebhookPayment struct {
	ID                string  `json:"id"`
	Customer          string  `json:"customer"`
	Status            string  `json:"status"`
	Value             float64 `json:"value"`
	ExternalReference string  `json:"externalReference"`
}
