package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"checkout-engine/internal/config"
	"checkout-engine/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const preferencesPath = "/checkout/preferences"

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// HTTPGateway creates preferences through the provider's REST API.
type HTTPGateway struct {
	client *http.Client
	cfg    config.PaymentConfig
	logger zerolog.Logger
}

// NewHTTPGateway creates a gateway client from configuration.
func NewHTTPGateway(cfg config.PaymentConfig, logger zerolog.Logger) *HTTPGateway {
	return &HTTPGateway{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger.With().Str("component", "payment-gateway").Logger(),
	}
}

type preferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
	PictureURL string  `json:"picture_url,omitempty"`
}

type preferencePhone struct {
	Number string `json:"number"`
}

type preferencePayer struct {
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Phone *preferencePhone `json:"phone,omitempty"`
}

type backURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type preferenceBody struct {
	Items             []preferenceItem  `json:"items"`
	Payer             preferencePayer   `json:"payer"`
	ExternalReference string            `json:"external_reference"`
	Metadata          map[string]string `json:"metadata"`
	BackURLs          *backURLs         `json:"back_urls,omitempty"`
	AutoReturn        string            `json:"auto_return,omitempty"`
	NotificationURL   string            `json:"notification_url,omitempty"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type providerErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CreatePreference posts a preference document and returns the created preference.
// The access token is chosen by the request's site when a site token is configured.
func (g *HTTPGateway) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	data, err := json.Marshal(g.buildBody(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode preference: %w", err)
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + preferencesPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build preference request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.tokenFor(req.Site))
	httpReq.Header.Set("X-Idempotency-Key", req.OrderID.String())

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := &ProviderError{StatusCode: resp.StatusCode, Message: readProviderMessage(resp.Body)}
		g.logger.Error().
			Int("status", resp.StatusCode).
			Str("order_id", req.OrderID.String()).
			Str("provider_message", perr.Message).
			Msg("payment provider rejected preference")
		return nil, perr
	}

	var out preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProviderResponse, err)
	}
	if out.ID == "" || out.InitPoint == "" {
		return nil, fmt.Errorf("%w: missing id or init_point", ErrInvalidProviderResponse)
	}

	g.logger.Debug().
		Str("order_id", req.OrderID.String()).
		Str("preference_id", out.ID).
		Msg("payment preference created")

	return &Preference{ID: out.ID, InitPoint: out.InitPoint}, nil
}

func (g *HTTPGateway) tokenFor(site *model.Site) string {
	if site != nil {
		if token := g.cfg.SiteTokens[string(*site)]; token != "" {
			return token
		}
	}
	return g.cfg.AccessToken
}

func (g *HTTPGateway) buildBody(req PreferenceRequest) preferenceBody {
	items := make([]preferenceItem, 0, len(req.Items))
	for _, line := range req.Items {
		item := preferenceItem{
			ID:         line.RefID,
			Title:      line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice.InexactFloat64(),
			CurrencyID: req.Currency,
		}
		// The provider charges unit_price x quantity, so a line priced as a whole is sent as one unit.
		if !line.LineTotal.Equal(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))) {
			item.Title = fmt.Sprintf("%s (x%d)", line.Name, line.Quantity)
			item.Quantity = 1
			item.UnitPrice = line.LineTotal.InexactFloat64()
		}
		if line.Image != nil {
			item.PictureURL = *line.Image
		}
		items = append(items, item)
	}

	body := preferenceBody{
		Items: items,
		Payer: preferencePayer{
			Name:  req.Payer.Name,
			Email: req.Payer.Email,
		},
		ExternalReference: req.OrderID.String(),
		Metadata:          map[string]string{"order_id": req.OrderID.String()},
		NotificationURL:   g.cfg.NotificationURL,
	}
	if req.Payer.Phone != nil && *req.Payer.Phone != "" {
		body.Payer.Phone = &preferencePhone{Number: *req.Payer.Phone}
	}
	if req.Site != nil {
		body.Metadata["sede"] = string(*req.Site)
	}
	if g.cfg.SuccessURL != "" || g.cfg.FailureURL != "" || g.cfg.PendingURL != "" {
		body.BackURLs = &backURLs{
			Success: g.cfg.SuccessURL,
			Failure: g.cfg.FailureURL,
			Pending: g.cfg.PendingURL,
		}
		if g.cfg.SuccessURL != "" {
			body.AutoReturn = "approved"
		}
	}

	return body
}

func readProviderMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body providerErrorBody
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
