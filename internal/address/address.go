package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/utils"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

var (
	ErrInvalidPostalCode  = errors.New("postal code must have 8 digits")
	ErrPostalCodeNotFound = errors.New("postal code not found")
	ErrLookupUnavailable  = errors.New("postal code service unavailable")
)

type Address struct {
	PostalCode   string `json:"postal_code"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// viaCEPResponse mirrors the upstream payload. Unknown codes come back as
// 200 with {"erro": true}.
type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       any    `json:"erro"`
}

type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

type Option func(*retryablehttp.Client)

func WithRetries(max int, waitMin, waitMax time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryMax = max
		c.RetryWaitMin = waitMin
		c.RetryWaitMax = waitMax
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = leveledLogger{logger.L().Sugar().With("component", "address")}

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: rc}
}

// Lookup resolves a Brazilian CEP. Masks like "01310-100" are accepted.
func (c *Client) Lookup(ctx context.Context, postalCode string) (*Address, error) {
	cep := utils.DigitsOnly(postalCode)
	if len(cep) != 8 {
		return nil, ErrInvalidPostalCode
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "address"),
		zap.String("postal_code", cep),
	)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", c.baseURL, cep), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("postal code lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return nil, ErrPostalCodeNotFound
	case resp.StatusCode != http.StatusOK:
		log.Warn("unexpected postal code response", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrLookupUnavailable, resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Warn("invalid postal code payload", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
	}
	if notFound(body.Erro) {
		return nil, ErrPostalCodeNotFound
	}

	return &Address{
		PostalCode:   cep,
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}

// notFound accepts both the boolean and the string form of the error flag.
func notFound(flag any) bool {
	switch v := flag.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
