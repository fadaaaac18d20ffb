// Package opendart is the HTTP client for the OpenDART disclosure API.
package opendart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/dartview/dartview-go/internal/domain"
	"github.com/dartview/dartview-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const Service = "opendart"

var tracer = otel.Tracer("dartview/opendart")

var (
	corpCodePattern = regexp.MustCompile(`^\d{8}$`)
	yearPattern     = regexp.MustCompile(`^\d{4}$`)

	reportCodes = map[string]bool{
		domain.ReportQ1:     true,
		domain.ReportHalf:   true,
		domain.ReportQ3:     true,
		domain.ReportAnnual: true,
	}
)

// Client calls OpenDART with retry and a circuit breaker. Transport
// failures are retried; business errors reported by the API are final.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewClient creates an OpenDART client.
func NewClient(httpClient *http.Client, baseURL, apiKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cb:         cb,
		cfg:        cfg,
	}
}

// FetchStatement retrieves the single-company key-account statement for a
// business year and report period. The payload carries both consolidated
// and separate rows; scope filtering happens downstream.
func (c *Client) FetchStatement(ctx context.Context, corpCode, year, reportCode string) (*domain.StatementPayload, error) {
	ctx, span := tracer.Start(ctx, "OpenDartClient.FetchStatement")
	defer span.End()
	span.SetAttributes(
		attribute.String("corp.code", corpCode),
		attribute.String("report.year", year),
		attribute.String("report.code", reportCode),
	)

	if !corpCodePattern.MatchString(corpCode) {
		return nil, &domain.ErrValidation{Field: "corp_code", Message: "must be an 8-digit code"}
	}
	if !yearPattern.MatchString(year) {
		return nil, &domain.ErrValidation{Field: "bsns_year", Message: "must be a 4-digit year"}
	}
	if !reportCodes[reportCode] {
		return nil, &domain.ErrValidation{Field: "reprt_code", Message: "unknown report code"}
	}

	var payload domain.StatementPayload

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			q := url.Values{}
			q.Set("crtfc_key", c.apiKey)
			q.Set("corp_code", corpCode)
			q.Set("bsns_year", year)
			q.Set("reprt_code", reportCode)

			reqURL := fmt.Sprintf("%s/fnlttSinglAcnt.json?%s", c.baseURL, q.Encode())
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("opendart returned status %d", resp.StatusCode)
			}

			payload = domain.StatementPayload{}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return err
			}

			if payload.Status != "000" {
				// Final verdict from the API; retrying cannot change it.
				return resilience.Permanent(&domain.ErrUpstream{
					Code:    payload.Status,
					Message: payload.Message,
				})
			}
			return nil
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &payload, nil
	})

	if err != nil {
		return nil, c.mapError(ctx, "fetch statement", err)
	}

	return result.(*domain.StatementPayload), nil
}

// FetchCorpCodeArchive downloads the corpCode ZIP archive holding the full
// corporation directory.
func (c *Client) FetchCorpCodeArchive(ctx context.Context) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "OpenDartClient.FetchCorpCodeArchive")
	defer span.End()

	var archive []byte

	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			reqURL := fmt.Sprintf("%s/corpCode.xml?crtfc_key=%s", c.baseURL, url.QueryEscape(c.apiKey))
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("opendart returned status %d", resp.StatusCode)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			// A rejected key comes back as a small JSON envelope instead
			// of a ZIP archive.
			if !bytes.HasPrefix(body, []byte("PK")) {
				var envelope domain.StatementPayload
				if jerr := json.Unmarshal(body, &envelope); jerr == nil && envelope.Status != "" {
					return resilience.Permanent(&domain.ErrUpstream{
						Code:    envelope.Status,
						Message: envelope.Message,
					})
				}
				return fmt.Errorf("opendart returned a non-archive payload (%d bytes)", len(body))
			}

			archive = body
			return nil
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return archive, nil
	})

	if err != nil {
		return nil, c.mapError(ctx, "fetch corp codes", err)
	}

	return archive, nil
}

// mapError translates breaker, context and retry outcomes into domain
// errors. Upstream business errors pass through untouched so handlers can
// surface the original code and message. The permanent marker has done its
// work by this point (retry stopped, breaker counted a success) and is
// stripped.
func (c *Client) mapError(ctx context.Context, operation string, err error) error {
	var perm *resilience.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	var upstream *domain.ErrUpstream
	if errors.As(err, &upstream) {
		return upstream
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: Service}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.ErrTimeout{Operation: operation}
	}
	return &domain.ErrExternalService{Service: Service, Err: err}
}
