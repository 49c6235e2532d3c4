package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/nuvme-configurator/internal/events"
	"github.com/noah-isme/nuvme-configurator/internal/obs"
	"github.com/noah-isme/nuvme-configurator/internal/resilience"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of "<ts>.<eventID>.<body>".
	SignatureHeader = "X-Quote-Signature"
	// TimestampHeader carries the unix seconds used in the signature.
	TimestampHeader = "X-Quote-Timestamp"
	// EventIDHeader carries the domain event id.
	EventIDHeader = "X-Quote-Event-ID"

	userAgent      = "nuvme-configurator-webhooks/1.0"
	maxResponseLog = 512
)

var (
	// ErrNotConfigured is returned when no webhook URL is configured.
	ErrNotConfigured = errors.New("notify: webhook not configured")
	// ErrPermanent marks failures that retrying will not fix (4xx responses).
	ErrPermanent = errors.New("notify: permanent delivery failure")
)

// StatusError reports a non-2xx webhook response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded %d", e.StatusCode)
}

// Is matches ErrPermanent for client errors other than 408 and 429.
func (e *StatusError) Is(target error) bool {
	if target != ErrPermanent {
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500 &&
		e.StatusCode != http.StatusRequestTimeout && e.StatusCode != http.StatusTooManyRequests
}

// DelivererConfig configures webhook delivery.
type DelivererConfig struct {
	URL       string
	Secret    string
	Timeout   time.Duration
	Breaker   *resilience.Breaker
	Replay    ReplayProtector
	ReplayTTL time.Duration
	// Client overrides the instrumented default client.
	Client *http.Client
	Now    func() time.Time
}

// Deliverer posts signed domain events to the configured webhook.
type Deliverer struct {
	url       string
	secret    string
	client    *http.Client
	replay    ReplayProtector
	replayTTL time.Duration
	now       func() time.Time
}

// NewDeliverer validates the endpoint and builds the HTTP client.
func NewDeliverer(cfg DelivererConfig) (*Deliverer, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrNotConfigured
	}
	if err := validateURL(cfg.URL); err != nil {
		return nil, err
	}
	if cfg.Secret == "" {
		return nil, errors.New("notify: webhook secret is required")
	}
	d := &Deliverer{
		url:       cfg.URL,
		secret:    cfg.Secret,
		client:    cfg.Client,
		replay:    cfg.Replay,
		replayTTL: cfg.ReplayTTL,
		now:       cfg.Now,
	}
	if d.client == nil {
		d.client = HTTPClient(cfg.Timeout, cfg.Breaker)
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.replayTTL <= 0 {
		d.replayTTL = 24 * time.Hour
	}
	return d, nil
}

type webhookBody struct {
	EventID     string          `json:"event_id"`
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregate_id"`
	Data        json.RawMessage `json:"data"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// Deliver sends ev once. An event already delivered within the replay TTL is
// skipped.
func (d *Deliverer) Deliver(ctx context.Context, ev events.Event) (err error) {
	ctx, span := otel.Tracer("notify.Deliverer").Start(ctx, "Deliverer.Deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("webhook.event_id", ev.ID.String()),
		attribute.String("webhook.topic", ev.Topic),
	)
	start := time.Now()
	result := "delivered"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			result = "failed"
			if errors.Is(err, ErrPermanent) {
				result = "rejected"
			}
		}
		obs.IncCounter(obs.WebhookDeliveriesTotal, result)
		if obs.WebhookAttemptLatency != nil {
			obs.WebhookAttemptLatency.WithLabelValues(result).Observe(obs.DurationMillis(time.Since(start)))
		}
	}()

	key := ev.ID.String()
	if d.replay != nil {
		ok, err := d.replay.Acquire(ctx, key, d.replayTTL)
		if err != nil {
			return fmt.Errorf("replay guard: %w", err)
		}
		if !ok {
			span.AddEvent("delivery replay prevented")
			result = "duplicate"
			return nil
		}
	}
	if err := d.send(ctx, ev); err != nil {
		if d.replay != nil {
			_ = d.replay.Release(context.WithoutCancel(ctx), key)
		}
		return err
	}
	return nil
}

func (d *Deliverer) send(ctx context.Context, ev events.Event) error {
	data := ev.Payload
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	body, err := json.Marshal(webhookBody{
		EventID:     ev.ID.String(),
		Topic:       ev.Topic,
		AggregateID: ev.AggregateID,
		Data:        data,
		OccurredAt:  ev.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("encode webhook body: %w", err)
	}
	ts := d.now().Unix()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(EventIDHeader, ev.ID.String())
	req.Header.Set(TimestampHeader, strconv.FormatInt(ts, 10))
	req.Header.Set(SignatureHeader, ComputeSignature(d.secret, ts, ev.ID.String(), body))

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseLog))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	return nil
}

// ComputeSignature calculates the webhook signature for the provided payload.
// The format is HMAC-SHA256 over "<ts>.<eventID>.<body>" using the shared secret.
func ComputeSignature(secret string, ts int64, eventID string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(strconv.FormatInt(ts, 10)))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write([]byte(eventID))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature in constant time.
func VerifySignature(secret string, ts int64, eventID string, body []byte, signature string) bool {
	expected := ComputeSignature(secret, ts, eventID, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// HTTPClient returns an otelhttp-instrumented client guarded by breaker.
func HTTPClient(timeout time.Duration, breaker *resilience.Breaker) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	var rt http.RoundTripper = http.DefaultTransport.(*http.Transport).Clone()
	if breaker != nil {
		rt = resilience.Transport{Base: rt, Breaker: breaker}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(rt),
	}
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.New("webhook url must be http or https")
	}
	if parsed.Host == "" {
		return errors.New("webhook url must include host")
	}
	if parsed.Scheme == "http" {
		host := parsed.Hostname()
		if host != "localhost" && host != "127.0.0.1" {
			return errors.New("http webhook only allowed for localhost")
		}
	}
	return nil
}
