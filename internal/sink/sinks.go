package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pipeline-score/internal/resilience"
	"github.com/sells-group/pipeline-score/pkg/closecrm"
	"github.com/sells-group/pipeline-score/pkg/kit"
)

// Sink delivers a record to one external system.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, rec Record) error
}

// Retrier is implemented by sinks that narrow which failures the
// dispatcher may retry.
type Retrier interface {
	Retryable(err error) bool
}

// CloseSink creates a CRM lead per record.
type CloseSink struct {
	client closecrm.Client
}

// NewCloseSink wraps a Close client.
func NewCloseSink(c closecrm.Client) *CloseSink {
	return &CloseSink{client: c}
}

func (s *CloseSink) Name() string { return "close" }

// Retryable allows a retry only when Close rejected the request outright.
// Lead creation is not idempotent; a timeout or 5xx may have created it.
func (s *CloseSink) Retryable(err error) bool {
	var sc resilience.StatusCoder
	return errors.As(err, &sc) && sc.HTTPStatus() == http.StatusTooManyRequests
}

func (s *CloseSink) Deliver(ctx context.Context, rec Record) error {
	contact := closecrm.Contact{
		Name:   rec.FullName,
		Emails: []closecrm.Email{{Email: rec.Email, Type: "office"}},
	}
	if rec.Listing != nil && rec.Listing.Phone != "" {
		contact.Phones = []closecrm.Phone{{Phone: rec.Listing.Phone, Type: "office"}}
	}

	lead := closecrm.Lead{
		Name:        fmt.Sprintf("Pipeline 100: %s (%s)", rec.BusinessName, rec.City),
		Description: fmt.Sprintf("Score: %d | Band: %s", rec.Score, rec.Band),
		Contacts:    []closecrm.Contact{contact},
		Custom:      rec.CRMFields(),
	}

	resp, err := s.client.CreateLead(ctx, lead)
	if err != nil {
		return eris.Wrap(err, "sink: create close lead")
	}
	zap.L().Debug("sink: close lead created",
		zap.String("quiz_id", rec.QuizID),
		zap.String("lead_id", resp.ID),
	)
	return nil
}

// KitSink subscribes the contact to a form and applies the record's tags.
type KitSink struct {
	client kit.Client
	formID string
}

// NewKitSink wraps a Kit client subscribing to formID.
func NewKitSink(c kit.Client, formID string) *KitSink {
	return &KitSink{client: c, formID: formID}
}

func (s *KitSink) Name() string { return "kit" }

// Deliver fails only when the subscription fails. Tags that cannot be
// applied are logged and skipped.
func (s *KitSink) Deliver(ctx context.Context, rec Record) error {
	_, err := s.client.SubscribeToForm(ctx, s.formID, kit.Subscriber{
		EmailAddress: rec.Email,
		FirstName:    rec.FirstName(),
		Fields:       rec.ESPFields(),
	})
	if err != nil {
		return eris.Wrap(err, "sink: kit subscribe")
	}

	for _, tag := range rec.Tags {
		if err := s.client.TagSubscriber(ctx, tag, rec.Email); err != nil {
			zap.L().Warn("sink: kit tag failed",
				zap.String("tag", tag),
				zap.String("quiz_id", rec.QuizID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// WebhookSink posts the record as JSON to an arbitrary URL.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink creates a webhook sink. A nil client gets a 10s timeout.
func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSink{url: url, client: client}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sink: marshal webhook record")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "sink: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "sink: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// StatusError is a webhook rejection.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sink: webhook returned status %d", e.Code)
}

// HTTPStatus exposes the status code for transient-error classification.
func (e *StatusError) HTTPStatus() int {
	return e.Code
}
