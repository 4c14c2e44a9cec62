package webhook

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ims/internal/config"
	"ims/internal/normalize"
	"ims/internal/port"
)

// httpNotifier delivers invoice save events to the external automation
// service as GET requests with the payload in query parameters, which is
// the contract that service expects.
type httpNotifier struct {
	createURL string
	updateURL string
	client    *http.Client
}

// NewHTTPNotifier creates a Notifier that calls the configured create and
// update endpoints. An empty URL disables delivery for that event type.
func NewHTTPNotifier(cfg *config.WebhookConfig) port.Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &httpNotifier{
		createURL: cfg.CreateURL,
		updateURL: cfg.UpdateURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (n *httpNotifier) Notify(ctx context.Context, ev port.Event) {
	endpoint := n.updateURL
	if ev.Type == port.EventCreated {
		endpoint = n.createURL
	}
	if endpoint == "" || ev.Invoice == nil {
		return
	}

	inv := ev.Invoice
	params := url.Values{}
	params.Set("title", inv.Title)
	params.Set("project", inv.Project)
	params.Set("location", inv.Location)
	params.Set("invoice_date", normalize.FormatDate(inv.InvoiceDate))
	params.Set("submission_date", normalize.FormatDate(inv.SubmissionDate))
	params.Set("amount", strconv.FormatFloat(inv.BasicAmount, 'f', 2, 64))
	params.Set("file_url", inv.FileURL)
	params.Set("status", string(inv.Status))
	params.Set("payment_date", normalize.FormatDate(inv.PaymentDate))
	params.Set("to", inv.ToEmail)
	params.Set("cc", strings.Join(inv.CCEmails, ", "))

	target := endpoint
	if strings.Contains(endpoint, "?") {
		target += "&" + params.Encode()
	} else {
		target += "?" + params.Encode()
	}

	// Delivery runs detached from the request context so a finished save
	// does not cancel it.
	go n.send(target, string(ev.Type), inv.Title)
}

func (n *httpNotifier) send(target, event, title string) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, target, nil)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Str("invoice", title).
			Msg("webhook request build failed")
		return
	}

	resp, err := n.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Str("invoice", title).
			Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn().Int("status", resp.StatusCode).Str("event", event).
			Str("invoice", title).Msg("webhook delivery rejected")
		return
	}
	log.Debug().Str("event", event).Str("invoice", title).Msg("webhook delivered")
}
