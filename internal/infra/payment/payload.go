package payment

import (
	"encoding/json"
	"strconv"
	"strings"
)

// WebhookEvent is the provider payload normalized to one shape. The
// mobile-money providers disagree on key names and on whether amounts
// are strings or numbers, so everything funnels through ParsePayload.
type WebhookEvent struct {
	Reference  string
	Status     string
	AmountFcfa int64
}

// Succeeded reports whether the provider status means the money moved.
func (e WebhookEvent) Succeeded() bool {
	switch strings.ToUpper(e.Status) {
	case "SUCCESS", "SUCCESSFUL", "OK", "COMPLETED", "PAID":
		return true
	}
	return false
}

// Failed reports a terminal failure status. A status that is neither
// Succeeded nor Failed (e.g. PENDING) leaves the attempt untouched.
func (e WebhookEvent) Failed() bool {
	switch strings.ToUpper(e.Status) {
	case "FAILED", "CANCELLED", "CANCELED", "ERROR", "EXPIRED":
		return true
	}
	return false
}

var (
	referenceKeys = []string{"reference", "idCommande", "orderId", "order_id"}
	statusKeys    = []string{"status", "etat", "state"}
	amountKeys    = []string{"amount", "montant"}
)

// ParsePayload normalizes a raw provider webhook body. Unknown keys are
// ignored; a missing reference is legal and handled upstream as a no-op.
func ParsePayload(body []byte) (WebhookEvent, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return WebhookEvent{}, err
	}

	ev := WebhookEvent{
		Reference: firstString(raw, referenceKeys),
		Status:    firstString(raw, statusKeys),
	}
	ev.AmountFcfa = firstAmount(raw, amountKeys)
	return ev, nil
}

func firstString(raw map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			switch s := v.(type) {
			case string:
				if s != "" {
					return s
				}
			case float64:
				return strconv.FormatInt(int64(s), 10)
			}
		}
	}
	return ""
}

func firstAmount(raw map[string]interface{}, keys []string) int64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch a := v.(type) {
		case float64:
			return int64(a)
		case string:
			// Providers send "5000", "5000.00" and even "5 000".
			cleaned := strings.ReplaceAll(a, " ", "")
			if i := strings.IndexByte(cleaned, '.'); i >= 0 {
				cleaned = cleaned[:i]
			}
			if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}
