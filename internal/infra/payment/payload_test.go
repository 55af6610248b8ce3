//go:build !integration

package payment

import "testing"

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    WebhookEvent
		wantErr bool
	}{
		{
			name: "canonical shape",
			body: `{"reference":"TOKENS_01ABC","status":"SUCCESS","amount":5000}`,
			want: WebhookEvent{Reference: "TOKENS_01ABC", Status: "SUCCESS", AmountFcfa: 5000},
		},
		{
			name: "french provider keys",
			body: `{"idCommande":"SUB_01DEF","etat":"SUCCESSFUL","montant":"10000"}`,
			want: WebhookEvent{Reference: "SUB_01DEF", Status: "SUCCESSFUL", AmountFcfa: 10000},
		},
		{
			name: "orderId variant",
			body: `{"orderId":"ELV42","state":"FAILED"}`,
			want: WebhookEvent{Reference: "ELV42", Status: "FAILED"},
		},
		{
			name: "snake case order id",
			body: `{"order_id":"SUB_9","status":"PAID","amount":"25 000"}`,
			want: WebhookEvent{Reference: "SUB_9", Status: "PAID", AmountFcfa: 25000},
		},
		{
			name: "decimal string amount",
			body: `{"reference":"TOKENS_X","status":"OK","amount":"5000.00"}`,
			want: WebhookEvent{Reference: "TOKENS_X", Status: "OK", AmountFcfa: 5000},
		},
		{
			name: "numeric reference",
			body: `{"idCommande":12345,"etat":"SUCCESS","montant":1000}`,
			want: WebhookEvent{Reference: "12345", Status: "SUCCESS", AmountFcfa: 1000},
		},
		{
			name: "missing everything still parses",
			body: `{"foo":"bar"}`,
			want: WebhookEvent{},
		},
		{
			name:    "not json",
			body:    `reference=TOKENS_1&status=SUCCESS`,
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePayload([]byte(tc.body))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePayload: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status        string
		succeeded     bool
		failed        bool
	}{
		{"SUCCESS", true, false},
		{"success", true, false},
		{"PAID", true, false},
		{"COMPLETED", true, false},
		{"FAILED", false, true},
		{"cancelled", false, true},
		{"CANCELED", false, true},
		{"EXPIRED", false, true},
		{"PENDING", false, false},
		{"", false, false},
		{"INITIATED", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			ev := WebhookEvent{Status: tc.status}
			if ev.Succeeded() != tc.succeeded {
				t.Errorf("Succeeded() = %v, want %v", ev.Succeeded(), tc.succeeded)
			}
			if ev.Failed() != tc.failed {
				t.Errorf("Failed() = %v, want %v", ev.Failed(), tc.failed)
			}
		})
	}
}
