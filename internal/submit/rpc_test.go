package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// MockRoundTripper allows us to mock HTTP responses
type MockRoundTripper struct {
	Func func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Func(req)
}

func newTestRPC(rt *MockRoundTripper) *RPCSubmitter {
	signer := NewSigner("wallet-1", "secret")
	c := NewRPCSubmitter("http://endpoint.test", "wallet-1", "tok", signer, 5*time.Second)
	c.httpClient.Transport = rt
	return c
}

func TestRPCSubmitter_Success(t *testing.T) {
	c := newTestRPC(&MockRoundTripper{
		Func: func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/v1/transactions" {
				t.Errorf("Unexpected path: %s", req.URL.Path)
			}
			if req.Method != "POST" {
				t.Errorf("Unexpected method: %s", req.Method)
			}
			if req.Header.Get("X-TXBOT-SIGN") == "" {
				t.Error("request not signed")
			}
			if req.Header.Get("X-TXBOT-WALLET") != "wallet-1" {
				t.Errorf("wrong wallet header: %s", req.Header.Get("X-TXBOT-WALLET"))
			}

			// Verify the posted body carries the amounts as strings
			body, _ := io.ReadAll(req.Body)
			var posted txRequest
			if err := json.Unmarshal(body, &posted); err != nil {
				t.Fatalf("unmarshal posted body: %v", err)
			}
			if posted.Amount != "30" || posted.Fee != "0.25" {
				t.Errorf("unexpected posted amounts: %+v", posted)
			}

			jsonResp := `{"code":"OK","msg":"accepted","data":{"signature":"0xabc","actual_amount":"30.25"}}`
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(bytes.NewBufferString(jsonResp)),
				Header:     make(http.Header),
			}, nil
		},
	})

	rec, err := c.Submit(context.Background(), Request{
		Amount: decimal.RequireFromString("30"),
		Fee:    decimal.RequireFromString("0.25"),
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if rec.Signature != "0xabc" {
		t.Errorf("expected signature 0xabc, got %s", rec.Signature)
	}
	if rec.ActualAmount.String() != "30.25" {
		t.Errorf("expected actual 30.25, got %s", rec.ActualAmount)
	}
}

func TestRPCSubmitter_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		netErr        error
		wantTransient bool
	}{
		{
			name:          "network error",
			netErr:        errors.New("connection refused"),
			wantTransient: true,
		},
		{
			name:          "rate limited",
			status:        429,
			body:          `slow down`,
			wantTransient: true,
		},
		{
			name:          "server error",
			status:        503,
			body:          `unavailable`,
			wantTransient: true,
		},
		{
			name:          "bad request is fatal",
			status:        400,
			body:          `bad wallet`,
			wantTransient: false,
		},
		{
			name:          "endpoint-level rejection is fatal",
			status:        200,
			body:          `{"code":"INSUFFICIENT_FUNDS","msg":"nope"}`,
			wantTransient: false,
		},
		{
			name:          "missing signature is fatal",
			status:        200,
			body:          `{"code":"OK","msg":"","data":{"actual_amount":"1"}}`,
			wantTransient: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestRPC(&MockRoundTripper{
				Func: func(req *http.Request) (*http.Response, error) {
					if tt.netErr != nil {
						return nil, tt.netErr
					}
					return &http.Response{
						StatusCode: tt.status,
						Body:       io.NopCloser(bytes.NewBufferString(tt.body)),
						Header:     make(http.Header),
					}, nil
				},
			})

			_, err := c.Submit(context.Background(), Request{
				Amount: decimal.NewFromInt(1),
				Fee:    decimal.Zero,
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := IsTransient(err); got != tt.wantTransient {
				t.Errorf("IsTransient = %v, want %v (err: %v)", got, tt.wantTransient, err)
			}
		})
	}
}
