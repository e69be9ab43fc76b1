package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/qqrm/tx-bot/pkg/money"
)

const submitPath = "/v1/transactions"

// RPCSubmitter sends transactions to a payment endpoint over HTTP.
// Used in DEMO and REAL modes. Each Submit is a single POST; network
// errors, 429 and 5xx responses come back transient, everything else
// is fatal.
type RPCSubmitter struct {
	baseURL    string
	wallet     string
	token      string
	signer     *Signer
	httpClient *http.Client
}

// NewRPCSubmitter creates a client for the given endpoint.
func NewRPCSubmitter(baseURL, wallet, token string, signer *Signer, timeout time.Duration) *RPCSubmitter {
	return &RPCSubmitter{
		baseURL: baseURL,
		wallet:  wallet,
		token:   token,
		signer:  signer,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type txRequest struct {
	Wallet string `json:"wallet"`
	Token  string `json:"token"`
	Amount string `json:"amount"`
	Fee    string `json:"fee"`
}

type txResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Signature    string `json:"signature"`
		ActualAmount string `json:"actual_amount"`
	} `json:"data"`
}

// Submit posts one transaction and decodes the acknowledgement.
func (c *RPCSubmitter) Submit(ctx context.Context, req Request) (Receipt, error) {
	body, err := json.Marshal(txRequest{
		Wallet: c.wallet,
		Token:  c.token,
		Amount: req.Amount.String(),
		Fee:    req.Fee.String(),
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+submitPath, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("build request: %w", err)
	}

	for k, v := range c.signer.GenerateHeaders(http.MethodPost, submitPath, string(body)) {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Timeouts and connection failures are worth a retry.
		return Receipt{}, Transient(fmt.Errorf("post transaction: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Receipt{}, Transient(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		slog.Warn("Endpoint pushed back",
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(respBody, 200)))
		return Receipt{}, Transient(fmt.Errorf("endpoint status %d", resp.StatusCode))
	default:
		return Receipt{}, fmt.Errorf("endpoint rejected transaction: status %d: %s",
			resp.StatusCode, truncate(respBody, 200))
	}

	var ack txResponse
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return Receipt{}, fmt.Errorf("decode response: %w", err)
	}

	if ack.Code != "OK" {
		return Receipt{}, fmt.Errorf("endpoint error: %s - %s", ack.Code, ack.Msg)
	}
	if ack.Data.Signature == "" {
		return Receipt{}, fmt.Errorf("endpoint returned no signature")
	}

	actual, err := money.ParseNonNegative(ack.Data.ActualAmount)
	if err != nil {
		return Receipt{}, fmt.Errorf("endpoint actual_amount %q: %w", ack.Data.ActualAmount, err)
	}

	return Receipt{
		ActualAmount: actual,
		Signature:    ack.Data.Signature,
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
