package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Reason classifies why a spend run terminated.
type Reason int

const (
	ReasonBudgetExhausted Reason = iota // remaining budget cannot admit another transaction
	ReasonCountExhausted                // transaction count limit reached
	ReasonFatalError                    // a worker hit a non-recoverable submission error
	ReasonCancelled                     // external stop signal before either limit
)

func (r Reason) String() string {
	switch r {
	case ReasonBudgetExhausted:
		return "BUDGET_EXHAUSTED"
	case ReasonCountExhausted:
		return "COUNT_EXHAUSTED"
	case ReasonFatalError:
		return "FATAL_ERROR"
	case ReasonCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the reason as its string form in exported reports.
func (r Reason) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", r.String())), nil
}

// Receipt records one committed transaction.
type Receipt struct {
	Seq         int64           `json:"seq"` // commit order, 1-based
	Worker      int             `json:"worker"`
	Requested   decimal.Decimal `json:"requested"`
	Fee         decimal.Decimal `json:"fee"`
	Actual      decimal.Decimal `json:"actual"` // amount really debited, may differ from requested
	Signature   string          `json:"signature"`
	TsUnixMicro int64           `json:"ts_us"`
}

// FinalReport is handed to the caller once every worker has stopped.
type FinalReport struct {
	RunID           string          `json:"run_id"`
	Mode            string          `json:"mode"`
	CommittedAmount decimal.Decimal `json:"committed_amount"`
	CommittedCount  int64           `json:"committed_count"`
	Reason          Reason          `json:"reason"`
	Err             error           `json:"-"`
	ErrText         string          `json:"error,omitempty"`
	Receipts        []Receipt       `json:"receipts"`
	Elapsed         time.Duration   `json:"elapsed_ns"`
}

// Failed reports whether the run ended on a fatal error.
func (r FinalReport) Failed() bool {
	return r.Reason == ReasonFatalError
}
