package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction is the transaction shape accepted by the budget engine. Callers
// hand over records of differing origin, so several fields may describe the
// polarity; see budget.ExpenseAmount for the order they are consulted in.
type Transaction struct {
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type,omitempty"`
	CategoryType string          `json:"categoryType,omitempty"`
	IsExpense    *bool           `json:"isExpense,omitempty"`
	Direction    string          `json:"direction,omitempty"`
	Flow         string          `json:"flow,omitempty"`
	Kind         string          `json:"kind,omitempty"`
}

// UnmarshalJSON decodes leniently: an amount that is missing, non-numeric or
// of the wrong JSON type decodes as zero instead of failing the record.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount       json.RawMessage `json:"amount"`
		Type         string          `json:"type"`
		CategoryType string          `json:"categoryType"`
		IsExpense    *bool           `json:"isExpense"`
		Direction    string          `json:"direction"`
		Flow         string          `json:"flow"`
		Kind         string          `json:"kind"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Transaction{
		Amount:       LooseAmount(string(raw.Amount)),
		Type:         raw.Type,
		CategoryType: raw.CategoryType,
		IsExpense:    raw.IsExpense,
		Direction:    raw.Direction,
		Flow:         raw.Flow,
		Kind:         raw.Kind,
	}
	return nil
}
