package budget

import (
	"strings"

	"github.com/shopspring/decimal"

	"hustleledger/internal/core"
)

type polarity int

const (
	polarityUnknown polarity = iota
	polarityExpense
	polarityIncome
)

// polarityRule inspects one family of fields. The first rule returning a
// known polarity decides.
type polarityRule func(tx *core.Transaction) polarity

var polarityChain = []polarityRule{
	byType,
	byIsExpense,
	byDirection,
	bySign,
}

// ExpenseAmount returns how much tx adds to a budget's spending: the absolute
// amount for expenses and zero for income. A nil transaction adds nothing.
func ExpenseAmount(tx *core.Transaction) decimal.Decimal {
	if tx == nil {
		return decimal.Zero
	}
	amount := tx.Amount.Abs()
	for _, rule := range polarityChain {
		switch rule(tx) {
		case polarityIncome:
			return decimal.Zero
		case polarityExpense:
			return amount
		}
	}
	return amount
}

func byType(tx *core.Transaction) polarity {
	kind := tx.Type
	if kind == "" {
		kind = tx.CategoryType
	}
	switch normalize(kind) {
	case "income", "credit":
		return polarityIncome
	case "expense", "debit":
		return polarityExpense
	}
	return polarityUnknown
}

func byIsExpense(tx *core.Transaction) polarity {
	switch {
	case tx.IsExpense == nil:
		return polarityUnknown
	case *tx.IsExpense:
		return polarityExpense
	default:
		return polarityIncome
	}
}

func byDirection(tx *core.Transaction) polarity {
	dir := firstNonEmpty(tx.Direction, tx.Flow, tx.Kind)
	switch normalize(dir) {
	case "income", "credit", "incoming", "in":
		return polarityIncome
	case "expense", "debit", "outgoing", "out":
		return polarityExpense
	}
	return polarityUnknown
}

func bySign(tx *core.Transaction) polarity {
	if tx.Amount.IsNegative() {
		return polarityExpense
	}
	return polarityUnknown
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
