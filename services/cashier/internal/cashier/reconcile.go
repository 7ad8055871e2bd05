package cashier

import "github.com/appetiteclub/pos/pkg/enums/paymentmethod"

// Reconciliation is the end-of-shift till arithmetic. Difference is signed:
// positive is a surplus, negative a shortage.
type Reconciliation struct {
	OpeningAmount  int64 `json:"opening_amount"`
	CashTotal      int64 `json:"cash_total"`
	ExpectedAmount int64 `json:"expected_amount"`
	ClosingAmount  int64 `json:"closing_amount"`
	Difference     int64 `json:"difference"`
	PaymentCount   int   `json:"payment_count"`
}

// CashTotal sums amount plus tip over completed cash payments.
func CashTotal(payments []Payment) (int64, int) {
	var total int64
	var count int
	for _, p := range payments {
		if p.Status != PaymentCompleted || p.Method != paymentmethod.Methods.Cash.Name {
			continue
		}
		total += p.Amount + p.Tip
		count++
	}
	return total, count
}

func Reconcile(opening int64, payments []Payment, closing int64) Reconciliation {
	cash, count := CashTotal(payments)
	expected := opening + cash
	return Reconciliation{
		OpeningAmount:  opening,
		CashTotal:      cash,
		ExpectedAmount: expected,
		ClosingAmount:  closing,
		Difference:     closing - expected,
		PaymentCount:   count,
	}
}
