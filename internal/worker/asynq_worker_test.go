package worker

import (
	"strings"
	"testing"

	"github.com/niaga-pos/internal/models"
)

func TestBuildReceiptTextNilTransaction(t *testing.T) {
	if got := buildReceiptText(nil); got != "" {
		t.Fatalf("expected empty receipt for nil transaction, got %q", got)
	}
}

func TestBuildReceiptTextCashWithVoucher(t *testing.T) {
	txn := &models.POSTransaction{
		ReceiptNumber:  "POS-20260901-000042",
		Currency:       "MYR",
		Subtotal:       models.Cents(5000),
		DiscountAmount: models.Cents(500),
		Total:          models.Cents(4500),
		VoucherCode:    "WELCOME10",
		PaymentMethod:  "cash",
		Tendered:       models.Cents(5000),
		Change:         models.Cents(500),
		Items: []models.POSTransactionItem{
			{ItemName: "洗剪吹", Quantity: 1, LineTotal: models.Cents(3000)},
			{ItemName: "护理精油", Quantity: 2, LineTotal: models.Cents(2000)},
		},
	}

	got := buildReceiptText(txn)
	for _, want := range []string{
		"POS-20260901-000042",
		"洗剪吹 x1 30.00",
		"护理精油 x2 20.00",
		"小计 50.00",
		"折扣 -5.00 (WELCOME10)",
		"合计 MYR 45.00",
		"实收 50.00 找零 5.00",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("receipt missing %q, got:\n%s", want, got)
		}
	}
}

func TestBuildReceiptTextNoDiscountLine(t *testing.T) {
	txn := &models.POSTransaction{
		ReceiptNumber: "POS-20260901-000001",
		Currency:      "MYR",
		Subtotal:      models.Cents(1000),
		Total:         models.Cents(1000),
		PaymentMethod: "card",
		Items: []models.POSTransactionItem{
			{ItemName: "剪发", Quantity: 1, LineTotal: models.Cents(1000)},
		},
	}

	got := buildReceiptText(txn)
	if strings.Contains(got, "折扣") {
		t.Fatalf("unexpected discount line in receipt:\n%s", got)
	}
	if !strings.Contains(got, "支付方式 card") {
		t.Fatalf("missing payment method line:\n%s", got)
	}
}
