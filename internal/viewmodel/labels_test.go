package viewmodel

import "testing"

func TestLabelKnownCodes(t *testing.T) {
	cases := []struct {
		m    LabelMap
		code string
		want string
	}{
		{SaleStatusLabels, "CONFIRMED", "Confirmada"},
		{ProductStatusLabels, "IN_STOCK", "Em estoque"},
		{PromissoryStatusLabels, "PAID", "Quitada"},
		{InstallmentStatusLabels, "PENDING", "Pendente"},
		{FinanceStatusLabels, "PAID", "Pago"},
		{PaymentTypeLabels, "PROMISSORY", "Promissória"},
		{WppStatusLabels, "FAILED", "Falhou"},
	}
	for _, tc := range cases {
		if got := tc.m.Label(tc.code); got != tc.want {
			t.Fatalf("Label(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestLabelFallsBackToRawCode(t *testing.T) {
	if got := SaleStatusLabels.Label("REFUNDED"); got != "REFUNDED" {
		t.Fatalf("unknown code must render as itself, got %q", got)
	}
}

func TestLabelEmptyCodeUsesPlaceholder(t *testing.T) {
	if got := SaleStatusLabels.Label(""); got != "-" {
		t.Fatalf("got %q", got)
	}
	if got := SaleStatusLabels.Lookup("", ""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestEveryEnumValueHasALabel(t *testing.T) {
	enums := map[string][]string{
		"sale":        {"DRAFT", "CONFIRMED", "CANCELED"},
		"product":     {"IN_STOCK", "RESERVED", "SOLD"},
		"promissory":  {"DRAFT", "ISSUED", "PAID", "CANCELED"},
		"installment": {"PENDING", "PAID", "CANCELED"},
		"finance":     {"PENDING", "PAID", "CANCELED"},
		"payment":     {"CASH", "PIX", "CARD", "PROMISSORY"},
		"wpp":         {"PENDING", "SENDING", "SENT", "FAILED"},
	}
	maps := map[string]LabelMap{
		"sale":        SaleStatusLabels,
		"product":     ProductStatusLabels,
		"promissory":  PromissoryStatusLabels,
		"installment": InstallmentStatusLabels,
		"finance":     FinanceStatusLabels,
		"payment":     PaymentTypeLabels,
		"wpp":         WppStatusLabels,
	}
	for domain, values := range enums {
		for _, v := range values {
			if _, ok := maps[domain][v]; !ok {
				t.Fatalf("%s enum value %s has no label", domain, v)
			}
		}
	}
}
