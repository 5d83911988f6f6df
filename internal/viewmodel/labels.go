package viewmodel

// Label maps a closed status enum to pt-BR display text. Unknown codes fall
// back to the raw code so backend additions degrade visibly instead of
// disappearing; empty codes render as the placeholder.
type LabelMap map[string]string

// Lookup resolves code against the map, falling back to the code itself and
// finally to fallback when the code is empty.
func (m LabelMap) Lookup(code, fallback string) string {
	if label, ok := m[code]; ok {
		return label
	}
	if code != "" {
		return code
	}
	return fallback
}

// Label is the common lookup with the default "-" placeholder.
func (m LabelMap) Label(code string) string {
	return m.Lookup(code, "-")
}

var (
	SaleStatusLabels = LabelMap{
		"DRAFT":     "Rascunho",
		"CONFIRMED": "Confirmada",
		"CANCELED":  "Cancelada",
	}

	ProductStatusLabels = LabelMap{
		"IN_STOCK": "Em estoque",
		"RESERVED": "Reservado",
		"SOLD":     "Vendido",
	}

	PromissoryStatusLabels = LabelMap{
		"DRAFT":    "Rascunho",
		"ISSUED":   "Emitida",
		"PAID":     "Quitada",
		"CANCELED": "Cancelada",
	}

	InstallmentStatusLabels = LabelMap{
		"PENDING":  "Pendente",
		"PAID":     "Paga",
		"CANCELED": "Cancelada",
	}

	FinanceStatusLabels = LabelMap{
		"PENDING":  "Pendente",
		"PAID":     "Pago",
		"CANCELED": "Cancelado",
	}

	PaymentTypeLabels = LabelMap{
		"CASH":       "Dinheiro",
		"PIX":        "PIX",
		"CARD":       "Cartão",
		"PROMISSORY": "Promissória",
	}

	WppStatusLabels = LabelMap{
		"PENDING": "Pendente",
		"SENDING": "Enviando",
		"SENT":    "Enviado",
		"FAILED":  "Falhou",
	}

	// TagColors drives the status tag tint across screens.
	TagColors = LabelMap{
		"DRAFT":     "default",
		"CONFIRMED": "blue",
		"ISSUED":    "blue",
		"PENDING":   "orange",
		"PAID":      "green",
		"SOLD":      "green",
		"RESERVED":  "gold",
		"IN_STOCK":  "cyan",
		"CANCELED":  "red",
	}
)
