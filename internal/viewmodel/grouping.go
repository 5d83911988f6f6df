package viewmodel

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ContractGroup is the per-promissory rollup of its installments, the unit
// the collections screen works with. Identity fields copied from the
// promissory stay nil when the lookup misses — zero is a valid id elsewhere
// and must not be confused with "unknown".
type ContractGroup struct {
	PromissoryID int64 `json:"promissory_id"`

	TotalInstallments int `json:"total_installments"`
	Pending           int `json:"pending"`
	Paid              int `json:"paid"`
	Canceled          int `json:"canceled"`

	// NextDueDate is the earliest due date among PENDING installments,
	// absent when none are pending. CANCELED rows never qualify.
	NextDueDate    *string         `json:"next_due_date"`
	TotalAmountSum decimal.Decimal `json:"total_amount_sum"`
	PaidAmountSum  decimal.Decimal `json:"paid_amount_sum"`

	Items []InstallmentRow `json:"items"`

	ClientID         *int64  `json:"client_id,omitempty"`
	ProductID        *int64  `json:"product_id,omitempty"`
	PromissoryStatus *string `json:"promissory_status,omitempty"`
}

// GroupByContract partitions a flat installment list by promissory id and
// rolls each partition up. Installments without a promissory reference are
// excluded entirely: they cannot be attributed to a contract. A promissory
// referenced by installments but missing from the lookup yields a group with
// unresolved identity fields rather than an error.
//
// Groups come back ordered by next due date ascending, undated groups after
// all dated ones, ties broken by promissory id ascending. That ordering is
// the collections priority list staff work from and must not change.
func GroupByContract(installments []InstallmentRow, promissories map[int64]PromissoryRow) []ContractGroup {
	byID := make(map[int64]*ContractGroup)

	for _, inst := range installments {
		if inst.PromissoryID == 0 {
			continue
		}

		g, ok := byID[inst.PromissoryID]
		if !ok {
			g = &ContractGroup{
				PromissoryID:   inst.PromissoryID,
				TotalAmountSum: decimal.Zero,
				PaidAmountSum:  decimal.Zero,
			}
			byID[inst.PromissoryID] = g
		}

		g.Items = append(g.Items, inst)
		g.TotalInstallments++

		switch inst.Status {
		case "PENDING":
			g.Pending++
		case "PAID":
			g.Paid++
		case "CANCELED":
			g.Canceled++
		}

		g.TotalAmountSum = g.TotalAmountSum.Add(CoerceDecimal(inst.Amount))
		g.PaidAmountSum = g.PaidAmountSum.Add(CoerceDecimal(inst.PaidAmount))

		if inst.Status == "PENDING" && inst.DueDate != "" {
			if g.NextDueDate == nil {
				due := inst.DueDate
				g.NextDueDate = &due
			} else if cur, okCur := parseDate(*g.NextDueDate); okCur {
				if nxt, okNxt := parseDate(inst.DueDate); okNxt && nxt.Before(cur) {
					due := inst.DueDate
					g.NextDueDate = &due
				}
			}
		}
	}

	for id, g := range byID {
		prom, ok := promissories[id]
		if !ok {
			continue
		}
		clientID := prom.ClientID
		status := prom.Status
		g.ClientID = &clientID
		g.ProductID = prom.ProductID
		g.PromissoryStatus = &status
	}

	groups := make([]ContractGroup, 0, len(byID))
	for _, g := range byID {
		sort.Slice(g.Items, func(i, j int) bool { return g.Items[i].Number < g.Items[j].Number })
		groups = append(groups, *g)
	}

	sort.Slice(groups, func(i, j int) bool {
		di, iDated := nextDueTime(groups[i])
		dj, jDated := nextDueTime(groups[j])
		switch {
		case iDated && jDated && !di.Equal(dj):
			return di.Before(dj)
		case iDated != jDated:
			return iDated
		default:
			return groups[i].PromissoryID < groups[j].PromissoryID
		}
	})

	return groups
}

func nextDueTime(g ContractGroup) (time.Time, bool) {
	if g.NextDueDate == nil {
		return time.Time{}, false
	}
	return parseDate(*g.NextDueDate)
}
