package core

import (
	"fmt"
	"strings"
)

// Receipt is the printable view of one payment.
type Receipt struct {
	Number      string // "#" + year of payment + zero-padded payment ID
	Date        string // "Jan 5, 2024"
	TenantName  string
	AssetName   string
	Month       string
	Amount      Money
	Electricity Money
	LateFine    Money
	ExtraAmount Money
	Total       Money
	TotalWords  string
	Remark      string
	Status      PaymentStatus
	Filename    string
}

// NewReceipt builds the receipt for p. The asset may be nil when the tenant's
// unit no longer exists.
func NewReceipt(p RentPayment, t Tenant, a *Asset) Receipt {
	number := fmt.Sprintf("%d%02d", p.PaymentDate.Year(), p.ID)
	total := GrandTotal(p)
	r := Receipt{
		Number:      "#" + number,
		Date:        p.PaymentDate.Format("Jan 2, 2006"),
		TenantName:  t.Name,
		Month:       p.Month,
		Amount:      p.Amount,
		Electricity: p.Electricity,
		LateFine:    p.LateFine,
		ExtraAmount: p.ExtraAmount,
		Total:       total,
		TotalWords:  AmountInWords(total),
		Remark:      p.Remark,
		Status:      p.Status,
		Filename:    receiptFilename(t.Name, p.PaymentDate.ISO(), number),
	}
	if a != nil {
		r.AssetName = a.Name
	}
	return r
}

func receiptFilename(name, date, number string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "tenant"
	}
	return clean + "-" + date + "-" + number
}
