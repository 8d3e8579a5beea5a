package core

import "strings"

var (
	ones = [...]string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tens = [...]string{
		"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
	}
)

// AmountInWords spells an amount in the Indian numbering system (lakh, crore)
// as printed on receipts, e.g. "Four Thousand Five Hundred Rupees Only" or
// "Ten Rupees And Fifty Paise Only".
func AmountInWords(m Money) string {
	p := m.Paise
	prefix := ""
	if p < 0 {
		prefix = "Minus "
		p = -p
	}
	rupees, paise := p/100, p%100

	var b strings.Builder
	b.WriteString(prefix)
	if rupees == 0 {
		b.WriteString("Zero")
	} else {
		b.WriteString(integerInWords(rupees))
	}
	b.WriteString(" Rupees")
	if paise > 0 {
		b.WriteString(" And ")
		b.WriteString(integerInWords(paise))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

// integerInWords handles n > 0. Amounts above 99 crore keep stacking crores,
// e.g. "One Hundred Crore".
func integerInWords(n int64) string {
	var parts []string
	if crore := n / 10_000_000; crore > 0 {
		parts = append(parts, integerInWords(crore), "Crore")
		n %= 10_000_000
	}
	if lakh := n / 100_000; lakh > 0 {
		parts = append(parts, belowHundred(lakh), "Lakh")
		n %= 100_000
	}
	if thousand := n / 1000; thousand > 0 {
		parts = append(parts, belowHundred(thousand), "Thousand")
		n %= 1000
	}
	if hundred := n / 100; hundred > 0 {
		parts = append(parts, ones[hundred], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
