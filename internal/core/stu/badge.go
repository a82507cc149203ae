package stu

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Badge is the display form of a time value.
type Badge struct {
	STU   float64 `json:"stu"`
	Money float64 `json:"money"`
	Label string  `json:"label"`
}

// Formatter renders badges for one locale and currency.
type Formatter struct {
	tag  language.Tag
	unit currency.Unit
}

// NewFormatter parses a BCP 47 locale and an ISO 4217 code.
func NewFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid badge locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid badge currency %q: %w", code, err)
	}
	return &Formatter{tag: tag, unit: unit}, nil
}

// Money formats an amount with the currency symbol for the locale.
func (f *Formatter) Money(amount float64) string {
	return message.NewPrinter(f.tag).Sprint(currency.Symbol(f.unit.Amount(amount)))
}

// Badge builds the label "<stu> STU · <money>". Without a price only the STU part is shown.
func (f *Formatter) Badge(stuValue, omega float64) Badge {
	money := ToMoney(stuValue, omega)
	label := message.NewPrinter(f.tag).Sprintf("%.1f STU", stuValue)
	if omega != 0 {
		label += " · " + f.Money(money)
	}
	return Badge{STU: stuValue, Money: money, Label: label}
}
