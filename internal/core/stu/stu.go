// Package stu converts real hours to standard time units and STU to money.
package stu

// ToSTU is hours × λ.
func ToSTU(hours, lambda float64) float64 {
	return hours * lambda
}

// ToMoney is stu × ω.
func ToMoney(stu, omega float64) float64 {
	return stu * omega
}

// FromMoney inverts ToMoney. ω = 0 yields 0.
func FromMoney(money, omega float64) float64 {
	if omega == 0 {
		return 0
	}
	return money / omega
}

// Omega is the org-wide price per STU, revenue / totalSTU, or 0 without invested STU.
func Omega(revenue, totalSTU float64) float64 {
	if totalSTU == 0 {
		return 0
	}
	return revenue / totalSTU
}
