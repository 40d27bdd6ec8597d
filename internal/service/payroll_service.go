package service

import (
	"regexp"
	"strings"

	"github.com/dafibh/arthaku/internal/domain"
	"github.com/shopspring/decimal"
)

// leading numeric prefix with optional exponent, so "7,5 jam" reads as 7.5
// and "1e1" as 10
var decimalPrefixRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

var (
	hundred      = decimal.NewFromInt(100)
	workingHours = decimal.NewFromInt(domain.MonthlyWorkingHours)
)

// ParseDecimal reads a user-typed decimal that may use ',' or '.' as the
// separator. Unparseable input yields zero.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	prefix := decimalPrefixRegex.FindString(s)
	if prefix == "" {
		return decimal.Zero
	}
	if digits := strings.TrimLeft(prefix, "+-"); strings.HasPrefix(digits, ".") {
		prefix = prefix[:len(prefix)-len(digits)] + "0" + digits
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ComputeSalary derives the pay slip figures. Every monetary step is floored
// to whole currency units.
func ComputeSalary(in domain.SalaryInputs) domain.SalaryResult {
	basic := decimal.NewFromInt(in.BasicSalary.Int64())
	shift := decimal.NewFromInt(in.ShiftAllowance.Int64())
	housing := decimal.NewFromInt(in.HousingAllowance.Int64())
	base := basic.Add(housing)

	hourlyRate := decimal.Zero
	if base.IsPositive() {
		hourlyRate = base.Div(workingHours).Floor()
	}

	overtimePay := ParseDecimal(in.OvertimeHours).Mul(hourlyRate).Floor()
	regularIncome := basic.Add(shift).Add(housing).Add(overtimePay)
	bonusAmount := base.Mul(ParseDecimal(in.BonusMultiplier)).Floor()
	grossIncome := regularIncome.Add(bonusAmount)
	taxAmount := grossIncome.Mul(ParseDecimal(in.TaxRate)).Div(hundred).Floor()
	totalDeductions := taxAmount.Add(decimal.NewFromInt(in.OtherDeductions.Int64()))
	takeHomePay := grossIncome.Sub(totalDeductions)

	return domain.SalaryResult{
		HourlyRate:      hourlyRate.IntPart(),
		OvertimePay:     overtimePay.IntPart(),
		RegularIncome:   regularIncome.IntPart(),
		BonusAmount:     bonusAmount.IntPart(),
		GrossIncome:     grossIncome.IntPart(),
		TaxAmount:       taxAmount.IntPart(),
		TotalDeductions: totalDeductions.IntPart(),
		TakeHomePay:     takeHomePay.IntPart(),
	}
}
