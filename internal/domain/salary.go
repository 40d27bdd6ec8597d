package domain

// SalaryInputs holds the payroll components of one pay slip. Hours, the bonus
// multiplier and the tax rate are kept as typed text so either decimal
// separator can be used.
type SalaryInputs struct {
	BasicSalary      Amount `json:"basicSalary"`
	ShiftAllowance   Amount `json:"shiftAllowance"`
	HousingAllowance Amount `json:"housingAllowance"`
	OvertimeHours    string `json:"otHoursStr"`
	BonusMultiplier  string `json:"bonusMultiplierStr"`
	TaxRate          string `json:"taxRateStr"`
	OtherDeductions  Amount `json:"otherDeductions"`
}

// SalaryResult is derived deterministically from SalaryInputs
type SalaryResult struct {
	HourlyRate      int64 `json:"hourlyRate"`
	OvertimePay     int64 `json:"overtimePay"`
	RegularIncome   int64 `json:"regularIncome"`
	BonusAmount     int64 `json:"bonusAmount"`
	GrossIncome     int64 `json:"grossIncome"`
	TaxAmount       int64 `json:"taxAmount"`
	TotalDeductions int64 `json:"totalDeductions"`
	TakeHomePay     int64 `json:"takeHomePay"`
}

// MonthlyWorkingHours is the divisor used to derive an hourly rate from a monthly wage
const MonthlyWorkingHours = 173
