package output

// DefaultAssumptions lists key modeling assumptions rendered when a report
// carries none of its own.
var DefaultAssumptions = []string{
	"Each iteration follows its own market path; iterations never share state",
	"Withdrawals, deposits and fees settle once per year before growth",
	"Taxes are paid in the year after the income is realized",
	"Cash earns no return",
}

func assumptionsOf(report *Report) []string {
	if len(report.Assumptions) == 0 {
		return DefaultAssumptions
	}
	return report.Assumptions
}
