package output

import (
	"bytes"
	"encoding/csv"
)

// CSVDetailedExporter provides raw annual detail for the representative
// (worst, median, best) iterations.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"Path", "Iteration", "Year", "Age", "Market", "StockReturn", "BondReturn", "Inflation",
		"JanPreTax", "JanPostTax", "JanCash",
		"Incomes", "Expenses", "Taxes", "Fees",
		"WithdrawPreTax", "WithdrawPostTax", "WithdrawCash", "DepositPostTax", "DepositCash",
		"Growth", "DecPreTax", "DecPostTax", "DecCash", "Shortfall", "Success",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range report.Representative {
		for _, yr := range r.Iteration.Years {
			row := []string{
				r.Name,
				intToString(r.Iteration.Index),
				intToString(yr.Year),
				intToString(yr.Age),
				yr.Label,
				yr.Market.Stock.String(),
				yr.Market.Bond.String(),
				yr.Market.Inflation.String(),
				yr.Jan.PreTax.Amount.StringFixed(2),
				yr.Jan.PostTax.Amount.StringFixed(2),
				yr.Jan.Cash.Amount.StringFixed(2),
				yr.Incomes.StringFixed(2),
				yr.Expenses.StringFixed(2),
				yr.Taxes.StringFixed(2),
				yr.Fees.Total().StringFixed(2),
				yr.Withdrawals.PreTax.StringFixed(2),
				yr.Withdrawals.PostTax.StringFixed(2),
				yr.Withdrawals.Cash.StringFixed(2),
				yr.Deposits.PostTax.StringFixed(2),
				yr.Deposits.Cash.StringFixed(2),
				yr.Growth.Total().StringFixed(2),
				yr.Dec.PreTax.Amount.StringFixed(2),
				yr.Dec.PostTax.Amount.StringFixed(2),
				yr.Dec.Cash.Amount.StringFixed(2),
				yr.Shortfall.StringFixed(2),
				boolToString(yr.Success),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
