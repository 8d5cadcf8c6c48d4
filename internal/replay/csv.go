package replay

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteLedger(f, ledger)
}

func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		"index",
		"time_utc",
		"grid_load",
		"household_load",
		"load_pct",
		"is_peak",
		"light",
		"tier",
		"price",
		"window_grid_points",
		"window_household_points",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Time),
			fmtFloat(r.GridLoad),
			fmtFloat(r.HouseholdLoad),
			fmtFloat(r.LoadPct),
			strconv.FormatBool(r.IsPeak),
			string(r.Light),
			string(r.Tier),
			fmtFloat(r.Price),
			strconv.Itoa(r.WindowGridPoints),
			strconv.Itoa(r.WindowHouseholdPoints),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
