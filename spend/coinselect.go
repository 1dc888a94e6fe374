package spend

import (
	"sort"

	"github.com/btcsuite/btcutil"
	"github.com/duskwallet/dwd/account"
	"github.com/go-errors/errors"
)

// ErrInsufficientFunds is returned when the candidate UTXO set cannot
// cover amt plus fee, per §4.G.
var ErrInsufficientFunds = errors.New("insufficient_funds")

// SelectCoins selects UTXOs to cover amt plus a flat fee (both in whole
// satoshi, per §4.G step 4 and §9's wire contract): sort candidates by
// value ascending, accumulate until the total meets or exceeds required.
// Once met, the smallest accumulated coin is dropped if the remaining
// total still covers required, so a single large coin reached late in
// the accumulation doesn't drag in every smaller one ahead of it. Returns
// the chosen inputs and the leftover change.
func SelectCoins(utxos []*account.HistoryRow, amt, fee btcutil.Amount) ([]*account.HistoryRow, btcutil.Amount, error) {
	sorted := append([]*account.HistoryRow(nil), utxos...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	required := amt + fee

	var selected []*account.HistoryRow
	var total btcutil.Amount
	for _, row := range sorted {
		selected = append(selected, row)
		total += btcutil.Amount(row.Value)
		if total >= required {
			break
		}
	}
	if total < required {
		return nil, 0, ErrInsufficientFunds
	}

	if len(selected) > 1 {
		smallest := btcutil.Amount(selected[0].Value)
		if total-smallest >= required {
			selected = selected[1:]
			total -= smallest
		}
	}

	return selected, total - required, nil
}
