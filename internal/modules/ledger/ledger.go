package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInsufficientShares is returned when a sale requests more shares than
// the remaining quantity across all lots. The sale is rejected before any
// lot is mutated (all-or-nothing).
var ErrInsufficientShares = errors.New("insufficient shares across tax lots")

// ApplySale consumes lots oldest-first to cover a sale of qty shares.
// Lots are mutated in place: each consumed lot's SoldQuantity is
// incremented. Lot order is preserved and no lot is deleted.
//
// salePrice is optional (0 when unknown); when supplied the returned
// allocations carry realized gains against each consumed lot's basis.
func ApplySale(lots []*TaxLot, qty float64, salePrice float64, now time.Time) ([]SaleAllocation, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("sale quantity must be positive, got %f", qty)
	}

	// FIFO consumption requires purchase-date ascending order
	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].PurchaseDate.Before(lots[j].PurchaseDate)
	})

	// All-or-nothing: verify availability before touching any lot
	var available float64
	for _, lot := range lots {
		available += lot.Remaining()
	}
	if available < qty {
		return nil, fmt.Errorf("%w: requested %.4f, available %.4f", ErrInsufficientShares, qty, available)
	}

	var allocations []SaleAllocation
	remaining := qty

	for _, lot := range lots {
		if remaining <= 0 {
			break
		}
		lotRemaining := lot.Remaining()
		if lotRemaining <= 0 {
			continue
		}

		consume := lotRemaining
		if remaining < consume {
			consume = remaining
		}

		lot.SoldQuantity += consume
		remaining -= consume

		alloc := SaleAllocation{
			LotID:     lot.ID,
			Quantity:  consume,
			CostBasis: lot.CostBasis,
			LongTerm:  holdingDays(lot.PurchaseDate, now) > LongTermHoldingDays,
		}
		if salePrice > 0 {
			alloc.RealizedGain = (salePrice - lot.CostBasis) * consume
		}
		allocations = append(allocations, alloc)
	}

	return allocations, nil
}

// AnalyzeLots produces the FIFO tax analysis for a position's lots:
// per-lot holding period, long/short classification, unrealized gain when
// a current price is supplied, and the aggregated bucket summary.
// Deterministic given the inputs and the supplied clock time.
func AnalyzeLots(ticker string, lots []TaxLot, currentPrice *float64, now time.Time) Analysis {
	sorted := make([]TaxLot, len(lots))
	copy(sorted, lots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PurchaseDate.Before(sorted[j].PurchaseDate)
	})

	analysis := Analysis{
		Ticker:       ticker,
		CurrentPrice: currentPrice,
		Lots:         make([]LotDetail, 0, len(sorted)),
	}

	for _, lot := range sorted {
		remaining := lot.Remaining()
		if remaining <= 0 {
			continue
		}

		days := holdingDays(lot.PurchaseDate, now)
		longTerm := days > LongTermHoldingDays
		totalCost := lot.CostBasis * remaining

		var gain, gainPct float64
		if currentPrice != nil {
			gain = (*currentPrice - lot.CostBasis) * remaining
			if totalCost != 0 {
				gainPct = gain / totalCost * 100
			}
		}

		analysis.Lots = append(analysis.Lots, LotDetail{
			LotID:             lot.ID,
			PurchaseDate:      lot.PurchaseDate,
			RemainingQuantity: remaining,
			CostBasis:         lot.CostBasis,
			TotalCost:         totalCost,
			HoldingDays:       days,
			LongTerm:          longTerm,
			UnrealizedGain:    gain,
			UnrealizedGainPct: gainPct,
			WashSale:          lot.WashSale,
		})

		analysis.TotalQuantity += remaining
		if longTerm {
			analysis.Summary.LongTermQuantity += remaining
			analysis.Summary.LongTermGain += gain
		} else {
			analysis.Summary.ShortTermQuantity += remaining
			analysis.Summary.ShortTermGain += gain
		}
	}

	analysis.Summary.TotalUnrealizedGain = analysis.Summary.ShortTermGain + analysis.Summary.LongTermGain
	return analysis
}

// WeightedAverageCost recomputes a position's average cost basis after a
// new lot is added. This is the canonical update rule used by every
// ingestion path (manual entry, import, lot addition).
//
//	newAvg = (oldQty×oldAvg + addQty×addCost) / (oldQty + addQty)
func WeightedAverageCost(oldQty, oldAvg, addQty, addCost float64) float64 {
	totalQty := oldQty + addQty
	if totalQty <= 0 {
		return 0
	}
	return (oldQty*oldAvg + addQty*addCost) / totalQty
}

// holdingDays counts whole days between purchase and now
func holdingDays(purchase, now time.Time) int {
	return int(now.Sub(purchase).Hours() / 24)
}
