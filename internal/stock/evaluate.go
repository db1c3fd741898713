// Package stock derives inventory status and expiration alerts from batch
// rows. Status and total quantity are computed here on every read, never
// stored authoritatively.
package stock

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kapehan-pos/api/internal/enum"
)

// LowStockThreshold is the inclusive quantity at or below which an item with
// any stock left is flagged low.
const LowStockThreshold = 5

// Batch is one received lot of an inventory item.
type Batch struct {
	ID         uuid.UUID
	Quantity   int32
	Expiration *time.Time // nil when the row has no usable date
}

// ExpiryAlert is a per-batch expiration notice. Every batch with a valid date
// gets one, however far out the date is; the message distinguishes upcoming
// from already-expired.
type ExpiryAlert struct {
	BatchID  uuid.UUID `json:"batch_id"`
	DaysLeft int       `json:"days_left"` // negative once expired
	Expired  bool      `json:"expired"`
	Message  string    `json:"message"`
}

// Evaluation is the derived view of one inventory item.
type Evaluation struct {
	TotalQuantity int32         `json:"total_quantity"`
	Status        string        `json:"status"`
	Alerts        []ExpiryAlert `json:"alerts"`
}

// Evaluate sums batch quantities into a status and builds expiry alerts.
// A batch without a usable expiration date is skipped and logged; one bad row
// must not fail the whole evaluation. now is injected for testability.
func Evaluate(itemName string, batches []Batch, now time.Time) Evaluation {
	var ev Evaluation
	for _, b := range batches {
		ev.TotalQuantity += b.Quantity

		if b.Expiration == nil {
			log.Printf("WARN: inventory %q: batch %s has no expiration date, skipping alert", itemName, b.ID)
			continue
		}
		ev.Alerts = append(ev.Alerts, alertFor(b, now))
	}
	ev.Status = StatusFor(ev.TotalQuantity)
	return ev
}

// StatusFor classifies a total quantity.
func StatusFor(totalQuantity int32) string {
	switch {
	case totalQuantity == 0:
		return enum.StockStatusOut
	case totalQuantity <= LowStockThreshold:
		return enum.StockStatusLow
	default:
		return enum.StockStatusIn
	}
}

func alertFor(b Batch, now time.Time) ExpiryAlert {
	daysLeft := ceilDays(b.Expiration.Sub(now))
	a := ExpiryAlert{
		BatchID:  b.ID,
		DaysLeft: daysLeft,
		Expired:  daysLeft < 0,
	}
	if a.Expired {
		a.Message = fmt.Sprintf("expired %d day(s) ago", -daysLeft)
	} else {
		a.Message = fmt.Sprintf("expiring in %d day(s)", daysLeft)
	}
	return a
}

// ceilDays converts a duration to whole days, rounding up. A batch expiring
// later today still reads as "0 day(s)" left, not "-1".
func ceilDays(d time.Duration) int {
	const day = 24 * time.Hour
	days := d / day
	if d%day > 0 {
		days++
	}
	return int(days)
}
