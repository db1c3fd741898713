package cart

const (
	prepBaseMinutes      = 5
	prepLargeOrderBonus  = 2
	prepLargeOrderCutoff = 5
	prepJitterUpperBound = 4 // Intn bound, yields [0,3]
)

// IntnFunc supplies bounded randomness. Injected so production uses math/rand
// while tests pin a fixed value.
type IntnFunc func(n int) int

// EstimatePrepMinutes returns an advisory ETA for kitchen/chatbot messaging:
// 5 minutes base, +1 per distinct item name (multiple sizes of one item count
// once), +2 when more than 5 units total, plus jitter in [0,3]. Always >= 5.
func (c *Cart) EstimatePrepMinutes(intn IntnFunc) int {
	distinct := make(map[string]struct{}, len(c.Lines))
	for _, l := range c.Lines {
		distinct[l.ItemName] = struct{}{}
	}

	minutes := prepBaseMinutes + len(distinct)
	if c.TotalQuantity() > prepLargeOrderCutoff {
		minutes += prepLargeOrderBonus
	}
	if intn != nil {
		minutes += intn(prepJitterUpperBound)
	}
	return minutes
}
