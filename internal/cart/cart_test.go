package cart

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func latteItem() Item {
	return Item{
		ID:   uuid.New(),
		Name: "Cafe Latte",
		Pricing: []PriceOption{
			{Label: "Medium", Price: dec("100")},
			{Label: "Large", Price: dec("150")},
		},
	}
}

func baseItem() Item {
	return Item{
		ID:   uuid.New(),
		Name: "Brewed Coffee",
		Pricing: []PriceOption{
			{Label: "base", Price: dec("80")},
			{Label: "Large", Price: dec("95")},
		},
	}
}

// --- AddLine ---

func TestAddLine_CapturesUnitPriceAtAddTime(t *testing.T) {
	item := latteItem()
	c := &Cart{}

	line, err := c.AddLine(item, "Large", 2)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if !line.UnitPrice.Equal(dec("150")) {
		t.Errorf("unit price: got %s, want 150", line.UnitPrice)
	}

	// A later catalog price change must not reprice the existing line.
	item.Pricing[1].Price = dec("999")
	if !c.Lines[0].UnitPrice.Equal(dec("150")) {
		t.Errorf("unit price after catalog change: got %s, want 150", c.Lines[0].UnitPrice)
	}
}

func TestAddLine_DefaultSizePrefersBase(t *testing.T) {
	c := &Cart{}
	line, err := c.AddLine(baseItem(), "", 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if line.SelectedSize != "base" {
		t.Errorf("size: got %q, want %q", line.SelectedSize, "base")
	}
	if !line.UnitPrice.Equal(dec("80")) {
		t.Errorf("unit price: got %s, want 80", line.UnitPrice)
	}
}

func TestAddLine_DefaultSizeFallsBackToFirstDeclared(t *testing.T) {
	c := &Cart{}
	line, err := c.AddLine(latteItem(), "", 1)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if line.SelectedSize != "Medium" {
		t.Errorf("size: got %q, want %q", line.SelectedSize, "Medium")
	}
}

func TestAddLine_MergesSameItemAndSize(t *testing.T) {
	item := latteItem()
	c := &Cart{}
	if _, err := c.AddLine(item, "Large", 1); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if _, err := c.AddLine(item, "Large", 2); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if len(c.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(c.Lines))
	}
	if c.Lines[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", c.Lines[0].Quantity)
	}

	// Same item, different size stays a separate line.
	if _, err := c.AddLine(item, "Medium", 1); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if len(c.Lines) != 2 {
		t.Errorf("lines: got %d, want 2", len(c.Lines))
	}
}

func TestAddLine_Errors(t *testing.T) {
	c := &Cart{}
	if _, err := c.AddLine(latteItem(), "Venti", 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("unknown size: got %v, want ErrInvalidSize", err)
	}
	if _, err := c.AddLine(latteItem(), "Large", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero qty: got %v, want ErrInvalidQuantity", err)
	}
	if _, err := c.AddLine(Item{ID: uuid.New(), Name: "ghost"}, "", 1); !errors.Is(err, ErrNoPricing) {
		t.Errorf("no pricing: got %v, want ErrNoPricing", err)
	}
}

// --- UpdateQuantity / UpdateSize / Void ---

func TestUpdateQuantity_ClampsAtOne(t *testing.T) {
	c := &Cart{}
	line, _ := c.AddLine(latteItem(), "Large", 2)

	if err := c.UpdateQuantity(line.ID, -5); err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if c.Lines[0].Quantity != 1 {
		t.Errorf("quantity: got %d, want 1", c.Lines[0].Quantity)
	}

	if err := c.UpdateQuantity(line.ID, 3); err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if c.Lines[0].Quantity != 4 {
		t.Errorf("quantity: got %d, want 4", c.Lines[0].Quantity)
	}

	if err := c.UpdateQuantity(uuid.New(), 1); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("unknown line: got %v, want ErrLineNotFound", err)
	}
}

func TestUpdateSize_ReResolvesUnitPrice(t *testing.T) {
	item := latteItem()
	c := &Cart{}
	line, _ := c.AddLine(item, "Medium", 1)

	if err := c.UpdateSize(line.ID, item, "Large"); err != nil {
		t.Fatalf("UpdateSize: %v", err)
	}
	if c.Lines[0].SelectedSize != "Large" || !c.Lines[0].UnitPrice.Equal(dec("150")) {
		t.Errorf("line after resize: got %s @ %s, want Large @ 150",
			c.Lines[0].SelectedSize, c.Lines[0].UnitPrice)
	}

	if err := c.UpdateSize(line.ID, item, "Venti"); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("unknown size: got %v, want ErrInvalidSize", err)
	}
}

func TestVoid_IsIdempotent(t *testing.T) {
	c := &Cart{}
	line, _ := c.AddLine(latteItem(), "Large", 1)
	other, _ := c.AddLine(baseItem(), "", 1)

	c.Void(line.ID)
	if len(c.Lines) != 1 {
		t.Fatalf("lines after void: got %d, want 1", len(c.Lines))
	}
	c.Void(line.ID) // second void of the same line: no-op
	if len(c.Lines) != 1 || c.Lines[0].ID != other.ID {
		t.Errorf("second void must not remove anything else")
	}
}

// --- Totals ---

func TestTotals_NoDiscount(t *testing.T) {
	c := &Cart{}
	if _, err := c.AddLine(latteItem(), "Large", 2); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	got := c.Totals()
	if !got.Subtotal.Equal(dec("300")) {
		t.Errorf("subtotal: got %s, want 300", got.Subtotal)
	}
	if !got.Discount.IsZero() {
		t.Errorf("discount: got %s, want 0", got.Discount)
	}
	if !got.Total.Equal(dec("300")) {
		t.Errorf("total: got %s, want 300", got.Total)
	}
}

func TestTotals_SeniorDiscount(t *testing.T) {
	c := &Cart{DiscountApplied: true}
	if _, err := c.AddLine(latteItem(), "Large", 2); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	got := c.Totals()
	if !got.Discount.Equal(dec("30")) {
		t.Errorf("discount: got %s, want 30", got.Discount)
	}
	if !got.Total.Equal(dec("270")) {
		t.Errorf("total: got %s, want 270", got.Total)
	}
}

func TestTotals_AlwaysSumOfLines(t *testing.T) {
	c := &Cart{}
	item := latteItem()
	line, _ := c.AddLine(item, "Medium", 3)
	_, _ = c.AddLine(baseItem(), "", 2)

	_ = c.UpdateQuantity(line.ID, -1)
	_ = c.UpdateSize(line.ID, item, "Large")

	want := decimal.Zero
	for _, l := range c.Lines {
		want = want.Add(l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	if got := c.Totals().Subtotal; !got.Equal(want) {
		t.Errorf("subtotal: got %s, want %s", got, want)
	}
}

// --- Prep estimate ---

func TestEstimatePrepMinutes(t *testing.T) {
	item := latteItem()
	fixed := func(n int) int { return 0 }

	tests := []struct {
		name  string
		build func() *Cart
		intn  IntnFunc
		want  int
	}{
		{
			name: "single item",
			build: func() *Cart {
				c := &Cart{}
				_, _ = c.AddLine(item, "Large", 1)
				return c
			},
			intn: fixed,
			want: 6, // 5 base + 1 distinct
		},
		{
			name: "two sizes of one item count once",
			build: func() *Cart {
				c := &Cart{}
				_, _ = c.AddLine(item, "Large", 1)
				_, _ = c.AddLine(item, "Medium", 1)
				return c
			},
			intn: fixed,
			want: 6,
		},
		{
			name: "large order bonus",
			build: func() *Cart {
				c := &Cart{}
				_, _ = c.AddLine(item, "Large", 6)
				return c
			},
			intn: fixed,
			want: 8, // 5 + 1 + 2
		},
		{
			name: "jitter added",
			build: func() *Cart {
				c := &Cart{}
				_, _ = c.AddLine(item, "Large", 1)
				return c
			},
			intn: func(n int) int { return n - 1 },
			want: 9, // 5 + 1 + 3
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build().EstimatePrepMinutes(tt.intn); got != tt.want {
				t.Errorf("minutes: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimatePrepMinutes_BoundedWithRealRNG(t *testing.T) {
	c := &Cart{}
	_, _ = c.AddLine(latteItem(), "Large", 1)

	// nil intn means no jitter; with jitter the result stays in [6,9].
	base := c.EstimatePrepMinutes(nil)
	if base != 6 {
		t.Fatalf("base: got %d, want 6", base)
	}
	for i := 0; i < 4; i++ {
		i := i
		got := c.EstimatePrepMinutes(func(n int) int { return i % n })
		if got < 6 || got > 9 {
			t.Errorf("minutes out of range: %d", got)
		}
	}
}
