package pricing

// Tier is a quantity-threshold discount: buy at least MinQuantity tickets,
// get Percent off the whole order. The higher qualifying tier wins.
type Tier struct {
	MinQuantity int
	Percent     int64
}

// Quote is the priced breakdown for an order. All amounts are minor
// currency units (paise).
type Quote struct {
	BasePriceMinor   int64 `json:"base_price_minor"`
	Quantity         int   `json:"quantity"`
	TotalAmountMinor int64 `json:"total_amount_minor"`
	DiscountPercent  int64 `json:"discount_percent"`
	FinalAmountMinor int64 `json:"final_amount_minor"`
}

// CalculateQuote applies the event's discount tiers to a quantity. Tier 2 is
// checked first; a tier only applies when its percent is positive.
func CalculateQuote(basePriceMinor int64, quantity int, tier1, tier2 Tier) Quote {
	var discountPercent int64
	switch {
	case tier2.Percent > 0 && quantity >= tier2.MinQuantity:
		discountPercent = tier2.Percent
	case tier1.Percent > 0 && quantity >= tier1.MinQuantity:
		discountPercent = tier1.Percent
	}

	totalMinor := basePriceMinor * int64(quantity)
	discountMinor := totalMinor * discountPercent / 100

	return Quote{
		BasePriceMinor:   basePriceMinor,
		Quantity:         quantity,
		TotalAmountMinor: totalMinor,
		DiscountPercent:  discountPercent,
		FinalAmountMinor: totalMinor - discountMinor,
	}
}

// SplitPerTicket divides finalAmountMinor across quantity tickets. Division
// truncates, so the first ticket absorbs the remainder and the shares always
// sum back to finalAmountMinor.
func SplitPerTicket(finalAmountMinor int64, quantity int) []int64 {
	if quantity <= 0 {
		return nil
	}
	share := finalAmountMinor / int64(quantity)
	remainder := finalAmountMinor - share*int64(quantity)

	shares := make([]int64, quantity)
	for i := range shares {
		shares[i] = share
	}
	shares[0] += remainder
	return shares
}
