package lottery

// CalculateTotalPrice computes the cost of a bulk ticket purchase.
//
// The discount grows with volume: each ticket past the first shaves
// 1/discountDivisor off the average unit price, so a single ticket costs
// exactly unitPrice and count == discountDivisor would be free at the margin.
// Integer division truncates toward zero, in the buyer's favor.
func CalculateTotalPrice(discountDivisor, unitPrice int64, count int) (int64, error) {
	if count <= 0 {
		return 0, ErrNoTickets
	}
	if int64(count) > discountDivisor {
		return 0, ErrBulkExceedsDivisor
	}
	n := int64(count)
	return unitPrice * n * (discountDivisor - n + 1) / discountDivisor, nil
}

// applyBps returns floor(amount * bps / TotalBasisPoints). Splitting amount
// into quotient and remainder keeps every intermediate product within int64
// for any amount, as long as bps stays at or below TotalBasisPoints.
func applyBps(amount, bps int64) int64 {
	return amount/TotalBasisPoints*bps + amount%TotalBasisPoints*bps/TotalBasisPoints
}
