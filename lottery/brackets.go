package lottery

// The bridge index maps (bracket, suffix) pairs to ticket counts so the draw
// can resolve winner counts in constant time instead of scanning tickets.
// Each bracket level gets a disjoint key space via an additive offset of
// repeated ones, so the one-digit suffix 7 at bracket 0 (key 8) can never
// collide with the two-digit suffix 07 at bracket 1 (key 18).

// bracketOffset disambiguates (bracket, suffix) pairs in the shared key space.
var bracketOffset = [Brackets]uint32{1, 11, 111, 1_111, 11_111, 111_111}

// pow10 holds 10^(bracket+1) for suffix extraction.
var pow10 = [Brackets]uint32{10, 100, 1_000, 10_000, 100_000, 1_000_000}

// bracketKey returns the bridge-index key for a number's suffix at a bracket.
func bracketKey(bracket int, number int32) uint32 {
	return bracketOffset[bracket] + uint32(number)%pow10[bracket]
}

// ticketKeys returns the bridge-index keys a ticket contributes to, one per
// bracket level.
func ticketKeys(number int32) [Brackets]uint32 {
	var keys [Brackets]uint32
	for j := 0; j < Brackets; j++ {
		keys[j] = bracketKey(j, number)
	}
	return keys
}

// matchesBracket reports whether number and finalNumber agree on their last
// bracket+1 digits. Agreement at a bracket implies agreement at every lower
// bracket, because the shorter suffix nests inside the longer one.
func matchesBracket(number, finalNumber int32, bracket int) bool {
	return bracketKey(bracket, number) == bracketKey(bracket, finalNumber)
}
