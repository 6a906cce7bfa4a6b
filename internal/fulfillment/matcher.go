package fulfillment

// MatchAdjustments aligns adjustments to fulfillment lines by item identity.
// The returned slice has one entry per line; nil means no adjustment applies.
// When several adjustments name the same item the last one wins, and every
// line carrying that item receives it.
func MatchAdjustments(lines []FulfillmentLine, adjustments []LineAdjustment) []*LineAdjustment {
	matched := make([]*LineAdjustment, len(lines))
	if len(adjustments) == 0 {
		return matched
	}
	byItem := make(map[string]*LineAdjustment, len(adjustments))
	for i := range adjustments {
		byItem[adjustments[i].ItemID] = &adjustments[i]
	}
	for i, line := range lines {
		if adj, ok := byItem[line.ItemID]; ok {
			matched[i] = adj
		}
	}
	return matched
}

// ApplyAdjustments mutates lines in place using MatchAdjustments and returns
// the number of lines that received an adjustment.
func ApplyAdjustments(lines []FulfillmentLine, adjustments []LineAdjustment) int {
	applied := 0
	for i, adj := range MatchAdjustments(lines, adjustments) {
		if adj == nil {
			continue
		}
		if adj.Quantity != nil {
			lines[i].Quantity = *adj.Quantity
		}
		if adj.Location != nil {
			lines[i].Location = *adj.Location
		}
		applied++
	}
	return applied
}
