package reconcile

// Selection returns the row to select after a list is replaced with one of
// newLength rows. Refreshes replace entries wholesale, so selection is kept
// by position only: an in-range prior index survives, anything else falls
// back to the first row. It returns nil when the list is empty.
func Selection(prior *int, newLength int) *int {
	if newLength <= 0 {
		return nil
	}
	if prior != nil && *prior >= 0 && *prior < newLength {
		i := *prior
		return &i
	}
	first := 0
	return &first
}
