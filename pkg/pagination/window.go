package pagination

// Radius is the number of pages shown on each side of the current page.
const Radius = 2

// Button is one entry of a page window.
type Button struct {
	// Page is the zero-based page number.
	Page int

	// GapBefore is true when pages were skipped between the previous button
	// and this one.
	GapBefore bool

	// Current marks the page being shown.
	Current bool
}

// Label is the one-based number shown to users.
func (b Button) Label() int {
	return b.Page + 1
}

// Window returns the page buttons for a list: the first page, the last page
// and Radius pages around current, ascending. It returns nil when there is at
// most one page.
func Window(current, totalPages int) []Button {
	if totalPages <= 1 {
		return nil
	}

	pages := []int{0}
	lo := max(1, current-Radius)
	hi := min(totalPages-2, current+Radius)
	for p := lo; p <= hi; p++ {
		pages = append(pages, p)
	}
	pages = append(pages, totalPages-1)

	buttons := make([]Button, 0, len(pages))
	prev := -1
	for _, p := range pages {
		if p <= prev {
			continue
		}
		buttons = append(buttons, Button{
			Page:      p,
			GapBefore: prev >= 0 && p > prev+1,
			Current:   p == current,
		})
		prev = p
	}
	return buttons
}

// CanPrevious reports whether a previous-page control is enabled.
func CanPrevious(current int) bool {
	return current > 0
}

// CanNext reports whether a next-page control is enabled.
func CanNext(current, totalPages int) bool {
	return current < totalPages-1
}
