package catalog

// Ellipsis marks a gap in the pager window
const Ellipsis = 0

const maxVisiblePages = 7

// PageNumbers returns the pager window for current out of total pages.
// Gaps are marked with Ellipsis. Up to 7 pages are shown in full; beyond
// that the first and last page are always present with the current page's
// neighborhood between them.
func PageNumbers(current, total int) []int {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	if total <= maxVisiblePages {
		return pageRange(1, total)
	}

	switch {
	case current <= 4:
		return append(pageRange(1, 5), Ellipsis, total)
	case current >= total-3:
		return append([]int{1, Ellipsis}, pageRange(total-4, total)...)
	default:
		pages := []int{1, Ellipsis}
		pages = append(pages, pageRange(current-1, current+1)...)
		return append(pages, Ellipsis, total)
	}
}

func pageRange(from, to int) []int {
	pages := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		pages = append(pages, p)
	}
	return pages
}
