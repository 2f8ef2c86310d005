package view

const (
	// maxFullPages is the largest page count shown without a window.
	maxFullPages = 10
	// pageWindow is the width of the sliding page-number window.
	pageWindow = 9
)

// PageCount returns how many pages of pageSize rows hold total rows. An
// empty listing still has one page.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// PageWindow returns the page numbers to display for a pager positioned at
// current out of total pages. Up to ten pages are all shown; beyond that a
// nine-wide window is centered on current and clamped to [1, total].
func PageWindow(current, total int) []int {
	if total <= 0 {
		return nil
	}
	current = min(max(current, 1), total)
	if total <= maxFullPages {
		return pageRange(1, total)
	}
	start := current - pageWindow/2
	start = max(start, 1)
	end := start + pageWindow - 1
	if end > total {
		end = total
		start = end - pageWindow + 1
	}
	return pageRange(start, end)
}

func pageRange(start, end int) []int {
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
