package services

// PageGap is the sentinel a page window uses where page numbers are elided
const PageGap = -1

// maxPlainPages is the largest page count rendered without gap markers
const maxPlainPages = 7

// PageWindow computes the pager entries for a paginated view: up to five
// page numbers centred on the current page, clamped to [1, totalPages], with
// first/last pages (and gap markers) added when they fall outside the
// window. Never longer than seven entries.
func PageWindow(currentPage, totalPages int) []int {
	if totalPages < 1 {
		return nil
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	if totalPages <= maxPlainPages {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	switch {
	case currentPage <= 4:
		return []int{1, 2, 3, 4, 5, PageGap, totalPages}
	case currentPage >= totalPages-3:
		return []int{1, PageGap, totalPages - 4, totalPages - 3, totalPages - 2, totalPages - 1, totalPages}
	default:
		return []int{1, PageGap, currentPage - 1, currentPage, currentPage + 1, PageGap, totalPages}
	}
}

// TotalPages returns the page count for a result set
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}
