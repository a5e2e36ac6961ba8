// Package catalog holds the pure rules of the movie catalog: page math,
// client-side ordering and form coercion. Nothing here performs I/O.
package catalog

// TotalPages returns ceil(total/limit), or 0 when either is non-positive.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ShowPagination reports whether page controls should be offered.
func ShowPagination(totalPages int) bool {
	return totalPages > 1
}

// ClampPage forces page into [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// PageAfterDelete returns the page to reload after deleting one row from a
// page that held itemsOnPage rows. Removing the only row of a later page
// steps back one page.
func PageAfterDelete(page, itemsOnPage int) int {
	if page > 1 && itemsOnPage == 1 {
		return page - 1
	}
	if page < 1 {
		return 1
	}
	return page
}
