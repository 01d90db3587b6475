package videoquery

// Page describes where a listing window sits relative to the full result set.
// NextPage is nil when no records exist past the current window; PreviousPage
// is nil on the first page.
type Page struct {
	TotalVideos  int  `json:"totalVideos"`
	CurrentPage  int  `json:"currentPage"`
	Limit        int  `json:"limit"`
	NextPage     *int `json:"nextPage"`
	PreviousPage *int `json:"previousPage"`
}

// NewPage computes the pagination indicators for a listing response.
func NewPage(total, page, limit int) Page {
	p := Page{
		TotalVideos: total,
		CurrentPage: page,
		Limit:       limit,
	}

	if page*limit < total {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		previous := page - 1
		p.PreviousPage = &previous
	}

	return p
}
