package source

// Pager tracks page-by-page navigation over a remote listing. It only holds
// cursors; callers fetch with FetchPage and report back through Commit, so
// the fetch can run off the input loop.
type Pager struct {
	cursors []*string
	page    int
	hasNext bool
	loaded  bool
}

// NewPager returns a pager positioned before the first page.
func NewPager() *Pager {
	return &Pager{cursors: []*string{nil}}
}

// Page returns the 0-based index of the loaded page.
func (p *Pager) Page() int { return p.page }

// HasNext reports whether a page follows the loaded one.
func (p *Pager) HasNext() bool { return p.hasNext }

// HasPrev reports whether a page precedes the loaded one.
func (p *Pager) HasPrev() bool { return p.page > 0 }

// Current returns the target and cursor that reload the current page.
func (p *Pager) Current() (int, *string) {
	return p.page, p.cursors[p.page]
}

// Next returns the target and cursor of the following page.
func (p *Pager) Next() (int, *string, bool) {
	if !p.loaded || !p.hasNext || p.page+1 >= len(p.cursors) {
		return 0, nil, false
	}
	return p.page + 1, p.cursors[p.page+1], true
}

// Prev returns the target and cursor of the preceding page.
func (p *Pager) Prev() (int, *string, bool) {
	if p.page == 0 {
		return 0, nil, false
	}
	return p.page - 1, p.cursors[p.page-1], true
}

// Commit records that target was loaded with the given next cursor.
func (p *Pager) Commit(target int, next *string, hasNext bool) {
	if target < 0 || target >= len(p.cursors) {
		return
	}
	p.page = target
	p.loaded = true
	p.hasNext = hasNext
	p.cursors = p.cursors[:target+1]
	if next != nil {
		p.cursors = append(p.cursors, next)
	}
}

// Reset forgets every cursor.
func (p *Pager) Reset() {
	*p = *NewPager()
}
