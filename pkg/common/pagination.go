package common

import "gorm.io/gorm"

// Page is a normalized page request. Zero values fall back to page 1 and
// the caller's default size.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size, defaultSize int) Page {
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Scope applies LIMIT/OFFSET for the page to a gorm query.
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Limit(p.Size).Offset(p.Offset())
}

type PaginationResult struct {
	Message     string      `json:"message"`
	Data        interface{} `json:"data"`
	Count       int64       `json:"count"`
	Limit       int         `json:"limit"`
	CurrentPage int         `json:"currentPage"`
	NextPage    int         `json:"nextPage"`
	PrevPage    int         `json:"prevPage"`
	LastPage    int         `json:"lastPage"`
}

// PaginateResponse wraps one page of rows. NextPage and PrevPage are 0 when
// there is no such page.
func PaginateResponse(data interface{}, total int64, p Page, message string) PaginationResult {
	if message == "" {
		message = "success"
	}

	lastPage := 0
	if p.Size > 0 {
		lastPage = int((total + int64(p.Size) - 1) / int64(p.Size))
	}

	res := PaginationResult{
		Message:     message,
		Data:        data,
		Count:       total,
		Limit:       p.Size,
		CurrentPage: p.Number,
		LastPage:    lastPage,
	}
	if p.Number < lastPage {
		res.NextPage = p.Number + 1
	}
	if p.Number > 1 {
		res.PrevPage = p.Number - 1
	}
	return res
}
