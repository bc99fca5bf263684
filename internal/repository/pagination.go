package repository

// PageQuery is a resolved page window.
type PageQuery struct {
	Offset int
	Limit  int
}
