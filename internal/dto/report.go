package dto

import "github.com/rsaputelli/PRS/internal/model"

// UnderstaffedRequest GET /reports/understaffed
type UnderstaffedRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// UnderstaffedItem one gig from vw_understaffed_gigs with the band roles
// still open.
type UnderstaffedItem struct {
	model.UnderstaffedGig
	MissingRoles []string `json:"missing_roles"`
}

// Report1099Request GET /reports/1099
type Report1099Request struct {
	Year int `form:"year" binding:"required,min=2000,max=2100"`
}

// Report1099Response both 1099 views for a tax year.
type Report1099Response struct {
	Year    int                    `json:"year"`
	Rollup  []model.Rollup1099     `json:"rollup"`
	Details []model.PayeeTotal1099 `json:"details"`
}
