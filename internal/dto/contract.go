package dto

// MergeFieldsResponse GET /gigs/:id/merge-fields
type MergeFieldsResponse struct {
	GigID  string            `json:"gig_id"`
	Fields map[string]string `json:"fields"`
}

// RenderRequest POST /gigs/:id/contract/render. Template uses {{token}}
// placeholders from the merge-field dictionary.
type RenderRequest struct {
	Template string `json:"template" binding:"required,max=200000"`
}

// RenderResponse merged output plus the mapping that produced it.
type RenderResponse struct {
	GigID  string            `json:"gig_id"`
	Output string            `json:"output"`
	Fields map[string]string `json:"fields"`
}
