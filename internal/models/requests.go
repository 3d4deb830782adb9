package models

// UploadCandidateRequest carries the metadata fields of the multipart upload
// form. The CV file itself travels alongside as a multipart file header.
type UploadCandidateRequest struct {
	Name            string `form:"name" validate:"required,max=255"`
	Email           string `form:"email" validate:"omitempty,email,max=255"`
	Phone           string `form:"phone" validate:"omitempty,max=50"`
	PositionApplied string `form:"position_applied" validate:"required,max=255"`
	Skills          string `form:"skills"`
	YearsExperience int    `form:"years_experience" validate:"gte=0,lte=60"`
	EducationLevel  string `form:"education_level" validate:"omitempty,max=255"`
}

type CandidateListResponse struct {
	Items   []Candidate `json:"items"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}
