package domain

import "time"

// UnknownCreator is recorded as the creator of vacancies posted without a session.
const UnknownCreator = "unknown"

// Vacancy is a team posting that users can apply to.
type Vacancy struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatorID    string    `json:"creatorId"`
	Industry     string    `json:"industry"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Goals        string    `json:"goals"`
	WhyJoin      string    `json:"whyJoin"`
	CreatedAt    time.Time `json:"createdAt"`
	Applicants   []User    `json:"applicants"`
}

// HasApplicant reports whether the user already appears among the applicants.
func (v Vacancy) HasApplicant(userID string) bool {
	for i := range v.Applicants {
		if v.Applicants[i].ID == userID {
			return true
		}
	}
	return false
}
