package domain

// User is a registered member. Optional back-references are empty when unset.
type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	ContactNumber    string `json:"contactNumber"`
	ResumeURL        string `json:"resumeUrl,omitempty"`
	GroupID          string `json:"groupId,omitempty"`
	CreatedVacancyID string `json:"createdVacancyId,omitempty"`
}

// HasGroup reports whether the user has been assigned to a pack.
func (u User) HasGroup() bool {
	return u.GroupID != ""
}
