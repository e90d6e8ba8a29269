package domain

// MaxGroupMembers caps how many users an admin may place into one pack.
const MaxGroupMembers = 4

// Group is a pack formed by an admin. Members are snapshots taken when the
// group was created and are not refreshed afterwards.
type Group struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members []User `json:"members"`
}

// HasMember reports whether a member snapshot with the given id is present.
func (g Group) HasMember(userID string) bool {
	for i := range g.Members {
		if g.Members[i].ID == userID {
			return true
		}
	}
	return false
}
