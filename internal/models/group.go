package models

// GroupMember links a member email to its user record.
type GroupMember struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

// Group gives its members shared visibility over each other's transactions.
// Authorization only ever reads the member emails.
type Group struct {
	Name    string        `json:"name"`
	Members []GroupMember `json:"members"`
}

// MemberEmails returns the emails of all group members, in member order.
func (g *Group) MemberEmails() []string {
	emails := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		emails = append(emails, m.Email)
	}
	return emails
}
