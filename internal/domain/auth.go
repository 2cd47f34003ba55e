package domain

// Role differentiates customers from support agents.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
)

// Role derives the caller role from the agent flag.
func (u User) Role() Role {
	if u.IsAgent {
		return RoleAgent
	}
	return RoleCustomer
}
