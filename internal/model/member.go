package model

// Role is the operator's role within the church organization.
type Role string

const (
	RoleTreasurer  Role = "treasurer"
	RolePastor     Role = "pastor"
	RoleSupervisor Role = "supervisor"
)

// Senior reports whether the role records expenses as auto-approved.
func (r Role) Senior() bool {
	return r == RolePastor || r == RoleSupervisor
}

// Supervising reports whether the role may accept submitted reports.
func (r Role) Supervising() bool {
	return r == RoleSupervisor
}

// Actor is the explicit current-user / current-branch context passed into
// every component. Nothing reads it from global state.
type Actor struct {
	Name     string
	Role     Role
	BranchID string
}

// Fidelity is the canonical tithe-fidelity state of a member.
type Fidelity string

const (
	FidelityFaithful     Fidelity = "faithful"
	FidelityNotFaithful  Fidelity = "not_faithful"
	FidelityIntermittent Fidelity = "intermittent"
	FidelityUnknown      Fidelity = "unknown"
)

// Member is a row in the member directory. Read-only for the treasury core.
type Member struct {
	DNI      string
	Name     string
	BranchID string
	Fidelity Fidelity
}

// Branch is a congregational sub-unit with its own treasury scope.
type Branch struct {
	ID     string
	Name   string
	Leader string
}
