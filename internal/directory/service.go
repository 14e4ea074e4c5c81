package directory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// Members provides in-memory lookup over the member directory. The treasury
// core only reads it; updates come from outside (e.g. the tithe import
// command rewriting members.csv).
type Members struct {
	members []model.Member
	byDNI   map[string]model.Member
}

// NewMembers creates a Members service from a slice.
func NewMembers(members []model.Member) *Members {
	byDNI := make(map[string]model.Member, len(members))
	for _, m := range members {
		byDNI[m.DNI] = m
	}
	return &Members{members: members, byDNI: byDNI}
}

// LoadMembers reads directory/members.csv from a repo root.
func LoadMembers(repoRoot string) (*Members, error) {
	path := MembersPath(repoRoot)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening member directory: %w", err)
	}
	defer f.Close()

	members, err := ReadMembers(f)
	if err != nil {
		return nil, fmt.Errorf("reading member directory: %w", err)
	}
	return NewMembers(members), nil
}

// All returns all members in file order.
func (s *Members) All() []model.Member {
	return s.members
}

// Get returns a member by dni.
func (s *Members) Get(dni string) (model.Member, bool) {
	m, ok := s.byDNI[dni]
	return m, ok
}

// Exists reports whether a dni is in the directory.
func (s *Members) Exists(dni string) bool {
	_, ok := s.byDNI[dni]
	return ok
}

// Branches provides in-memory lookup over the branch directory.
type Branches struct {
	branches []model.Branch
	byID     map[string]model.Branch
}

// NewBranches creates a Branches service from a slice.
func NewBranches(branches []model.Branch) *Branches {
	byID := make(map[string]model.Branch, len(branches))
	for _, b := range branches {
		byID[b.ID] = b
	}
	return &Branches{branches: branches, byID: byID}
}

// LoadBranches reads directory/branches.csv from a repo root.
func LoadBranches(repoRoot string) (*Branches, error) {
	path := BranchesPath(repoRoot)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening branch directory: %w", err)
	}
	defer f.Close()

	branches, err := ReadBranches(f)
	if err != nil {
		return nil, fmt.Errorf("reading branch directory: %w", err)
	}
	return NewBranches(branches), nil
}

// All returns all branches in file order.
func (s *Branches) All() []model.Branch {
	return s.branches
}

// Get returns a branch by id.
func (s *Branches) Get(id string) (model.Branch, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// MembersPath returns <repoRoot>/directory/members.csv.
func MembersPath(repoRoot string) string {
	return filepath.Join(repoRoot, "directory", "members.csv")
}

// BranchesPath returns <repoRoot>/directory/branches.csv.
func BranchesPath(repoRoot string) string {
	return filepath.Join(repoRoot, "directory", "branches.csv")
}
