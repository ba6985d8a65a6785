package domain

import (
	"fmt"
	"time"
)

// RoleKind identifies which profile a user carries.
type RoleKind string

const (
	RoleCandidate RoleKind = "Candidate"
	RoleRecruiter RoleKind = "Recruiter"
)

// ParseRoleKind maps a stored role name onto a RoleKind.
func ParseRoleKind(name string) (RoleKind, error) {
	switch RoleKind(name) {
	case RoleCandidate:
		return RoleCandidate, nil
	case RoleRecruiter:
		return RoleRecruiter, nil
	}
	return "", fmt.Errorf("%w: %q", ErrRoleNotFound, name)
}

// CandidateProfile holds the candidate-only fields
type CandidateProfile struct {
	Portfolio  *string
	AboutMe    *string
	Domicile   *string
	SfiaScores map[string]int
}

// RecruiterProfile holds the recruiter-only fields
type RecruiterProfile struct {
	Position string
	Company  string
}

// Role is a tagged variant: exactly one of Candidate or Recruiter is set,
// matching Kind. It is resolved once per request after authentication.
type Role struct {
	Kind      RoleKind
	Candidate *CandidateProfile
	Recruiter *RecruiterProfile
}

// NewCandidateRole wraps a candidate profile.
func NewCandidateRole(p CandidateProfile) Role {
	return Role{Kind: RoleCandidate, Candidate: &p}
}

// NewRecruiterRole wraps a recruiter profile.
func NewRecruiterRole(p RecruiterProfile) Role {
	return Role{Kind: RoleRecruiter, Recruiter: &p}
}

// PolicySubject is the casbin subject for the role.
func (r Role) PolicySubject() string {
	switch r.Kind {
	case RoleCandidate:
		return "role_candidate"
	case RoleRecruiter:
		return "role_recruiter"
	}
	return "role_unknown"
}

// UserProfile is a user together with its resolved role
type UserProfile struct {
	User User
	Role Role
}

// ProfileView is the JSON shape of GET /user.
type ProfileView struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        RoleKind  `json:"role"`
	Portfolio   *string   `json:"portofolio,omitempty"`
	AboutMe     *string   `json:"aboutMe,omitempty"`
	Domicile    *string   `json:"domicile,omitempty"`
	Position    string    `json:"position,omitempty"`
	Company     string    `json:"company,omitempty"`
}

// View flattens the profile for the response body.
func (p UserProfile) View() ProfileView {
	v := ProfileView{
		Name:        p.User.Name,
		Email:       p.User.Email,
		DateOfBirth: p.User.DateOfBirth,
		PhoneNumber: p.User.PhoneNumber,
		Role:        p.Role.Kind,
	}
	switch p.Role.Kind {
	case RoleCandidate:
		if c := p.Role.Candidate; c != nil {
			v.Portfolio, v.AboutMe, v.Domicile = c.Portfolio, c.AboutMe, c.Domicile
		}
	case RoleRecruiter:
		if r := p.Role.Recruiter; r != nil {
			v.Position, v.Company = r.Position, r.Company
		}
	}
	return v
}
