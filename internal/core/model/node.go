package model

import (
	"strings"
	"time"
)

// Role is the organizational tier of a node.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleManager    Role = "manager"
	RoleTeacher    Role = "teacher"
	RoleAdmin      Role = "admin"
	RoleStudent    Role = "student"
	RoleParent     Role = "parent"
	RolePartner    Role = "partner"
	RoleRegulatory Role = "regulatory"
	RoleExternal   Role = "external"
)

var roles = []Role{
	RoleOwner, RoleManager, RoleTeacher, RoleAdmin, RoleStudent,
	RoleParent, RolePartner, RoleRegulatory, RoleExternal,
}

// Roles returns every known role in tier order.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// ParseRole maps free-form role strings onto the closed set. Unknown values become RoleExternal.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range roles {
		if r == known {
			return r
		}
	}
	return RoleExternal
}

// LambdaFactors are the capability inputs of λ, each in [0,1].
type LambdaFactors struct {
	Replaceability float64 `json:"replaceability"`
	Influence      float64 `json:"influence"`
	Expertise      float64 `json:"expertise"`
	Network        float64 `json:"network"`
}

type Node struct {
	ID         string         `json:"id"`
	OrgID      string         `json:"org_id"`
	Name       string         `json:"name"`
	Role       Role           `json:"role"`
	Lambda     float64        `json:"lambda"`
	Factors    *LambdaFactors `json:"factors,omitempty"`
	GrowthRate float64        `json:"growth_rate"`
	Goals      string         `json:"goals,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
