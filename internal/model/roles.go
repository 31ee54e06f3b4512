package model

type Role string
type Capability string

const (
	RoleLandlord Role = "LANDLORD"
	RoleAdmin    Role = "ADMIN"
)

const (
	CapPostListings     Capability = "post_listings"
	CapModerateListings Capability = "moderate_listings"
	CapManageUsers      Capability = "manage_users"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleLandlord: {
		CapPostListings: true,
	},
	RoleAdmin: {
		CapPostListings:     true,
		CapModerateListings: true,
		CapManageUsers:      true,
	},
}

// adminLevel is the legacy numeric threshold from the old schema. It is kept
// in exactly one place; everything else asks for capabilities.
const adminLevel = 10

func RoleForLevel(level int) Role {
	if level >= adminLevel {
		return RoleAdmin
	}
	return RoleLandlord
}

func (u *User) Role() Role {
	return RoleForLevel(u.Level)
}

func (u *User) Can(cap Capability) bool {
	caps, ok := roleCapabilities[u.Role()]
	if !ok {
		return false
	}
	return caps[cap]
}
