package domain

// Role is the single authorization tag carried by an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Authority is a fine-grained permission derived from a role.
type Authority string

const (
	AuthorityProfileRead    Authority = "profile:read"
	AuthorityOrdersManage   Authority = "orders:manage"
	AuthorityProductsManage Authority = "products:manage"
	AuthorityUsersManage    Authority = "users:manage"
)

// Valid reports whether the role is a known member of the enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Authorities maps the closed role enumeration to its permission set.
// Unknown roles carry no authorities.
func (r Role) Authorities() []Authority {
	switch r {
	case RoleUser:
		return []Authority{AuthorityProfileRead, AuthorityOrdersManage}
	case RoleAdmin:
		return []Authority{
			AuthorityProfileRead,
			AuthorityOrdersManage,
			AuthorityProductsManage,
			AuthorityUsersManage,
		}
	}
	return nil
}
