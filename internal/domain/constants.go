package domain

const (
	RoleMember     = "MEMBER"
	RolePartner    = "PARTNER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// CanAttend is the single attendance policy predicate: only members appear
// in attendance lists. Checked at the route layer and again inside the
// ledger service.
func CanAttend(role string) bool {
	return role == RoleMember
}

// IsStaff reports whether the role may manage locations.
func IsStaff(role string) bool {
	return role == RolePartner || role == RoleAdmin || role == RoleSuperAdmin
}

// IsAdmin reports whether the role may use the admin surface.
func IsAdmin(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

const (
	NotificationMessage = "message"
	NotificationFollow  = "follow"
	NotificationBilling = "billing"
	NotificationCheckIn = "check-in"
)

const (
	TierBasic   = "basic"
	TierPro     = "pro"
	TierPremium = "premium"
)

const (
	BillingPending = "PENDING"
	BillingPaid    = "PAID"
	BillingFailed  = "FAILED"
)

// Amenities recognized by location editors. Free-form values are rejected
// at the handler layer.
var Amenities = []string{"Showers", "Lockers", "Washrooms", "Changerooms"}

// ValidAmenity reports whether a is one of the recognized amenities.
func ValidAmenity(a string) bool {
	for _, known := range Amenities {
		if a == known {
			return true
		}
	}
	return false
}

const (
	EntityLocation = "location"
	EntityPlan     = "plan"
	EntityUser     = "user"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)
