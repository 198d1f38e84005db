package model

// Role of a user account.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleRequester Role = "REQUESTER"
	RoleBuyer     Role = "BUYER"
)

// Department codes.
const (
	DeptWorks          = "DTX"
	DeptEquipment      = "DEM"
	DeptLogistics      = "DAL"
	DeptAdministrative = "DAF"
)

// ValidDepartment reports whether code is a known department.
func ValidDepartment(code string) bool {
	switch code {
	case DeptWorks, DeptEquipment, DeptLogistics, DeptAdministrative:
		return true
	}
	return false
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleRequester, RoleBuyer:
		return true
	}
	return false
}

// NormalizeDepartment applies the role rules: buyers belong to logistics,
// admins have no department, requesters keep theirs.
func NormalizeDepartment(role Role, department string) string {
	switch role {
	case RoleBuyer:
		return DeptLogistics
	case RoleAdmin:
		return ""
	}
	return department
}

// User table users.
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"         json:"username"`
	FullName     string `gorm:"type:varchar(150);not null"                     json:"full_name"`
	Email        string `gorm:"type:varchar(255)"                              json:"email"`
	Phone        string `gorm:"type:varchar(20)"                               json:"phone"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'REQUESTER'"  json:"role"`
	Department   string `gorm:"type:varchar(3)"                                json:"department"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (User) TableName() string { return "users" }

// Capabilities are resolved once per actor and passed into operations.
type Capabilities struct {
	CanCreateRequest    bool `json:"can_create_request"`
	CanValidate         bool `json:"can_validate"`
	CanCreateEngagement bool `json:"can_create_engagement"`
}

// CapabilitiesFor maps a role to its capabilities.
func CapabilitiesFor(role Role) Capabilities {
	switch role {
	case RoleAdmin, RoleBuyer:
		return Capabilities{CanCreateRequest: true, CanValidate: true, CanCreateEngagement: true}
	case RoleRequester:
		return Capabilities{CanCreateRequest: true}
	}
	return Capabilities{}
}
