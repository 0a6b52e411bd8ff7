package models

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
)

// 權限等級，數字越大權限越高
var roleLevels = map[Role]int{
	RoleCustomer: 1,
	RoleEmployee: 2,
	RoleManager:  3,
}

// 檢查是否為合法的身分
func ParseRole(s string) (Role, bool) {
	role := Role(s)
	_, ok := roleLevels[role]
	return role, ok
}

// 檢查此身分權限是否大於等於目標身分
func (r Role) AtLeast(target Role) bool {
	return roleLevels[r] >= roleLevels[target]
}
