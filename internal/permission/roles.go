// Package permission 平台角色层级与权限判定
// 纯函数包：服务层和能力查询接口共用同一套规则，避免两端各写一份
package permission

// Role 平台级角色标签
type Role string

const (
	RoleOwner     Role = "OWNER"     // 平台所有者
	RoleSecurity  Role = "SECURITY"  // 安全员 (与 OWNER 同权)
	RoleAdmin     Role = "ADMIN"     // 管理员
	RoleHeadAdmin Role = "HEADADMIN" // 高级运营
	RoleModerator Role = "MODERATOR" // 审核员
	RoleShopOwner Role = "SHOP_OWNER"
	RoleShopMain  Role = "SHOP_MAIN"
	RoleShopStaff Role = "SHOP_STAFF"
	RoleUser      Role = "USER"
)

// All 返回全部角色，顺序固定 (能力查询接口依赖稳定顺序)
func All() []Role {
	return []Role{
		RoleOwner, RoleSecurity, RoleAdmin, RoleHeadAdmin, RoleModerator,
		RoleShopOwner, RoleShopMain, RoleShopStaff, RoleUser,
	}
}

// Valid 是否为合法角色
func Valid(r Role) bool {
	switch r {
	case RoleOwner, RoleSecurity, RoleAdmin, RoleHeadAdmin, RoleModerator,
		RoleShopOwner, RoleShopMain, RoleShopStaff, RoleUser:
		return true
	}
	return false
}

// IsOwnerTier OWNER 级 (OWNER 与 SECURITY 同权)
func IsOwnerTier(r Role) bool {
	return r == RoleOwner || r == RoleSecurity
}

// IsAdminTier ADMIN 及以上
func IsAdminTier(r Role) bool {
	return IsOwnerTier(r) || r == RoleAdmin
}

// IsModerationTier 具备平台管理权限的全部角色 (含 HEADADMIN / MODERATOR)
func IsModerationTier(r Role) bool {
	return IsAdminTier(r) || r == RoleHeadAdmin || r == RoleModerator
}

// IsShopRole 店铺职务类角色
func IsShopRole(r Role) bool {
	return r == RoleShopOwner || r == RoleShopMain || r == RoleShopStaff
}

// ValidShopRole 是否为合法的店铺内职务 (任职表只收这三种)
func ValidShopRole(r Role) bool {
	return IsShopRole(r)
}
