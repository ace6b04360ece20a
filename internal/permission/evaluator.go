package permission

// CanModifyUser 判定 acting 角色能否变更 target 角色的账号
// (改角色、封禁/解封、认证、删除等都走这一个判定)
// 规则按顺序求值，先命中先生效；"不能改自己" 由服务层在调用前排除
func CanModifyUser(acting, target Role) bool {
	// 1. 任何人不得动 OWNER
	if target == RoleOwner {
		return false
	}
	// 2. OWNER/SECURITY 可以动除 OWNER 外的所有人
	if IsOwnerTier(acting) {
		return true
	}
	// 3. ADMIN 不能动 OWNER/SECURITY
	if acting == RoleAdmin {
		return !IsOwnerTier(target)
	}
	// 4. HEADADMIN 不能动 OWNER/SECURITY/ADMIN
	if acting == RoleHeadAdmin {
		return !IsAdminTier(target)
	}
	// 5. MODERATOR 只能动 USER 和店铺职务角色
	if acting == RoleModerator {
		return target == RoleUser || IsShopRole(target)
	}
	// 6. 其余一律拒绝
	return false
}

// CanAssignRole 判定 acting 能否把 target 角色授予他人
// OWNER 永远不可被授予；SECURITY/ADMIN/HEADADMIN/SHOP_OWNER 仅 OWNER 级可授予
func CanAssignRole(acting, target Role) bool {
	if target == RoleOwner {
		return false
	}
	switch {
	case IsOwnerTier(acting):
		return true
	case acting == RoleAdmin || acting == RoleHeadAdmin:
		switch target {
		case RoleSecurity, RoleAdmin, RoleHeadAdmin, RoleShopOwner:
			return false
		}
		return true
	case acting == RoleModerator:
		return target == RoleUser
	}
	return false
}

// AssignableRoles acting 可授予的全部角色
func AssignableRoles(acting Role) []Role {
	var out []Role
	for _, r := range All() {
		if CanAssignRole(acting, r) {
			out = append(out, r)
		}
	}
	return out
}

// CanManageShop 判定能否管理店铺 (改资料、管商品、管成员)
// 以任职表为准：全局 SHOP_OWNER 角色本身不授予任何店铺的管理权
// staffRole 传空串表示 acting 在该店无任职记录
func CanManageShop(actingRole Role, actingID, ownerID int64, staffRole Role) bool {
	if IsAdminTier(actingRole) {
		return true
	}
	if actingID != 0 && actingID == ownerID {
		return true
	}
	return staffRole == RoleShopOwner || staffRole == RoleShopMain
}

// CanManageComplaint 判定能否处理投诉 (受理/解决/驳回)
// 平台投诉：仅平台管理层
// 店铺投诉：平台管理层之外，另放行该店的 SHOP_OWNER/SHOP_MAIN
func CanManageComplaint(actingRole Role, shopScoped bool, staffRole Role) bool {
	if IsModerationTier(actingRole) {
		return true
	}
	if !shopScoped {
		return false
	}
	return staffRole == RoleShopOwner || staffRole == RoleShopMain
}

// CanModerateShop 判定能否审核/封禁店铺本身 (区别于日常管理)
func CanModerateShop(actingRole Role) bool {
	return IsAdminTier(actingRole)
}
