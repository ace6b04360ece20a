package permission

import "testing"

func TestTierPredicates(t *testing.T) {
	if !IsOwnerTier(RoleOwner) || !IsOwnerTier(RoleSecurity) {
		t.Error("OWNER 和 SECURITY 应同属 OWNER 级")
	}
	if IsOwnerTier(RoleAdmin) {
		t.Error("ADMIN 不属于 OWNER 级")
	}

	for _, r := range []Role{RoleOwner, RoleSecurity, RoleAdmin} {
		if !IsAdminTier(r) {
			t.Errorf("IsAdminTier(%s) = false, want true", r)
		}
	}
	if IsAdminTier(RoleHeadAdmin) || IsAdminTier(RoleModerator) {
		t.Error("HEADADMIN/MODERATOR 不属于 ADMIN 级")
	}

	for _, r := range []Role{RoleOwner, RoleSecurity, RoleAdmin, RoleHeadAdmin, RoleModerator} {
		if !IsModerationTier(r) {
			t.Errorf("IsModerationTier(%s) = false, want true", r)
		}
	}
	for _, r := range []Role{RoleShopOwner, RoleShopMain, RoleShopStaff, RoleUser} {
		if IsModerationTier(r) {
			t.Errorf("IsModerationTier(%s) = true, want false", r)
		}
	}
}

func TestValid(t *testing.T) {
	for _, r := range All() {
		if !Valid(r) {
			t.Errorf("Valid(%s) = false", r)
		}
	}
	for _, r := range []Role{"", "admin", "SUPERUSER", "owner"} {
		if Valid(r) {
			t.Errorf("Valid(%q) = true, want false", r)
		}
	}
}

func TestValidShopRole(t *testing.T) {
	for _, r := range []Role{RoleShopOwner, RoleShopMain, RoleShopStaff} {
		if !ValidShopRole(r) {
			t.Errorf("ValidShopRole(%s) = false", r)
		}
	}
	for _, r := range []Role{RoleUser, RoleAdmin, RoleModerator, ""} {
		if ValidShopRole(r) {
			t.Errorf("ValidShopRole(%s) = true, want false", r)
		}
	}
}
