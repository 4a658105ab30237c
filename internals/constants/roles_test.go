package constants

import "testing"

func TestValidRole(t *testing.T) {
	for _, r := range AllRoles {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false, want true", r)
		}
	}
	for _, r := range []string{"", "superadmin", "OWNER", "guru"} {
		if ValidRole(r) {
			t.Errorf("ValidRole(%q) = true, want false", r)
		}
	}
}

func TestRoleGroups(t *testing.T) {
	if !RoleIn(RoleTeacher, TeacherAndAbove) {
		t.Error("teacher harus masuk TeacherAndAbove")
	}
	if RoleIn(RoleStudent, TeacherAndAbove) {
		t.Error("student tidak boleh masuk TeacherAndAbove")
	}
	if RoleIn(RoleTeacher, OwnerAndAbove) {
		t.Error("teacher tidak boleh masuk OwnerAndAbove")
	}
	if !RoleIn(RoleAdmin, OwnerAndAbove) {
		t.Error("admin harus masuk OwnerAndAbove")
	}
	if RoleIn(RoleParent, StudentOnly) {
		t.Error("parent tidak boleh masuk StudentOnly")
	}
}
