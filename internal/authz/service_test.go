package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceStaffWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("shift_lead", "/admin/vouchers/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetStaffRoles(1, []string{"shift_lead"}); err != nil {
		t.Fatalf("set staff roles failed: %v", err)
	}

	allow, err := svc.EnforceStaff(1, "/api/v1/admin/vouchers/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceStaff(1, "/api/v1/admin/vouchers/42", "POST")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}
}

func TestSetStaffRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("front_desk", "/admin/customers", "GET"); err != nil {
		t.Fatalf("grant front_desk policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("accounting", "/admin/statements/daily", "GET"); err != nil {
		t.Fatalf("grant accounting policy failed: %v", err)
	}

	if err := svc.SetStaffRoles(2, []string{"front_desk"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	roles, err := svc.GetStaffRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:front_desk" {
		t.Fatalf("roles want [role:front_desk], got=%v", roles)
	}

	if err := svc.SetStaffRoles(2, []string{"accounting"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err = svc.GetStaffRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:accounting" {
		t.Fatalf("roles want [role:accounting], got=%v", roles)
	}

	allow, err := svc.EnforceStaff(2, "/admin/customers", "GET")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}

	allow, err = svc.EnforceStaff(2, "/admin/statements/daily", "GET")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/vouchers/:id", want: "/admin/vouchers/:id"},
		{in: "/admin/vouchers/:id", want: "/admin/vouchers/:id"},
		{in: "admin/vouchers", want: "/admin/vouchers"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:cashier": true,
		"role:manager": true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetStaffRoles(3, []string{"manager"}); err != nil {
		t.Fatalf("set staff roles failed: %v", err)
	}

	allow, err := svc.EnforceStaff(3, "/pos/transactions", "POST")
	if err != nil {
		t.Fatalf("enforce inherited cashier failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected inherited cashier permission")
	}

	allow, err = svc.EnforceStaff(3, "/admin/staff", "POST")
	if err != nil {
		t.Fatalf("enforce unseeded route failed: %v", err)
	}
	if allow {
		t.Fatalf("expected staff management denied for manager")
	}

	cashierAllow, err := svc.EnforceStaff(3, "/admin/statements/daily", "GET")
	if err != nil {
		t.Fatalf("enforce manager statement failed: %v", err)
	}
	if !cashierAllow {
		t.Fatalf("expected manager statement access")
	}
}
