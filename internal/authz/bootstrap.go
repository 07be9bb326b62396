package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
// owner 在中间件层直接放行，不依赖策略表
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "cashier",
			Policies: []Policy{
				{Object: "/admin/me", Action: "GET"},
				{Object: "/admin/password", Action: "PUT"},
				{Object: "/admin/authz/me", Action: "GET"},
				{Object: "/pos/transactions", Action: "*"},
				{Object: "/pos/transactions/:id", Action: "GET"},
				{Object: "/pos/receipts/:receipt_number", Action: "GET"},
				{Object: "/pos/vouchers/preview", Action: "POST"},
				{Object: "/admin/customers", Action: "GET"},
				{Object: "/admin/customers", Action: "POST"},
				{Object: "/admin/customers/:id", Action: "GET"},
				{Object: "/admin/catalog-items", Action: "GET"},
				{Object: "/admin/catalog-items/:id", Action: "GET"},
				{Object: "/admin/gift-cards", Action: "GET"},
				{Object: "/admin/gift-cards/:id", Action: "GET"},
				{Object: "/admin/gift-cards/by-code/:code", Action: "GET"},
				{Object: "/admin/session-credits", Action: "GET"},
				{Object: "/admin/session-credits/:id", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "manager",
			Inherits: []string{"cashier"},
			Policies: []Policy{
				{Object: "/pos/transactions/:id/void", Action: "POST"},
				{Object: "/pos/transactions/:id", Action: "DELETE"},
				{Object: "/admin/customers/:id", Action: "*"},
				{Object: "/admin/catalog-items", Action: "*"},
				{Object: "/admin/catalog-items/:id", Action: "*"},
				{Object: "/admin/vouchers", Action: "*"},
				{Object: "/admin/vouchers/:id", Action: "*"},
				{Object: "/admin/gift-cards", Action: "*"},
				{Object: "/admin/gift-cards/:id", Action: "*"},
				{Object: "/admin/gift-cards/:id/topup", Action: "POST"},
				{Object: "/admin/gift-cards/:id/redeem", Action: "POST"},
				{Object: "/admin/gift-cards/:id/cancel", Action: "POST"},
				{Object: "/admin/gift-cards/:id/reactivate", Action: "POST"},
				{Object: "/admin/gift-cards/:id/transactions", Action: "GET"},
				{Object: "/admin/session-credits", Action: "*"},
				{Object: "/admin/session-credits/:id", Action: "*"},
				{Object: "/admin/session-credits/:id/consume", Action: "POST"},
				{Object: "/admin/session-credits/:id/adjust", Action: "POST"},
				{Object: "/admin/session-credits/:id/transactions", Action: "GET"},
				{Object: "/admin/statements/daily", Action: "GET"},
				{Object: "/admin/statements/monthly", Action: "GET"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}
