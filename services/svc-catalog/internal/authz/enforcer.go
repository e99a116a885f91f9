package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	casbinModel "github.com/casbin/casbin/v3/model"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const (
	// RoleAnonymous is the subject used for requests without a token.
	RoleAnonymous model.Role = "anonymous"

	ResourceProducts   = "products"
	ResourceCategories = "categories"
	ResourceReviews    = "reviews"
	ResourceImages     = "images"
	ResourceSession    = "session"

	ActionRead  = "read"
	ActionWrite = "write"
)

var (
	//go:embed rbac_model.conf
	rbacModel string

	//go:embed rbac_policy.csv
	rbacPolicy string
)

// Enforcer answers role/resource/action questions against the embedded
// RBAC policy, where admin inherits customer and customer inherits anonymous.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := casbinModel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parsing rbac model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("creating enforcer: %w", err)
	}

	if err := loadPolicy(enforcer, rbacPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: enforcer}, nil
}

func (e *Enforcer) Authorize(role model.Role, resource, action string) (bool, error) {
	if role == "" {
		role = RoleAnonymous
	}

	allowed, err := e.enforcer.Enforce(role.String(), resource, action)
	if err != nil {
		return false, fmt.Errorf("enforcing %s %s:%s: %w", role, resource, action, err)
	}

	return allowed, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for number, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for index := range fields {
			fields[index] = strings.TrimSpace(fields[index])
		}

		rule := make([]any, 0, len(fields)-1)
		for _, field := range fields[1:] {
			rule = append(rule, field)
		}

		var err error

		switch fields[0] {
		case "p":
			_, err = enforcer.AddPolicy(rule...)
		case "g":
			_, err = enforcer.AddGroupingPolicy(rule...)
		default:
			err = fmt.Errorf("unknown policy type %q", fields[0])
		}

		if err != nil {
			return fmt.Errorf("loading policy line %d: %w", number+1, err)
		}
	}

	return nil
}
