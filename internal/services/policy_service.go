package services

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

func (w *CasbinEnforcerWrapper) SavePolicy() error {
	return w.enforcer.SavePolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) *PolicyServiceImpl {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) *PolicyServiceImpl {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	_, err := p.enforcer.AddPolicy(role, resource, action)
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	_, err := p.enforcer.RemovePolicy(role, resource, action)
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}

// RoutePolicy is one allow rule: subject, route pattern and method regex
type RoutePolicy struct {
	Subject  string
	Resource string
	Action   string
}

// DefaultPolicies grant each role its business routes.
var DefaultPolicies = []RoutePolicy{
	{"role_candidate", "/user", "GET"},
	{"role_candidate", "/user", "PUT"},
	{"role_candidate", "/user/password", "PATCH"},
	{"role_candidate", "/user/email", "PATCH"},
	{"role_candidate", "/user/sfiaScore", "GET"},
	{"role_candidate", "/user/sfiaScore", "POST"},
	{"role_recruiter", "/user", "GET"},
	{"role_recruiter", "/user", "PUT"},
	{"role_recruiter", "/user/password", "PATCH"},
	{"role_recruiter", "/user/email", "PATCH"},
}

// Seed adds every missing policy. Persistent adapters auto-save each
// addition, so no SavePolicy round trip is made.
func (p *PolicyServiceImpl) Seed(policies []RoutePolicy) error {
	for _, rp := range policies {
		if _, err := p.enforcer.AddPolicy(rp.Subject, rp.Resource, rp.Action); err != nil {
			return fmt.Errorf("seed policy %s %s %s: %w", rp.Subject, rp.Resource, rp.Action, err)
		}
	}
	return nil
}
