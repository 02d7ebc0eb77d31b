package evo

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// DefaultPolicyName is used whenever a caller leaves the policy unspecified.
const DefaultPolicyName = "balanced"

var (
	ErrPolicyExists   = errors.New("fitness policy already registered")
	ErrPolicyNotFound = errors.New("fitness policy not found")
)

var policyRegistry = struct {
	mu sync.RWMutex
	m  map[string]Policy
}{
	m: make(map[string]Policy),
}

func init() {
	for _, p := range []Policy{BalancedPolicy{}, ComplexPolicy{}, SymmetricPolicy{}} {
		if err := RegisterPolicy(p); err != nil {
			panic(err)
		}
	}
}

// RegisterPolicy registers a fitness policy under its own name.
func RegisterPolicy(p Policy) error {
	if p == nil {
		return errors.New("policy is required")
	}
	name := p.Name()
	if name == "" {
		return errors.New("policy name is required")
	}

	policyRegistry.mu.Lock()
	defer policyRegistry.mu.Unlock()

	if _, exists := policyRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrPolicyExists, name)
	}
	policyRegistry.m[name] = p
	return nil
}

// ResolvePolicy returns a registered policy by name. An empty name resolves
// to the default policy.
func ResolvePolicy(name string) (Policy, error) {
	if name == "" {
		name = DefaultPolicyName
	}

	policyRegistry.mu.RLock()
	p, ok := policyRegistry.m[name]
	policyRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPolicyNotFound, name)
	}
	return p, nil
}

// ListPolicies returns registered policy names in stable order.
func ListPolicies() []string {
	policyRegistry.mu.RLock()
	defer policyRegistry.mu.RUnlock()

	names := make([]string, 0, len(policyRegistry.m))
	for name := range policyRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
