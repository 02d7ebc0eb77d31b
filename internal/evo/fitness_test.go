package evo

import (
	"math/rand"
	"testing"

	"biomorph/internal/genotype"
	"biomorph/internal/model"
)

func TestBalancedPolicyZeroVector(t *testing.T) {
	var b model.Biomorph
	// depth=0, length=0, asymmetry=0, splits=0 -> 0 + 0 + (10-0) + 0 = 10
	if got := (BalancedPolicy{}).Score(b); got != 10 {
		t.Fatalf("balanced score of zero vector = %v, want 10", got)
	}
}

func TestPoliciesAreNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	policies := []Policy{BalancedPolicy{}, ComplexPolicy{}, SymmetricPolicy{}}

	for i := 0; i < 500; i++ {
		var genes [model.GeneCount]int
		for j := range genes {
			genes[j] = model.GeneMin + rng.Intn(model.GeneMax-model.GeneMin+1)
		}
		b := model.Biomorph{Genes: genes}
		for _, p := range policies {
			if score := p.Score(b); score < 0 {
				t.Fatalf("policy %s produced negative score %v for genes %v", p.Name(), score, genes)
			}
		}
	}
}

func TestComplexPolicyFloorsAtZero(t *testing.T) {
	b := model.Biomorph{}
	b.Genes[model.GeneDepth] = -10
	b.Genes[model.GeneSplits] = -10
	b.Genes[model.GeneLength] = -10
	b.Genes[model.GeneDecay] = -10
	// 2*(-10) + 1.5*(-10) + (10-15) + (10-15) = -45 -> floored to 0
	if got := (ComplexPolicy{}).Score(b); got != 0 {
		t.Fatalf("complex score = %v, want 0", got)
	}
}

func TestResolvePolicyDefaultsToBalanced(t *testing.T) {
	p, err := ResolvePolicy("")
	if err != nil {
		t.Fatalf("resolve default policy: %v", err)
	}
	if p.Name() != DefaultPolicyName {
		t.Fatalf("expected %s, got %s", DefaultPolicyName, p.Name())
	}
}

func TestResolvePolicyUnknown(t *testing.T) {
	if _, err := ResolvePolicy("maximalist"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestListPolicies(t *testing.T) {
	names := ListPolicies()
	want := []string{"balanced", "complex", "symmetric"}
	if len(names) != len(want) {
		t.Fatalf("expected %d policies, got %v", len(want), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected policy %s at position %d, got %v", name, i, names)
		}
	}
}

func TestSwitchingPolicyDoesNotRewriteCachedFitness(t *testing.T) {
	parent := genotype.NewRandom(rand.New(rand.NewSource(5)))
	balanced, _ := ResolvePolicy("balanced")
	batch, err := Offspring(parent, ModeFull, balanced)
	if err != nil {
		t.Fatalf("offspring: %v", err)
	}

	// Resolving another policy afterwards must not touch the batch.
	if _, err := ResolvePolicy("complex"); err != nil {
		t.Fatalf("resolve complex: %v", err)
	}
	for _, child := range batch {
		if child.Fitness != balanced.Score(child) {
			t.Fatal("cached fitness must reflect the policy active at creation")
		}
	}
}
