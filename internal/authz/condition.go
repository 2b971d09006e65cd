package authz

import (
	"strings"
	"sync"

	"github.com/hashicorp/go-bexpr"
	lru "github.com/hashicorp/golang-lru/v2"
)

const conditionCacheSize = 256

var (
	conditionCacheOnce sync.Once
	conditionCache     *lru.Cache[string, *bexpr.Evaluator]
)

func conditionEvaluators() *lru.Cache[string, *bexpr.Evaluator] {
	conditionCacheOnce.Do(func() {
		// lru.New only fails for a non-positive size.
		conditionCache, _ = lru.New[string, *bexpr.Evaluator](conditionCacheSize)
	})
	return conditionCache
}

// EvaluateCondition evaluates a go-bexpr boolean expression against a
// principal's attributes (e.g. `user_type == "MERCHANT"` or
// `"AUDITOR" in roles`). An empty expression means no constraint and is
// true; an invalid expression or failed evaluation denies access rather
// than erroring. Compiled evaluators are cached because route conditions
// are a small fixed set evaluated on every request.
func EvaluateCondition(expr string, attrs map[string]any) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}

	cache := conditionEvaluators()
	evaluator, ok := cache.Get(expr)
	if !ok {
		compiled, err := bexpr.CreateEvaluator(expr)
		if err != nil {
			// Invalid expression syntax: deny.
			return false
		}
		cache.Add(expr, compiled)
		evaluator = compiled
	}

	matches, err := evaluator.Evaluate(attrs)
	if err != nil {
		// Missing attribute or type mismatch: deny.
		return false
	}
	return matches
}
