package records

import "storeroom_backend/platform/recordstore/formula"

// Matcher resolves a domain field and value into a store filter.
type Matcher interface {
	Match(field string, value any) (formula.Expr, error)
}

// Cond is a filter written against domain field names.
type Cond func(m Matcher) (formula.Expr, error)

// Eq matches records whose field equals value.
func Eq(field string, value any) Cond {
	return func(m Matcher) (formula.Expr, error) {
		return m.Match(field, value)
	}
}

// Not negates c.
func Not(c Cond) Cond {
	return func(m Matcher) (formula.Expr, error) {
		inner, err := c(m)
		if err != nil {
			return nil, err
		}
		return formula.Not(inner), nil
	}
}

// And matches when every condition matches.
func And(conds ...Cond) Cond {
	return combine(formula.And, conds)
}

// Or matches when any condition matches.
func Or(conds ...Cond) Cond {
	return combine(formula.Or, conds)
}

// All matches every record.
func All() Cond {
	return func(Matcher) (formula.Expr, error) { return nil, nil }
}

func combine(join func(...formula.Expr) formula.Expr, conds []Cond) Cond {
	return func(m Matcher) (formula.Expr, error) {
		exprs := make([]formula.Expr, 0, len(conds))
		for _, c := range conds {
			e, err := c(m)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return join(exprs...), nil
	}
}
