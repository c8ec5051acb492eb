package query

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Predicate selects a subset of documents. BSON renders it as a Mongo filter
// and Match evaluates it against a decoded document; the two must agree.
type Predicate interface {
	BSON() bson.M
	Match(doc bson.M) bool
}

type and []Predicate

// And joins predicates with logical AND. No operands means no constraint.
func And(preds ...Predicate) Predicate {
	out := make(and, 0, len(preds))
	for _, p := range preds {
		if p == nil {
			continue
		}
		if nested, ok := p.(and); ok {
			out = append(out, nested...)
			continue
		}
		out = append(out, p)
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// All is the open predicate.
func All() Predicate { return and{} }

func (a and) BSON() bson.M {
	switch len(a) {
	case 0:
		return bson.M{}
	case 1:
		return a[0].BSON()
	}
	clauses := make(bson.A, 0, len(a))
	for _, p := range a {
		clauses = append(clauses, p.BSON())
	}
	return bson.M{"$and": clauses}
}

func (a and) Match(doc bson.M) bool {
	for _, p := range a {
		if !p.Match(doc) {
			return false
		}
	}
	return true
}

type or []Predicate

// Or joins predicates with logical OR. Called with nothing it imposes no
// constraint, so callers only build it from a non-empty operand list.
func Or(preds ...Predicate) Predicate {
	out := make(or, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return All()
	case 1:
		return out[0]
	}
	return out
}

func (o or) BSON() bson.M {
	clauses := make(bson.A, 0, len(o))
	for _, p := range o {
		clauses = append(clauses, p.BSON())
	}
	return bson.M{"$or": clauses}
}

func (o or) Match(doc bson.M) bool {
	for _, p := range o {
		if p.Match(doc) {
			return true
		}
	}
	return false
}

type contains struct {
	field string
	term  string
}

// Contains is a case-insensitive substring match. The term is matched
// literally; regex metacharacters in user input are escaped.
func Contains(field, term string) Predicate {
	return contains{field: field, term: term}
}

func (c contains) BSON() bson.M {
	return bson.M{c.field: bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(c.term), Options: "i"}}}
}

func (c contains) Match(doc bson.M) bool {
	needle := strings.ToLower(c.term)
	return anyElement(Lookup(doc, c.field), func(v interface{}) bool {
		s, ok := v.(string)
		return ok && strings.Contains(strings.ToLower(s), needle)
	})
}

type equals struct {
	field string
	value interface{}
}

// Equals is an exact match.
func Equals(field string, value interface{}) Predicate {
	return equals{field: field, value: value}
}

func (e equals) BSON() bson.M {
	return bson.M{e.field: e.value}
}

func (e equals) Match(doc bson.M) bool {
	return anyElement(Lookup(doc, e.field), func(v interface{}) bool {
		return Compare(v, e.value) == 0
	})
}

type between struct {
	field    string
	min, max *float64
}

// Between is an inclusive numeric range; a nil bound is open.
func Between(field string, min, max *float64) Predicate {
	if min == nil && max == nil {
		return All()
	}
	return between{field: field, min: min, max: max}
}

func (b between) BSON() bson.M {
	cond := bson.M{}
	if b.min != nil {
		cond["$gte"] = *b.min
	}
	if b.max != nil {
		cond["$lte"] = *b.max
	}
	return bson.M{b.field: cond}
}

func (b between) Match(doc bson.M) bool {
	return anyElement(Lookup(doc, b.field), func(v interface{}) bool {
		f, ok := ToFloat(v)
		if !ok {
			return false
		}
		if b.min != nil && f < *b.min {
			return false
		}
		if b.max != nil && f > *b.max {
			return false
		}
		return true
	})
}

type in struct {
	field  string
	values []interface{}
}

// In is set membership. For array fields any element may match.
func In(field string, values ...interface{}) Predicate {
	return in{field: field, values: values}
}

func (i in) BSON() bson.M {
	return bson.M{i.field: bson.M{"$in": bson.A(i.values)}}
}

func (i in) Match(doc bson.M) bool {
	return anyElement(Lookup(doc, i.field), func(v interface{}) bool {
		for _, want := range i.values {
			if Compare(v, want) == 0 {
				return true
			}
		}
		return false
	})
}

// anyElement applies fn to v, or to each element when v is an array.
func anyElement(v interface{}, fn func(interface{}) bool) bool {
	switch arr := v.(type) {
	case bson.A:
		for _, e := range arr {
			if fn(e) {
				return true
			}
		}
		return false
	case []interface{}:
		for _, e := range arr {
			if fn(e) {
				return true
			}
		}
		return false
	case []string:
		for _, e := range arr {
			if fn(e) {
				return true
			}
		}
		return false
	}
	return fn(v)
}
