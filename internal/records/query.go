package records

import "fmt"

// Matches evaluates the query conditions against a record.
func (q Query) Matches(r Record) bool {
	for _, c := range q.Where {
		if !c.matches(r) {
			return false
		}
	}
	return true
}

func (c Condition) matches(r Record) bool {
	left, ok := r[c.FieldName]
	if !ok {
		return false
	}
	right := c.Value
	if c.ValueField != "" {
		if right, ok = r[c.ValueField]; !ok {
			return false
		}
	}

	switch c.Operator {
	case OpExactMatch:
		if lf, ok := toFloat(left); ok {
			if rf, ok := toFloat(right); ok {
				return lf == rf
			}
		}
		return fmt.Sprint(left) == fmt.Sprint(right)
	case OpLessThanOrEqualTo:
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		return lok && rok && lf <= rf
	}
	return false
}
