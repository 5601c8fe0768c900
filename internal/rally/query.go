package rally

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/reqreport/internal/repository"
)

// Expr is a WSAPI query expression. Every binary expression is fully
// parenthesised, as WSAPI requires.
type Expr struct {
	s string
}

func (e Expr) String() string { return e.s }

// IsZero reports whether e is the empty expression.
func (e Expr) IsZero() bool { return e.s == "" }

// Cond builds a single comparison. A nil value renders as null.
func Cond(field, op string, value any) Expr {
	return Expr{s: fmt.Sprintf("(%s %s %s)", field, op, literal(value))}
}

// Or joins expressions left to right: Or(a, b, c) is ((a OR b) OR c).
func Or(exprs ...Expr) Expr { return join("OR", exprs) }

// And joins expressions left to right.
func And(exprs ...Expr) Expr { return join("AND", exprs) }

func join(op string, exprs []Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if e.IsZero() {
			continue
		}
		if out.IsZero() {
			out = e
			continue
		}
		out = Expr{s: "(" + out.s + " " + op + " " + e.s + ")"}
	}
	return out
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return `"` + strings.ReplaceAll(x, `"`, `\"`) + `"`
	default:
		return fmt.Sprint(x)
	}
}

var hasParent = Cond("Parent", "!=", nil)

// ItemFilter renders the broad item filter for q. Under-fetching silently
// drops intermediate tree nodes, so the expression keeps every child item
// that is either in the release or has children of its own.
func ItemFilter(q repository.ItemQuery) Expr {
	var clauses []Expr
	for _, tag := range q.Tags {
		clauses = append(clauses, Cond("Tags.Name", "contains", string(tag)))
	}
	switch {
	case q.FullHierarchy:
		clauses = append(clauses, hasParent)
	case q.Release != "":
		clauses = append(clauses,
			And(hasParent, Cond("Release.Name", "=", q.Release)),
			And(hasParent, Cond("DirectChildrenCount", ">", 0)))
	default:
		clauses = append(clauses, And(hasParent, Cond("DirectChildrenCount", ">", 0)))
	}
	return Or(clauses...)
}

func itemFields(cfg Config) string {
	return strings.Join([]string{
		"ObjectID", "FormattedID", "Name", "Description", "Tags", "Parent",
		"DirectChildrenCount", "Release", "Project",
		cfg.PriorityField, cfg.TestPlanField,
	}, ",")
}

const releaseFields = "ObjectID,Name,Theme,Version,State,ReleaseStartDate,ReleaseDate,PlannedVelocity"
