package postgres

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/adequity/brandflow-search/internal/domain/search/predicate"
)

// argList collects positional query arguments and hands out $n placeholders.
type argList struct {
	args []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return "$" + strconv.Itoa(len(a.args))
}

// Column names reaching the lowerer already passed schema validation; the
// pattern check is a second line of defense against identifier injection.
var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func column(name string) (string, error) {
	if !identRe.MatchString(name) {
		return "", fmt.Errorf("invalid column name %q", name)
	}
	// Rows are always aliased t; qualifying avoids ambiguity under joins.
	return "t." + name, nil
}

// lower translates a predicate into a SQL boolean expression over alias t,
// appending arguments to a.
func lower(p predicate.Predicate, a *argList) (string, error) {
	switch pr := p.(type) {
	case predicate.MatchAll:
		return "TRUE", nil

	case predicate.FieldEquals:
		col, err := column(pr.Field)
		if err != nil {
			return "", err
		}
		return col + " = " + a.add(pr.Value), nil

	case predicate.FieldRange:
		col, err := column(pr.Field)
		if err != nil {
			return "", err
		}
		var parts []string
		if pr.Lo != nil {
			op := ">="
			if pr.LoExclusive {
				op = ">"
			}
			parts = append(parts, col+" "+op+" "+a.add(pr.Lo))
		}
		if pr.Hi != nil {
			op := "<="
			if pr.HiExclusive {
				op = "<"
			}
			parts = append(parts, col+" "+op+" "+a.add(pr.Hi))
		}
		if len(parts) == 0 {
			return "TRUE", nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil

	case predicate.FieldIn:
		return lowerIn(pr.Field, pr.Values, false, a)

	case predicate.FieldNotIn:
		return lowerIn(pr.Field, pr.Values, true, a)

	case predicate.TextMatch:
		col, err := column(pr.Field)
		if err != nil {
			return "", err
		}
		pattern := escapeLike(pr.Value)
		switch pr.Mode {
		case predicate.MatchPrefix:
			pattern += "%"
		case predicate.MatchSuffix:
			pattern = "%" + pattern
		default:
			pattern = "%" + pattern + "%"
		}
		return col + " ILIKE " + a.add(pattern), nil

	case predicate.And:
		return lowerGroup(pr.Preds, " AND ", a)

	case predicate.Or:
		return lowerGroup(pr.Preds, " OR ", a)

	default:
		return "", fmt.Errorf("unsupported predicate %T", p)
	}
}

func lowerIn(field string, values []any, negate bool, a *argList) (string, error) {
	col, err := column(field)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		if negate {
			return "TRUE", nil
		}
		return "FALSE", nil
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = a.add(v)
	}
	op := " IN ("
	if negate {
		op = " NOT IN ("
	}
	return col + op + strings.Join(placeholders, ", ") + ")", nil
}

func lowerGroup(preds []predicate.Predicate, sep string, a *argList) (string, error) {
	if len(preds) == 0 {
		return "TRUE", nil
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		expr, err := lower(p, a)
		if err != nil {
			return "", err
		}
		parts[i] = expr
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// escapeLike escapes LIKE metacharacters so user text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
