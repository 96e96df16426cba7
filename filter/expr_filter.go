package filter

import (
	"errors"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/vm"
)

// ExprFilter represents a compiled expr filter
type ExprFilter struct {
	program *vm.Program
	expr    string
}

// Compile compiles a filter expression. The expression must evaluate to a
// boolean; unknown identifiers are rejected at compile time. Compiled
// programs are cached per expression.
//
//	Transport == "Cable" and hasLanguage("en") and not (lower(Name) contains "shopping")
func Compile(expression string) (*ExprFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression", Position: -1}
	}

	if program, ok := programs.get(expression); ok {
		return &ExprFilter{program: program, expr: expression}, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(newEnv(Channel{})),
		expr.AsBool(),
	)
	if err != nil {
		compErr := &CompilationError{
			Expression: expression,
			Reason:     err.Error(),
			Position:   -1,
			Err:        err,
		}
		var fileErr *file.Error
		if errors.As(err, &fileErr) {
			compErr.Reason = fileErr.Message
			compErr.Position = fileErr.Column
		}
		return nil, compErr
	}
	programs.put(expression, program)

	return &ExprFilter{
		program: program,
		expr:    expression,
	}, nil
}

// Match evaluates the filter against a channel
func (f *ExprFilter) Match(ch Channel) (bool, error) {
	result, err := expr.Run(f.program, newEnv(ch))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expr,
			StationID:  ch.Station.StationID,
			Reason:     err.Error(),
			Err:        err,
		}
	}
	matched, _ := result.(bool)
	return matched, nil
}

// Apply returns the channels the filter matches, in input order.
func (f *ExprFilter) Apply(channels []Channel) ([]Channel, error) {
	var matched []Channel
	for _, ch := range channels {
		ok, err := f.Match(ch)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, ch)
		}
	}
	return matched, nil
}

// String returns the original expression
func (f *ExprFilter) String() string {
	return f.expr
}

func newEnv(ch Channel) map[string]any {
	station := ch.Station
	languages := station.BroadcastLanguage

	var city, state, country, postalCode string
	if b := station.Broadcaster; b != nil {
		city, state, country, postalCode = b.City, b.State, b.Country, b.PostalCode
	}

	return map[string]any{
		// Channel data
		"Lineup":           ch.Lineup,
		"Transport":        ch.Transport,
		"Channel":          ch.Channel,
		"StationID":        station.StationID,
		"Name":             station.Name,
		"CallSign":         station.CallSign,
		"Affiliate":        station.Affiliate,
		"Languages":        languages,
		"IsCommercialFree": station.IsCommercialFree,
		"HasLogo":          len(station.StationLogo) > 0,
		"City":             city,
		"State":            state,
		"Country":          country,
		"PostalCode":       postalCode,

		"hasLanguage": func(lang string) bool {
			return slices.ContainsFunc(languages, func(l string) bool {
				return strings.EqualFold(l, lang)
			})
		},
	}
}
