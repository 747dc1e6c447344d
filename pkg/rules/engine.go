package rules

import (
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-xlsform/pkg/form"
)

// DefaultBlankRunThreshold is the shortest run of blank rows reported as a
// blank block.
const DefaultBlankRunThreshold = 20

// Engine runs a rule set over models.
type Engine struct {
	rules          []Rule
	custom         bool
	disabled       map[string]struct{}
	blankThreshold int
	labelPolicy    *bluemonday.Policy
	logger         *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces the built-in rule set.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = append([]Rule(nil), rules...)
		e.custom = true
	}
}

// WithDisabled skips the rules with the given codes.
func WithDisabled(codes ...string) Option {
	return func(e *Engine) {
		for _, code := range codes {
			if code == "" {
				continue
			}
			e.disabled[code] = struct{}{}
		}
	}
}

// WithBlankRunThreshold sets the blank-block threshold. Non-positive values are
// ignored.
func WithBlankRunThreshold(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.blankThreshold = n
		}
	}
}

// WithLabelPolicy replaces the markup policy labels are checked against.
func WithLabelPolicy(policy *bluemonday.Policy) Option {
	return func(e *Engine) {
		if policy != nil {
			e.labelPolicy = policy
		}
	}
}

// WithLogger attaches a logger for per-rule debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs an engine with the built-in rules unless WithRules is
// supplied.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		disabled:       make(map[string]struct{}),
		blankThreshold: DefaultBlankRunThreshold,
		labelPolicy:    LabelPolicy(),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if !e.custom {
		e.rules = Builtins(e.blankThreshold, e.labelPolicy)
	}
	return e
}

// Rules returns the active rules in execution order.
func (e *Engine) Rules() []Rule {
	if e == nil {
		return nil
	}
	out := make([]Rule, 0, len(e.rules))
	for _, rule := range e.rules {
		if _, skip := e.disabled[rule.Code()]; skip {
			continue
		}
		out = append(out, rule)
	}
	return out
}

// Run applies every enabled rule to m and returns the sorted findings.
func (e *Engine) Run(m *Model) []Finding {
	return e.run(m, func(string) bool { return true })
}

// RunCodes applies only the enabled rules whose code is listed.
func (e *Engine) RunCodes(m *Model, codes ...string) []Finding {
	only := codeSet(codes)
	return e.run(m, func(code string) bool {
		_, ok := only[code]
		return ok
	})
}

// RunExcept applies the enabled rules whose code is not listed.
func (e *Engine) RunExcept(m *Model, codes ...string) []Finding {
	skip := codeSet(codes)
	return e.run(m, func(code string) bool {
		_, ok := skip[code]
		return !ok
	})
}

func (e *Engine) run(m *Model, keep func(code string) bool) []Finding {
	if e == nil || m == nil {
		return nil
	}
	var out []Finding
	for _, rule := range e.Rules() {
		if !keep(rule.Code()) {
			continue
		}
		found := rule.Check(m)
		if len(found) > 0 {
			e.logger.Debug("rule reported findings",
				zap.String("rule", rule.Code()),
				zap.Int("count", len(found)),
			)
		}
		out = append(out, found...)
	}
	Sort(out)
	return out
}

func codeSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// Check is shorthand for Run(NewModel(f)).
func (e *Engine) Check(f *form.Form) []Finding {
	return e.Run(NewModel(f))
}

// Builtins returns the built-in rules in their default order.
func Builtins(blankThreshold int, policy *bluemonday.Policy) []Rule {
	return []Rule{
		RuleFunc{ID: CodeNesting, Fn: checkNesting},
		RuleFunc{ID: CodeMissingName, Fn: checkMissingName},
		RuleFunc{ID: CodeDuplicateName, Fn: checkDuplicateNames},
		RuleFunc{ID: CodeInvalidName, Fn: checkInvalidNames},
		RuleFunc{ID: CodeNamingConvention, Fn: checkNamingConvention},
		RuleFunc{ID: CodeUnknownType, Fn: checkUnknownTypes},
		RuleFunc{ID: CodeMissingLabel, Fn: checkMissingLabels},
		RuleFunc{ID: CodeMissingChoicesSheet, Fn: checkMissingChoicesSheet},
		RuleFunc{ID: CodeUnresolvedList, Fn: checkUnresolvedLists},
		RuleFunc{ID: CodeOrphanedList, Fn: checkOrphanedLists},
		RuleFunc{ID: CodeDuplicateChoiceName, Fn: checkDuplicateChoices},
		RuleFunc{ID: CodeChoiceSpace, Fn: checkChoiceSpaces},
		RuleFunc{ID: CodeCircularDependency, Fn: checkCycles},
		RuleFunc{ID: CodeUnknownReference, Fn: checkUnknownReferences},
		RuleFunc{ID: CodeFormulaSyntax, Fn: checkFormulaSyntax},
		RuleFunc{ID: CodeSettingsMissingKey, Fn: checkSettingsKeys},
		RuleFunc{ID: CodeSettingsVersion, Fn: checkSettingsVersion},
		BlankBlocks(blankThreshold),
		RuleFunc{ID: CodeDuplicateColumn, Fn: checkDuplicateColumns},
		LabelMarkup(policy),
	}
}
