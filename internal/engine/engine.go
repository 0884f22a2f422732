package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

// CombinatorPolicy selects how And reports failing children.
type CombinatorPolicy int

const (
	// PolicyCollectAll evaluates every child and reports all failures.
	// Suits validation, where every message should reach the user.
	PolicyCollectAll CombinatorPolicy = iota
	// PolicyShortCircuit stops at the first failing child.
	// Suits display gating, where only the verdict matters.
	PolicyShortCircuit
)

func (p CombinatorPolicy) String() string {
	switch p {
	case PolicyShortCircuit:
		return "short-circuit"
	default:
		return "collect-all"
	}
}

// ParsePolicy converts a configuration string to a CombinatorPolicy.
func ParsePolicy(s string) (CombinatorPolicy, error) {
	switch s {
	case "", "collect-all":
		return PolicyCollectAll, nil
	case "short-circuit":
		return PolicyShortCircuit, nil
	default:
		return PolicyCollectAll, fmt.Errorf("%w: combinator policy %q (want collect-all or short-circuit)", types.ErrInvalidParameter, s)
	}
}

// DefaultLocale is used by formatting operators that carry no locale.
const DefaultLocale = "en-US"

// ComparatorFunc implements a custom comparator. It receives the resolved
// operand value and the right Either it came from; returning resolved
// unchanged signals success.
type ComparatorFunc func(node *types.Comparator, value types.Value, resolved types.Either) types.Either

// OperatorFunc implements a custom operator over resolved child values.
type OperatorFunc func(node *types.Operator, args []types.Value) types.Either

// Engine evaluates operand trees. Immutable after New; safe for concurrent use.
type Engine struct {
	logger      *slog.Logger
	policy      CombinatorPolicy
	locale      string
	comparators map[types.Tag]ComparatorFunc
	operators   map[types.Tag]OperatorFunc

	// caches keyed by source text; values are pure functions of the key
	patterns sync.Map // string -> *regexp.Regexp
	paths    sync.Map // string -> []types.PathSegment
	locales  sync.Map // language tag -> *numerals
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger enables debug logging of evaluations. Nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCombinatorPolicy sets the default And failure policy.
// Nodes with ShortCircuit set always short-circuit.
func WithCombinatorPolicy(p CombinatorPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLocale sets the BCP 47 locale used by formatting operators that do not
// specify one.
func WithLocale(locale string) Option {
	return func(e *Engine) {
		if locale != "" {
			e.locale = locale
		}
	}
}

// WithComparator registers a custom comparator tag.
// Built-in tags take precedence; the name should not shadow one.
func WithComparator(tag types.Tag, fn ComparatorFunc) Option {
	return func(e *Engine) {
		if e.comparators == nil {
			e.comparators = make(map[types.Tag]ComparatorFunc)
		}
		e.comparators[tag] = fn
	}
}

// WithOperator registers a custom operator tag.
// Built-in tags take precedence; the name should not shadow one.
func WithOperator(tag types.Tag, fn OperatorFunc) Option {
	return func(e *Engine) {
		if e.operators == nil {
			e.operators = make(map[types.Tag]OperatorFunc)
		}
		e.operators[tag] = fn
	}
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		policy: PolicyCollectAll,
		locale: DefaultLocale,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Evaluate evaluates op using the default engine (no custom tags, collect-all
// policy, en-US formatting).
func Evaluate(op types.Operand, arg types.Value, locals types.LocalValues) types.Either {
	return defaultEngine.Evaluate(op, arg, locals)
}

// pattern compiles and caches a regular expression with optional flags.
func (e *Engine) pattern(src, flags string) (*regexp.Regexp, error) {
	key := flags + "/" + src
	if re, ok := e.patterns.Load(key); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := compilePattern(src, flags)
	if err != nil {
		return nil, err
	}
	e.patterns.Store(key, re)
	return re, nil
}

// path parses and caches an injector path.
func (e *Engine) path(src string) ([]types.PathSegment, error) {
	if p, ok := e.paths.Load(src); ok {
		return p.([]types.PathSegment), nil
	}
	p, err := types.ParsePath(src)
	if err != nil {
		return nil, err
	}
	if err := types.ValidatePath(p); err != nil {
		return nil, err
	}
	e.paths.Store(src, p)
	return p, nil
}

// compilePattern builds a regexp from source and flag letters (i, m, s, U).
func compilePattern(src, flags string) (*regexp.Regexp, error) {
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's', 'U':
		default:
			return nil, types.ErrInvalidPattern
		}
	}
	if flags != "" {
		src = "(?" + flags + ")" + src
	}
	return regexp.Compile(src)
}
