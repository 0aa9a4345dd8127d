// Package engine assembles the lexer/parser/YAML-adapter, evaluator,
// executor, built-in function tables, static validator, and AST cache into
// the single façade external callers use: Evaluate, EvaluateAST, Parse,
// Validate, and the deferred EvaluateAsync. Grounded on the teacher's
// pkg/policy/engine.InterpreterEngine — a config-validating constructor
// that wires a matcher and an executor behind a small blocking call
// surface, plus cmd/mercator/run.go's async wiring for the deferred form.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"rulecraft/engine/pkg/config"
	"rulecraft/engine/pkg/lang/ast"
	"rulecraft/engine/pkg/rule/builtins"
	"rulecraft/engine/pkg/rule/cache"
	ruleContext "rulecraft/engine/pkg/rule/context"
	rerr "rulecraft/engine/pkg/rule/errors"
	"rulecraft/engine/pkg/rule/eval"
	"rulecraft/engine/pkg/rule/exec"
	"rulecraft/engine/pkg/rule/store"
	"rulecraft/engine/pkg/rule/validate"
	"rulecraft/engine/pkg/rule/yamlrule"
)

// Dependencies bundles every external collaborator the Engine consults.
// Every field may be left nil: ConstantStore/RuleDefinitionStore/Cache
// default to no-op or in-memory stand-ins, HttpClient defaults to
// DefaultHTTPClient, Clock defaults to SystemClock, and Security/Logger
// fall back the same way their owning constructors already do.
type Dependencies struct {
	ConstantStore       store.ConstantStore
	RuleDefinitionStore store.RuleDefinitionStore
	Cache               cache.Cache
	HttpClient          eval.HttpClient
	Clock               Clock
	Security            builtins.SecurityProvider
	Logger              *slog.Logger
}

// Result is the outcome of one rule evaluation, per spec.md §6.1.
type Result struct {
	Success                 bool                   `json:"success"`
	ConditionResult         bool                   `json:"condition_result"`
	Outputs                 map[string]interface{} `json:"outputs"`
	ExecutionMillis         int64                  `json:"execution_millis"`
	CircuitBreakerTriggered bool                   `json:"circuit_breaker_triggered"`
	CircuitBreakerMessage   string                 `json:"circuit_breaker_message,omitempty"`
	Error                   string                 `json:"error,omitempty"`
}

// Engine evaluates rules against external inputs, honoring the engine
// configuration (decimal scale, naming patterns, cache sizing) established
// at construction time. loop.max_iterations is validated but not passed to
// the executor, whose while/do-while cap is fixed at 10 000 iterations.
type Engine struct {
	cfg  *config.EngineConfig
	deps Dependencies

	cache  cache.Cache
	naming ruleContext.NamingRules
	funcs  *builtins.Registry
	sideFx *builtins.SideEffectingRegistry
	http   eval.HttpClient
	clock  Clock
	logger *slog.Logger
}

// New constructs an Engine. cfg may be nil, in which case config.Default()
// supplies every tunable; deps' zero value is likewise fully usable.
func New(cfg *config.EngineConfig, deps Dependencies) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	} else {
		config.ApplyDefaults(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := deps.HttpClient
	if httpClient == nil {
		httpClient = NewDefaultHTTPClient()
	}

	clk := deps.Clock
	if clk == nil {
		clk = SystemClock{}
	}

	astCache := deps.Cache
	if astCache == nil {
		localCfg := cache.LocalConfig{
			MaxSize:   cfg.Cache.AST.MaxSize,
			TTLWrite:  cfg.Cache.AST.TTLWrite,
			TTLAccess: cfg.Cache.AST.TTLAccess,
		}
		astCache = cache.NewLocalCache(localCfg)
	}

	eval.DivScale = cfg.Decimal.DivScale

	naming, err := buildNamingRules(cfg.Naming)
	if err != nil {
		return nil, fmt.Errorf("invalid naming pattern: %w", err)
	}

	e := &Engine{
		cfg:    cfg,
		deps:   deps,
		cache:  astCache,
		naming: naming,
		funcs:  builtins.NewRegistry(deps.Security, func() time.Time { return clk.NowUTC() }),
		sideFx: builtins.NewSideEffectingRegistry(logger),
		http:   httpClient,
		clock:  clk,
		logger: logger,
	}
	return e, nil
}

// Evaluate parses ruleText (using the AST cache keyed by its content hash)
// and evaluates it against inputs, per spec.md §6.1's evaluate(rule_text,
// inputs) entry point.
func (e *Engine) Evaluate(ctx context.Context, ruleText string, inputs map[string]interface{}) (*Result, error) {
	rule, err := e.parseCached(ruleText)
	if err != nil {
		return nil, err
	}
	return e.EvaluateAST(ctx, rule, inputs)
}

// EvaluateByCode resolves code via the configured RuleDefinitionStore and
// evaluates the result, the code-based convenience entry point spec.md
// §6.2 describes for RuleDefinitionStore.
func (e *Engine) EvaluateByCode(ctx context.Context, code string, inputs map[string]interface{}) (*Result, error) {
	if e.deps.RuleDefinitionStore == nil {
		return nil, fmt.Errorf("no rule definition store configured")
	}
	text, ok, err := e.deps.RuleDefinitionStore.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("rule definition store: %w", err)
	}
	if !ok {
		return nil, &store.ErrNotFound{Code: code}
	}
	return e.Evaluate(ctx, text, inputs)
}

// EvaluateAST evaluates an already-parsed rule against inputs, per
// spec.md §6.1's evaluate_ast(rule_ast, inputs) entry point.
func (e *Engine) EvaluateAST(ctx context.Context, rule *ast.Rule, inputs map[string]interface{}) (*Result, error) {
	start := time.Now()

	evalCtx := ruleContext.New(ctx, inputs, e.naming)
	if err := e.seedConstants(ctx, evalCtx, rule); err != nil {
		return nil, err
	}

	executor := exec.New(evalCtx, e.funcs, e.sideFx, e.http, e.logger)

	runErr := executor.ExecuteRule(rule)
	elapsed := time.Since(start)

	tripped, breakerMsg, _ := evalCtx.BreakerTripped()

	result := &Result{
		Success:                 runErr == nil,
		ConditionResult:         executor.ConditionResult(),
		Outputs:                 selectOutputs(rule, evalCtx),
		ExecutionMillis:         elapsed.Milliseconds(),
		CircuitBreakerTriggered: tripped,
		CircuitBreakerMessage:   breakerMsg,
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}
	return result, nil
}

// EvaluateAsync runs Evaluate in its own goroutine and returns a channel
// that receives exactly one {Result, error} pair before being closed — a
// thin adapter onto Evaluate for callers integrating with an async I/O
// boundary, not a second implementation (spec.md §5's concurrency model is
// synchronous CPU-bound work).
func (e *Engine) EvaluateAsync(ctx context.Context, ruleText string, inputs map[string]interface{}) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	go func() {
		defer close(out)
		result, err := e.Evaluate(ctx, ruleText, inputs)
		out <- AsyncResult{Result: result, Err: err}
	}()
	return out
}

// AsyncResult is the payload EvaluateAsync's channel delivers.
type AsyncResult struct {
	Result *Result
	Err    error
}

// Parse parses ruleText into an AST without evaluating it, per spec.md
// §6.1's parse(rule_text) entry point. On a parse failure it returns the
// accumulated diagnostics alongside a non-nil error.
func (e *Engine) Parse(ruleText string) (*ast.Rule, *rerr.List, error) {
	rule, err := yamlrule.Parse([]byte(ruleText), "<rule>")
	if err == nil {
		return rule, nil, nil
	}
	if list, ok := err.(*rerr.List); ok {
		return nil, list, err
	}
	list := rerr.NewList()
	list.AddNew(rerr.CodeParseUnexpectedToken, err.Error(), rerr.Location{Line: 1, Column: 1})
	return nil, list, list.ToError()
}

// Validate runs the static validator over ruleText, per spec.md §6.1's
// validate(rule_text) entry point.
func (e *Engine) Validate(ruleText string) *validate.Report {
	rule, parseErrs, _ := e.Parse(ruleText)
	return validate.New().Validate(rule, ruleText, parseErrs)
}

func (e *Engine) parseCached(ruleText string) (*ast.Rule, error) {
	key := cache.Key([]byte(ruleText))
	return e.cache.Get(context.Background(), key, func() (*ast.Rule, error) {
		rule, _, err := e.Parse(ruleText)
		return rule, err
	})
}

// seedConstants resolves rule.Constants via the configured ConstantStore
// (falling back to each declaration's own default on a lookup miss or a
// store error, per spec.md §6.2's "errors are recoverable" rule) and
// seeds them into evalCtx.
func (e *Engine) seedConstants(ctx context.Context, evalCtx *ruleContext.EvaluationContext, rule *ast.Rule) error {
	if len(rule.Constants) == 0 || evalCtx.HasConstants() {
		return nil
	}

	resolved := make(map[string]interface{}, len(rule.Constants))
	for _, decl := range rule.Constants {
		resolved[decl.Name] = decl.Default
	}

	if e.deps.ConstantStore != nil {
		codes := make([]string, 0, len(rule.Constants))
		for _, decl := range rule.Constants {
			if decl.Code != "" {
				codes = append(codes, decl.Code)
			}
		}
		values, err := e.deps.ConstantStore.GetMany(ctx, codes)
		if err != nil {
			e.logger.Warn("constant store lookup failed, falling back to declared defaults", "error", err)
		} else {
			for _, decl := range rule.Constants {
				if v, ok := values[decl.Code]; ok {
					resolved[decl.Name] = v
				}
			}
		}
	}

	evalCtx.SeedConstants(resolved)
	return nil
}

// selectOutputs returns all computed variables plus any explicitly
// declared output names, per spec.md's "outputs map (all computed
// variables plus any explicitly declared output names)". A declared
// output that was never written during execution is still resolved
// (it may name an input or constant passed straight through) and
// included when found.
func selectOutputs(rule *ast.Rule, evalCtx *ruleContext.EvaluationContext) map[string]interface{} {
	computed := evalCtx.Computed()
	out := make(map[string]interface{}, len(computed)+len(rule.OutputDecl))
	for k, v := range computed {
		out[k] = v
	}
	for name := range rule.OutputDecl {
		if _, ok := out[name]; ok {
			continue
		}
		if v, ok := evalCtx.Resolve(name); ok {
			out[name] = v
		}
	}
	return out
}

// buildNamingRules compiles cfg's three patterns into the
// context.NamingRules the evaluation context enforces on writes.
func buildNamingRules(cfg config.NamingConfig) (ruleContext.NamingRules, error) {
	computed, err := regexp.Compile(cfg.ComputedPattern)
	if err != nil {
		return ruleContext.NamingRules{}, fmt.Errorf("naming.computed_pattern: %w", err)
	}
	input, err := regexp.Compile(cfg.InputPattern)
	if err != nil {
		return ruleContext.NamingRules{}, fmt.Errorf("naming.input_pattern: %w", err)
	}
	constant, err := regexp.Compile(cfg.ConstantPattern)
	if err != nil {
		return ruleContext.NamingRules{}, fmt.Errorf("naming.constant_pattern: %w", err)
	}
	return ruleContext.NamingRules{
		ComputedPattern: computed,
		InputPattern:    input,
		ConstantPattern: constant,
	}, nil
}
