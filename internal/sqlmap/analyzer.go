package sqlmap

// Analyzer runs the full SQL to artifacts pipeline with a fixed configuration.
// It holds no mutable state and may be shared between goroutines.
type Analyzer struct {
	fallback  Dialect
	splitter  ListSplitter
	generator *Generator
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithFallbackDialect overrides DefaultDialect as the detection tie-break.
func WithFallbackDialect(d Dialect) Option {
	return func(a *Analyzer) {
		if d != "" {
			a.fallback = d
		}
	}
}

// WithSplitter replaces the SELECT list splitter.
func WithSplitter(s ListSplitter) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.splitter = s
		}
	}
}

// WithRules replaces the default lookup tables.
func WithRules(r Rules) Option {
	return func(a *Analyzer) {
		a.generator = NewGenerator(r)
	}
}

// NewAnalyzer returns an Analyzer with the reference behavior unless overridden.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		fallback:  DefaultDialect,
		splitter:  CommaSplitter{},
		generator: NewGenerator(DefaultRules()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dialect detects the dialect of sql using the configured tie-break.
func (a *Analyzer) Dialect(sql string) Dialect {
	return DetectDialectOr(sql, a.fallback)
}

// Parse is the package level Parse with the configured tie-break and splitter.
func (a *Analyzer) Parse(sql string, d Dialect) ParseResult {
	if d == "" {
		d = a.Dialect(sql)
	}
	return ParseResult{
		Parameters: ExtractParameters(sql, d),
		Columns:    ExtractColumnsWith(sql, a.splitter),
	}
}

// Analyze detects the dialect of sql, parses it and renders every artifact.
func (a *Analyzer) Analyze(sql string) Analysis {
	return a.AnalyzeAs(sql, "")
}

// AnalyzeAs is Analyze with a forced dialect. An empty dialect is detected.
func (a *Analyzer) AnalyzeAs(sql string, d Dialect) Analysis {
	if d == "" {
		d = a.Dialect(sql)
	}
	result := a.Parse(sql, d)
	return Analysis{
		Dialect:   d,
		Result:    result,
		Artifacts: a.generator.Render(result),
	}
}
