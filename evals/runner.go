// Package evals measures how well a model picks Trello tools and fills their
// arguments from natural language requests. Suites are JSON or YAML files
// checked against the live tool catalog before they run.
package evals

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/olgasafonova/trello-mcp-server/internal/trello"
)

// ToolSelectionTest represents a single tool selection evaluation case
type ToolSelectionTest struct {
	ID           string                 `json:"id" yaml:"id"`
	Category     string                 `json:"category" yaml:"category"`
	Input        string                 `json:"input" yaml:"input"`
	ExpectedTool string                 `json:"expected_tool" yaml:"expected_tool"`
	ExpectedArgs map[string]interface{} `json:"expected_args" yaml:"expected_args"`
	NotTools     []string               `json:"not_tools" yaml:"not_tools"`
}

// ToolSelectionSuite contains all tool selection tests
type ToolSelectionSuite struct {
	Name        string              `json:"name" yaml:"name"`
	Version     string              `json:"version" yaml:"version"`
	Description string              `json:"description" yaml:"description"`
	Tests       []ToolSelectionTest `json:"tests" yaml:"tests"`
}

// ConfusionPairTest represents a single disambiguation test
type ConfusionPairTest struct {
	Input    string `json:"input" yaml:"input"`
	Expected string `json:"expected" yaml:"expected"`
	Reason   string `json:"reason" yaml:"reason"`
}

// ConfusionPair represents a pair of tools that are commonly confused
type ConfusionPair struct {
	ID             string              `json:"id" yaml:"id"`
	Tools          []string            `json:"tools" yaml:"tools"`
	Disambiguation string              `json:"disambiguation" yaml:"disambiguation"`
	Tests          []ConfusionPairTest `json:"tests" yaml:"tests"`
}

// ConfusionPairSuite contains all confusion pair tests
type ConfusionPairSuite struct {
	Name        string          `json:"name" yaml:"name"`
	Version     string          `json:"version" yaml:"version"`
	Description string          `json:"description" yaml:"description"`
	Pairs       []ConfusionPair `json:"pairs" yaml:"pairs"`
}

// ArgumentTest represents a single argument correctness test
type ArgumentTest struct {
	ID            string                 `json:"id" yaml:"id"`
	Tool          string                 `json:"tool" yaml:"tool"`
	Input         string                 `json:"input" yaml:"input"`
	RequiredArgs  []string               `json:"required_args" yaml:"required_args"`
	ExpectedArgs  map[string]interface{} `json:"expected_args" yaml:"expected_args"`
	ForbiddenArgs []string               `json:"forbidden_args" yaml:"forbidden_args"`
	ArgNotes      string                 `json:"arg_notes,omitempty" yaml:"arg_notes,omitempty"`
}

// ValidationRules documents how a model should shape Trello arguments.
type ValidationRules struct {
	IDFormat        string `json:"id_format" yaml:"id_format"`
	DateFormat      string `json:"date_format" yaml:"date_format"`
	BooleanHandling string `json:"boolean_handling" yaml:"boolean_handling"`
	ArrayHandling   string `json:"array_handling" yaml:"array_handling"`
	MemberDefault   string `json:"member_default" yaml:"member_default"`
}

// ArgumentSuite contains all argument correctness tests
type ArgumentSuite struct {
	Name            string          `json:"name" yaml:"name"`
	Version         string          `json:"version" yaml:"version"`
	Description     string          `json:"description" yaml:"description"`
	Tests           []ArgumentTest  `json:"tests" yaml:"tests"`
	ValidationRules ValidationRules `json:"validation_rules" yaml:"validation_rules"`
}

// ToolSelectionResult represents the result of a single tool selection evaluation
type ToolSelectionResult struct {
	TestID       string
	Input        string
	ExpectedTool string
	ActualTool   string
	Passed       bool
	Errors       []string
}

// ConfusionPairResult represents the result of a confusion pair evaluation
type ConfusionPairResult struct {
	PairID       string
	TestInput    string
	ExpectedTool string
	ActualTool   string
	Reason       string
	Passed       bool
}

// ArgumentResult represents the result of an argument correctness evaluation
type ArgumentResult struct {
	TestID       string
	Tool         string
	Input        string
	Passed       bool
	ActualTool   string
	Error        string
	MissingArgs  []string
	WrongArgs    map[string]string // arg -> "expected X, got Y"
	ForbiddenHit []string          // forbidden args that were used
}

// EvalMetrics contains aggregate metrics for an evaluation run
type EvalMetrics struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Accuracy      float64 // PassedTests / TotalTests
	ByCategory    map[string]*CategoryMetrics
	ByTool        map[string]*ToolMetrics
	FailedDetails []string
}

// CategoryMetrics contains metrics per category
type CategoryMetrics struct {
	Total  int
	Passed int
	Failed int
}

// ToolMetrics contains metrics per tool
type ToolMetrics struct {
	ExpectedCount  int // times tool was expected
	SelectedCount  int // times tool was actually selected
	CorrectCount   int // times tool was correctly selected
	FalsePositives int // times wrong tool was selected instead
	FalseNegatives int // times this tool should have been selected but wasn't
}

// loadSuite decodes a suite file, choosing YAML or JSON by extension.
func loadSuite(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing JSON: %w", err)
		}
	}
	return nil
}

// LoadToolSelectionSuite loads tool selection tests from a JSON or YAML file
func LoadToolSelectionSuite(path string) (*ToolSelectionSuite, error) {
	var suite ToolSelectionSuite
	if err := loadSuite(path, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

// LoadConfusionPairSuite loads confusion pair tests from a JSON or YAML file
func LoadConfusionPairSuite(path string) (*ConfusionPairSuite, error) {
	var suite ConfusionPairSuite
	if err := loadSuite(path, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

// LoadArgumentSuite loads argument correctness tests from a JSON or YAML file
func LoadArgumentSuite(path string) (*ArgumentSuite, error) {
	var suite ArgumentSuite
	if err := loadSuite(path, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

// ToolSelector is implemented by the model under test, or a fake in tests.
type ToolSelector interface {
	// SelectTool picks a tool and its arguments for a natural language request.
	SelectTool(input string) (toolName string, args map[string]interface{}, err error)
}

func newMetrics() *EvalMetrics {
	return &EvalMetrics{
		ByCategory: make(map[string]*CategoryMetrics),
		ByTool:     make(map[string]*ToolMetrics),
	}
}

func (m *EvalMetrics) category(name string) *CategoryMetrics {
	c, ok := m.ByCategory[name]
	if !ok {
		c = &CategoryMetrics{}
		m.ByCategory[name] = c
	}
	return c
}

func (m *EvalMetrics) tool(name string) *ToolMetrics {
	t, ok := m.ByTool[name]
	if !ok {
		t = &ToolMetrics{}
		m.ByTool[name] = t
	}
	return t
}

// record counts one finished test. detail is kept for failures only.
func (m *EvalMetrics) record(category string, passed bool, detail string) {
	c := m.category(category)
	if passed {
		m.PassedTests++
		c.Passed++
		return
	}
	m.FailedTests++
	c.Failed++
	m.FailedDetails = append(m.FailedDetails, detail)
}

// selection updates per-tool counters for one expected/actual pair.
func (m *EvalMetrics) selection(expected, actual string) {
	m.tool(actual).SelectedCount++
	if actual == expected {
		m.tool(expected).CorrectCount++
		return
	}
	m.tool(expected).FalseNegatives++
	m.tool(actual).FalsePositives++
}

func (m *EvalMetrics) finish() {
	if m.TotalTests > 0 {
		m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
	}
}

// checkArgs compares expected argument values against what the selector
// produced and returns one message per mismatch.
func checkArgs(expected, actual map[string]interface{}) []string {
	var errs []string
	for _, key := range mapKeys(expected) {
		want := expected[key]
		got, ok := actual[key]
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("missing arg %s (expected %v)", key, want))
		case !compareValues(want, got):
			errs = append(errs, fmt.Sprintf("wrong arg %s: expected %v, got %v", key, want, got))
		}
	}
	return errs
}

// EvaluateToolSelection runs tool selection tests against a selector
func EvaluateToolSelection(suite *ToolSelectionSuite, selector ToolSelector) (*EvalMetrics, []ToolSelectionResult) {
	metrics := newMetrics()
	var results []ToolSelectionResult

	for _, test := range suite.Tests {
		metrics.TotalTests++
		metrics.category(test.Category).Total++
		metrics.tool(test.ExpectedTool).ExpectedCount++

		actualTool, actualArgs, err := selector.SelectTool(test.Input)
		metrics.selection(test.ExpectedTool, actualTool)

		result := ToolSelectionResult{
			TestID:       test.ID,
			Input:        test.Input,
			ExpectedTool: test.ExpectedTool,
			ActualTool:   actualTool,
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("selector error: %v", err))
		}
		if actualTool != test.ExpectedTool {
			result.Errors = append(result.Errors,
				fmt.Sprintf("wrong tool: expected %s, got %s", test.ExpectedTool, actualTool))
		}
		if slices.Contains(test.NotTools, actualTool) {
			result.Errors = append(result.Errors, fmt.Sprintf("selected forbidden tool: %s", actualTool))
		}
		result.Errors = append(result.Errors, checkArgs(test.ExpectedArgs, actualArgs)...)
		result.Passed = len(result.Errors) == 0

		metrics.record(test.Category, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(result.Errors, "; ")))
		results = append(results, result)
	}

	metrics.finish()
	return metrics, results
}

// EvaluateConfusionPairs runs disambiguation tests. Only the tool choice is
// scored; each pair is its own category.
func EvaluateConfusionPairs(suite *ConfusionPairSuite, selector ToolSelector) (*EvalMetrics, []ConfusionPairResult) {
	metrics := newMetrics()
	var results []ConfusionPairResult

	for _, pair := range suite.Pairs {
		for _, test := range pair.Tests {
			metrics.TotalTests++
			metrics.category(pair.ID).Total++
			metrics.tool(test.Expected).ExpectedCount++

			actualTool, _, err := selector.SelectTool(test.Input)
			metrics.selection(test.Expected, actualTool)

			result := ConfusionPairResult{
				PairID:       pair.ID,
				TestInput:    test.Input,
				ExpectedTool: test.Expected,
				ActualTool:   actualTool,
				Reason:       test.Reason,
				Passed:       err == nil && actualTool == test.Expected,
			}
			metrics.record(pair.ID, result.Passed,
				fmt.Sprintf("[%s] %s: expected %s, got %s (%s)",
					pair.ID, test.Input, test.Expected, actualTool, test.Reason))
			results = append(results, result)
		}
	}

	metrics.finish()
	return metrics, results
}

// EvaluateArguments runs argument correctness tests. Tests are grouped by
// tool, and arguments only count when the right tool was picked.
func EvaluateArguments(suite *ArgumentSuite, selector ToolSelector) (*EvalMetrics, []ArgumentResult) {
	metrics := newMetrics()
	var results []ArgumentResult

	for _, test := range suite.Tests {
		metrics.TotalTests++
		metrics.category(test.Tool).Total++

		actualTool, actualArgs, err := selector.SelectTool(test.Input)
		result := ArgumentResult{
			TestID:     test.ID,
			Tool:       test.Tool,
			Input:      test.Input,
			ActualTool: actualTool,
			WrongArgs:  make(map[string]string),
		}

		switch {
		case err != nil:
			result.Error = fmt.Sprintf("selector error: %v", err)
		case actualTool != test.Tool:
			result.Error = fmt.Sprintf("wrong tool: expected %s, got %s", test.Tool, actualTool)
		default:
			scoreArguments(&result, test, actualArgs)
		}
		result.Passed = result.Error == "" && len(result.MissingArgs) == 0 &&
			len(result.WrongArgs) == 0 && len(result.ForbiddenHit) == 0

		metrics.record(test.Tool, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, describeArgumentFailure(result)))
		results = append(results, result)
	}

	metrics.finish()
	return metrics, results
}

func scoreArguments(result *ArgumentResult, test ArgumentTest, actual map[string]interface{}) {
	for _, name := range test.RequiredArgs {
		if _, ok := actual[name]; !ok {
			result.MissingArgs = append(result.MissingArgs, name)
		}
	}
	for _, name := range mapKeys(test.ExpectedArgs) {
		got, ok := actual[name]
		switch {
		case !ok:
			if !slices.Contains(result.MissingArgs, name) {
				result.MissingArgs = append(result.MissingArgs, name)
			}
		case !compareValues(test.ExpectedArgs[name], got):
			result.WrongArgs[name] = fmt.Sprintf("expected %v, got %v", test.ExpectedArgs[name], got)
		}
	}
	for _, name := range test.ForbiddenArgs {
		if _, ok := actual[name]; ok {
			result.ForbiddenHit = append(result.ForbiddenHit, name)
		}
	}
}

func describeArgumentFailure(result ArgumentResult) string {
	if result.Error != "" {
		return result.Error
	}
	var parts []string
	if len(result.MissingArgs) > 0 {
		parts = append(parts, fmt.Sprintf("missing: %v", result.MissingArgs))
	}
	for _, name := range slices.Sorted(maps.Keys(result.WrongArgs)) {
		parts = append(parts, fmt.Sprintf("%s: %s", name, result.WrongArgs[name]))
	}
	if len(result.ForbiddenHit) > 0 {
		parts = append(parts, fmt.Sprintf("forbidden: %v", result.ForbiddenHit))
	}
	return strings.Join(parts, "; ")
}

// compareValues reports whether actual matches expected, treating numbers of
// any type as equal by value and accepting a comma-separated string where a
// list is expected, since Trello takes either form.
func compareValues(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if ef, ok := toFloat(expected); ok {
		af, ok := toFloat(actual)
		return ok && ef == af
	}

	ev := reflect.ValueOf(expected)
	if ev.Kind() != reflect.Slice {
		return reflect.DeepEqual(expected, actual)
	}

	var items []interface{}
	switch av := reflect.ValueOf(actual); {
	case av.Kind() == reflect.Slice:
		for i := 0; i < av.Len(); i++ {
			items = append(items, av.Index(i).Interface())
		}
	case av.Kind() == reflect.String:
		for _, part := range strings.Split(av.String(), ",") {
			items = append(items, strings.TrimSpace(part))
		}
	default:
		return false
	}

	if ev.Len() != len(items) {
		return false
	}
	for i, item := range items {
		if !compareValues(ev.Index(i).Interface(), item) {
			return false
		}
	}
	return true
}

// toFloat converts any numeric value, including json.Number, to float64.
func toFloat(v interface{}) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// FormatMetrics renders a plain text report. At most ten failures are listed.
func FormatMetrics(metrics *EvalMetrics, suiteName string) string {
	const maxFailures = 10
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", metrics.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", metrics.PassedTests, metrics.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", metrics.FailedTests)

	if len(metrics.ByCategory) > 0 {
		b.WriteString("\nBy Category:\n")
		for _, name := range slices.Sorted(maps.Keys(metrics.ByCategory)) {
			m := metrics.ByCategory[name]
			if m.Total == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %-25s: %d/%d (%.0f%%)\n", name, m.Passed, m.Total, float64(m.Passed)/float64(m.Total)*100)
		}
	}

	failures := metrics.FailedDetails
	switch {
	case len(failures) == 0:
	case len(failures) <= maxFailures:
		b.WriteString("\nFailed Tests:\n")
	default:
		fmt.Fprintf(&b, "\nFailed Tests (showing first %d of %d):\n", maxFailures, len(failures))
		failures = failures[:maxFailures]
	}
	for _, detail := range failures {
		fmt.Fprintf(&b, "  - %s\n", detail)
	}

	return b.String()
}

// suiteFile returns the first of name.json, name.yaml and name.yml found in
// dir, defaulting to the JSON name so the read error mentions it.
func suiteFile(dir, name string) string {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(dir, name+".json")
}

// LoadAllEvals loads all evaluation suites from a directory
func LoadAllEvals(dir string) (*ToolSelectionSuite, *ConfusionPairSuite, *ArgumentSuite, error) {
	toolSelection, err := LoadToolSelectionSuite(suiteFile(dir, "tool_selection"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading tool selection: %w", err)
	}

	confusionPairs, err := LoadConfusionPairSuite(suiteFile(dir, "confusion_pairs"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading confusion pairs: %w", err)
	}

	arguments, err := LoadArgumentSuite(suiteFile(dir, "argument_correctness"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading arguments: %w", err)
	}

	return toolSelection, confusionPairs, arguments, nil
}

// CheckCatalog reports suite entries that name tools or arguments the catalog
// does not have. An empty result means every suite matches the catalog.
func CheckCatalog(catalog *trello.Catalog, toolSelection *ToolSelectionSuite, confusionPairs *ConfusionPairSuite, arguments *ArgumentSuite) []string {
	var problems []string

	checkTool := func(where, name string) bool {
		if _, ok := catalog.Lookup(name); !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown tool %s", where, name))
			return false
		}
		return true
	}
	checkArgs := func(where, tool string, names []string) {
		d, ok := catalog.Lookup(tool)
		if !ok {
			return
		}
		for _, name := range names {
			if _, ok := d.Param(name); !ok {
				problems = append(problems, fmt.Sprintf("%s: %s has no argument %s", where, tool, name))
			}
		}
	}

	if toolSelection != nil {
		for _, test := range toolSelection.Tests {
			if checkTool(test.ID, test.ExpectedTool) {
				checkArgs(test.ID, test.ExpectedTool, mapKeys(test.ExpectedArgs))
			}
			for _, name := range test.NotTools {
				checkTool(test.ID, name)
			}
		}
	}

	if confusionPairs != nil {
		for _, pair := range confusionPairs.Pairs {
			for _, name := range pair.Tools {
				checkTool(pair.ID, name)
			}
			for _, test := range pair.Tests {
				if !slices.Contains(pair.Tools, test.Expected) {
					problems = append(problems, fmt.Sprintf("%s: expected tool %s is not in the pair", pair.ID, test.Expected))
				}
			}
		}
	}

	if arguments != nil {
		for _, test := range arguments.Tests {
			if !checkTool(test.ID, test.Tool) {
				continue
			}
			checkArgs(test.ID, test.Tool, test.RequiredArgs)
			checkArgs(test.ID, test.Tool, mapKeys(test.ExpectedArgs))
		}
	}

	return problems
}

func mapKeys(m map[string]interface{}) []string {
	return slices.Sorted(maps.Keys(m))
}
