// Command evals inspects the Trello tool evaluation suites.
//
// Usage:
//
//	go run ./cmd/evals -dir ./evals -suite all
//
// It loads the suites, checks them against the tool catalog and reports
// coverage. Scoring a model means implementing evals.ToolSelector and
// calling the Evaluate functions.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/olgasafonova/trello-mcp-server/evals"
	"github.com/olgasafonova/trello-mcp-server/internal/trello"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("evals", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", "./evals", "Directory containing the suite files (JSON or YAML)")
	suite := fs.String("suite", "all", "Suite to show: tool_selection, confusion_pairs, arguments, or all")
	openapi := fs.String("openapi", "", "OpenAPI document whose operations extend the catalog")
	verbose := fs.Bool("verbose", false, "Show every test case")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	toolSelection, confusionPairs, arguments, err := evals.LoadAllEvals(*dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading evals: %v\n", err)
		return 1
	}

	catalog, err := trello.Load(context.Background(), trello.Options{OpenAPIFile: *openapi})
	if err != nil {
		fmt.Fprintf(stderr, "Error loading tool catalog: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Trello MCP Server - Evaluation Suites")
	fmt.Fprintln(stdout, "=====================================")
	fmt.Fprintln(stdout)

	switch *suite {
	case "tool_selection":
		showToolSelection(stdout, toolSelection, *verbose)
	case "confusion_pairs":
		showConfusionPairs(stdout, confusionPairs, *verbose)
	case "arguments":
		showArguments(stdout, arguments, *verbose)
	case "all":
		showSummary(stdout, catalog, toolSelection, confusionPairs, arguments, *verbose)
	default:
		fmt.Fprintf(stderr, "Unknown suite: %s\n", *suite)
		return 1
	}

	if problems := evals.CheckCatalog(catalog, toolSelection, confusionPairs, arguments); len(problems) > 0 {
		fmt.Fprintf(stderr, "%d suite entries do not match the catalog:\n", len(problems))
		for _, p := range problems {
			fmt.Fprintf(stderr, "  - %s\n", p)
		}
		return 1
	}
	fmt.Fprintln(stdout, "All suites match the tool catalog.")
	return 0
}

// printCounts prints a map of counts in key order.
func printCounts(w io.Writer, title string, counts map[string]int, width int) {
	fmt.Fprintln(w, title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-*s: %d\n", width, k, counts[k])
	}
	fmt.Fprintln(w)
}

func showToolSelection(w io.Writer, suite *evals.ToolSelectionSuite, verbose bool) {
	fmt.Fprintf(w, "Tool Selection Suite: %s (v%s)\n", suite.Name, suite.Version)
	fmt.Fprintf(w, "Total Tests: %d\n\n", len(suite.Tests))

	categories := make(map[string]int)
	tools := make(map[string]int)
	for _, test := range suite.Tests {
		categories[test.Category]++
		tools[test.ExpectedTool]++
	}
	printCounts(w, "Tests by Category:", categories, 15)
	printCounts(w, "Tests by Tool:", tools, 40)

	if verbose {
		fmt.Fprintln(w, "Test Cases:")
		for _, test := range suite.Tests {
			fmt.Fprintf(w, "  [%s] %s\n", test.ID, test.Input)
			fmt.Fprintf(w, "    -> %s %v\n", test.ExpectedTool, test.ExpectedArgs)
			if len(test.NotTools) > 0 {
				fmt.Fprintf(w, "    not %v\n", test.NotTools)
			}
		}
		fmt.Fprintln(w)
	}
}

func showConfusionPairs(w io.Writer, suite *evals.ConfusionPairSuite, verbose bool) {
	total := 0
	for _, pair := range suite.Pairs {
		total += len(pair.Tests)
	}
	fmt.Fprintf(w, "Confusion Pairs Suite: %s (v%s)\n", suite.Name, suite.Version)
	fmt.Fprintf(w, "Total Pairs: %d, Tests: %d\n", len(suite.Pairs), total)

	for _, pair := range suite.Pairs {
		fmt.Fprintf(w, "\n  %s: %v\n", pair.ID, pair.Tools)
		fmt.Fprintf(w, "    Rule: %s\n", pair.Disambiguation)
		if verbose {
			for _, test := range pair.Tests {
				fmt.Fprintf(w, "      %q -> %s (%s)\n", test.Input, test.Expected, test.Reason)
			}
		}
	}
	fmt.Fprintln(w)
}

func showArguments(w io.Writer, suite *evals.ArgumentSuite, verbose bool) {
	fmt.Fprintf(w, "Argument Suite: %s (v%s)\n", suite.Name, suite.Version)
	fmt.Fprintf(w, "Total Tests: %d\n\n", len(suite.Tests))

	tools := make(map[string]int)
	for _, test := range suite.Tests {
		tools[test.Tool]++
	}
	printCounts(w, "Tests by Tool:", tools, 40)

	rules := suite.ValidationRules
	fmt.Fprintln(w, "Validation Rules:")
	fmt.Fprintf(w, "  IDs: %s\n", rules.IDFormat)
	fmt.Fprintf(w, "  Dates: %s\n", rules.DateFormat)
	fmt.Fprintf(w, "  Booleans: %s\n", rules.BooleanHandling)
	fmt.Fprintf(w, "  Arrays: %s\n", rules.ArrayHandling)
	fmt.Fprintf(w, "  Member: %s\n", rules.MemberDefault)
	fmt.Fprintln(w)

	if verbose {
		fmt.Fprintln(w, "Test Cases:")
		for _, test := range suite.Tests {
			fmt.Fprintf(w, "  [%s] %s\n", test.ID, test.Input)
			fmt.Fprintf(w, "    Tool: %s, required %v, expected %v\n", test.Tool, test.RequiredArgs, test.ExpectedArgs)
			if len(test.ForbiddenArgs) > 0 {
				fmt.Fprintf(w, "    Forbidden: %v\n", test.ForbiddenArgs)
			}
			if test.ArgNotes != "" {
				fmt.Fprintf(w, "    Notes: %s\n", test.ArgNotes)
			}
		}
		fmt.Fprintln(w)
	}
}

func showSummary(w io.Writer, catalog *trello.Catalog, toolSelection *evals.ToolSelectionSuite, confusionPairs *evals.ConfusionPairSuite, arguments *evals.ArgumentSuite, verbose bool) {
	confusionTests := 0
	for _, pair := range confusionPairs.Pairs {
		confusionTests += len(pair.Tests)
	}

	fmt.Fprintf(w, "Tool Selection Tests:   %d\n", len(toolSelection.Tests))
	fmt.Fprintf(w, "Confusion Pair Tests:   %d (across %d pairs)\n", confusionTests, len(confusionPairs.Pairs))
	fmt.Fprintf(w, "Argument Tests:         %d\n", len(arguments.Tests))
	fmt.Fprintf(w, "Total Evaluation Tests: %d\n\n", len(toolSelection.Tests)+confusionTests+len(arguments.Tests))

	covered := coveredTools(toolSelection, confusionPairs, arguments)
	fmt.Fprintf(w, "Tool Coverage: %d of %d catalog tools\n", len(covered), catalog.Len())

	if verbose {
		fmt.Fprintln(w, "\nUntested Tools:")
		for _, d := range catalog.All() {
			if !covered[d.Name] {
				fmt.Fprintf(w, "  %s\n", d.Name)
			}
		}
	}
	fmt.Fprintln(w)
}

// coveredTools returns the set of tools any suite expects.
func coveredTools(toolSelection *evals.ToolSelectionSuite, confusionPairs *evals.ConfusionPairSuite, arguments *evals.ArgumentSuite) map[string]bool {
	covered := make(map[string]bool)
	for _, test := range toolSelection.Tests {
		covered[test.ExpectedTool] = true
	}
	for _, pair := range confusionPairs.Pairs {
		for _, tool := range pair.Tools {
			covered[tool] = true
		}
	}
	for _, test := range arguments.Tests {
		covered[test.Tool] = true
	}
	return covered
}
