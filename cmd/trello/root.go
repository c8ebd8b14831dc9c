package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/trello-mcp-server/internal/base"
	"github.com/olgasafonova/trello-mcp-server/internal/config"
	"github.com/olgasafonova/trello-mcp-server/internal/credentials"
	"github.com/olgasafonova/trello-mcp-server/internal/endpoint"
	"github.com/olgasafonova/trello-mcp-server/internal/trello"
)

// cli carries what every subcommand needs.
type cli struct {
	in         io.Reader
	out        io.Writer
	configFile string
	envFile    string
	verbose    bool
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:           "trello",
		Short:         "Inspect and call the Trello endpoint catalog",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringP("format", "F", formatText, "output format: text|json|yaml")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (overrides TRELLO_MCP_CONFIG)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "dotenv file to load (default .env)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		c.newListCmd(),
		c.newDescribeCmd(),
		c.newCallCmd(),
		c.newVerifyCmd(),
		c.newLoginCmd(),
		c.newLogoutCmd(),
	)
	return root
}

func (c *cli) loadConfig() (*config.Config, error) {
	return config.Load(config.Options{EnvFile: c.envFile, ConfigFile: c.configFile})
}

func (c *cli) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (c *cli) loadCatalog(ctx context.Context, cfg *config.Config) (*trello.Catalog, error) {
	return trello.Load(ctx, trello.Options{
		OpenAPIFile: cfg.OpenAPISpec,
		ReadOnly:    cfg.ReadOnly,
		Categories:  cfg.Categories,
	})
}

func provider(cfg *config.Config) credentials.Provider {
	return credentials.ForSource(cfg.CredentialSource, cfg.KeyringAccount, credentials.Credentials{
		Key:   cfg.APIKey,
		Token: cfg.APIToken,
	})
}

type toolSummary struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Title    string `json:"title"`
}

func (c *cli) newListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tools in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := c.loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if category != "" {
				catalog = catalog.Filter(trello.InCategories(strings.ToLower(category)))
			}

			summaries := make([]toolSummary, 0, catalog.Len())
			for _, d := range catalog.All() {
				summaries = append(summaries, toolSummary{
					Name:     d.Name,
					Category: d.Category,
					Method:   d.Method,
					Path:     d.Path,
					Title:    d.Title,
				})
			}

			return writeOutput(c.out, summaries, outputFormat(cmd), func() string {
				var sb strings.Builder
				tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tCATEGORY\tMETHOD\tPATH")
				for _, s := range summaries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Category, s.Method, s.Path)
				}
				tw.Flush()
				return strings.TrimRight(sb.String(), "\n")
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only list one category")
	return cmd
}

type paramSummary struct {
	Name        string   `json:"name"`
	In          string   `json:"in"`
	Type        string   `json:"type"`
	Required    bool     `json:"required,omitempty"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

type toolDetail struct {
	toolSummary
	Description string         `json:"description"`
	Params      []paramSummary `json:"params"`
}

func (c *cli) newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <tool>",
		Short: "Show a tool's endpoint and parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := c.loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			d, ok := catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown tool %q (see trello list)", args[0])
			}

			detail := toolDetail{
				toolSummary: toolSummary{Name: d.Name, Category: d.Category, Method: d.Method, Path: d.Path, Title: d.Title},
				Description: d.Description,
			}
			for _, p := range d.Params {
				detail.Params = append(detail.Params, paramSummary{
					Name:        p.Name,
					In:          string(p.In),
					Type:        string(p.Type),
					Required:    p.Required,
					Description: p.Description,
					Enum:        p.Enum,
				})
			}

			return writeOutput(c.out, detail, outputFormat(cmd), func() string {
				var sb strings.Builder
				fmt.Fprintf(&sb, "%s  %s %s\n\n%s\n", d.Name, d.Method, d.Path, d.Description)
				if len(detail.Params) > 0 {
					sb.WriteString("\nParameters:\n")
					tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
					for _, p := range detail.Params {
						req := ""
						if p.Required {
							req = "required"
						}
						fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", p.Name, p.In, p.Type, req, p.Description)
					}
					tw.Flush()
				}
				return strings.TrimRight(sb.String(), "\n")
			})
		},
	}
}

func (c *cli) newCallCmd() *cobra.Command {
	var pairs []string
	var rawJSON string

	cmd := &cobra.Command{
		Use:   "call <tool> [-a name=value ...]",
		Short: "Invoke a tool against the Trello API",
		Long: `Invoke a tool once and print Trello's response.

Arguments come from --json (an object) and repeated -a name=value flags;
-a wins on conflicts. Values that parse as JSON (numbers, true/false,
arrays, objects) are passed typed; anything else is a string.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := c.loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			d, ok := catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown tool %q (see trello list)", args[0])
			}

			callArgs, err := parseArguments(d, rawJSON, pairs)
			if err != nil {
				return err
			}

			logger := c.logger(cmd)
			client := base.NewClient(
				base.WithLogger(logger),
				base.WithTimeout(cfg.Timeout),
				base.WithMaxConcurrent(cfg.MaxConcurrent),
			)
			defer client.Close()

			transport := base.NewTransport(cfg.BaseURL, client)
			transport.UserAgent = cfg.UserAgent

			invoker := endpoint.NewInvoker(transport, provider(cfg), endpoint.WithLogger(logger))
			res, err := invoker.Invoke(cmd.Context(), d, callArgs)
			if err != nil {
				return err
			}

			if res.NoContent {
				return writeOutput(c.out, map[string]any{"status": res.StatusCode, "no_content": true}, outputFormat(cmd), nil)
			}
			return writeOutput(c.out, res.Value, outputFormat(cmd), nil)
		},
	}
	cmd.Flags().StringArrayVarP(&pairs, "arg", "a", nil, "argument as name=value (repeatable)")
	cmd.Flags().StringVar(&rawJSON, "json", "", "arguments as a JSON object")
	return cmd
}

// parseArguments merges a JSON object with name=value pairs. Pair values are
// converted to the type the tool declares for that argument.
func parseArguments(d endpoint.Descriptor, rawJSON string, pairs []string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(rawJSON) != "" {
		dec := json.NewDecoder(strings.NewReader(rawJSON))
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			return nil, fmt.Errorf("--json must be a JSON object: %w", err)
		}
	}

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("argument %q must look like name=value", pair)
		}
		p, ok := d.Param(name)
		if !ok {
			return nil, fmt.Errorf("%s has no argument %q (see trello describe %s)", d.Name, name, d.Name)
		}
		v, err := parseValue(p, value)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", name, err)
		}
		args[name] = v
	}
	return args, nil
}

// parseValue converts a command-line value to p's declared type. Strings are
// taken verbatim, so "null" and "true" stay text.
func parseValue(p endpoint.Param, value string) (any, error) {
	if p.Type == endpoint.String {
		return value, nil
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("a %s value is required", p.Type)
	}

	switch p.Type {
	case endpoint.Boolean:
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", value)
		}
		return b, nil
	case endpoint.Integer:
		if _, err := strconv.ParseInt(trimmed, 10, 64); err != nil {
			return nil, fmt.Errorf("%q is not an integer", value)
		}
		return json.Number(trimmed), nil
	case endpoint.Number:
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return nil, fmt.Errorf("%q is not a number", value)
		}
		return json.Number(trimmed), nil
	case endpoint.Array:
		if !strings.HasPrefix(trimmed, "[") {
			items := []any{}
			for _, item := range strings.Split(trimmed, ",") {
				items = append(items, strings.TrimSpace(item))
			}
			return items, nil
		}
		var items []any
		if err := decodeJSON(trimmed, &items); err != nil || items == nil {
			return nil, fmt.Errorf("%q is not a JSON array", value)
		}
		return items, nil
	case endpoint.Object:
		var obj map[string]any
		if err := decodeJSON(trimmed, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("%q is not a JSON object", value)
		}
		return obj, nil
	}
	return value, nil
}

func decodeJSON(data string, v any) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func (c *cli) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the configured credentials reach Trello",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			creds, err := provider(cfg).Credentials(cmd.Context())
			if err != nil {
				return fmt.Errorf("resolving credentials: %w", err)
			}
			member, err := credentials.Verify(cmd.Context(), creds, cfg.BaseURL, nil)
			if err != nil {
				return err
			}
			return writeOutput(c.out, member, outputFormat(cmd), func() string {
				return fmt.Sprintf("Authenticated as %s (%s)", member.Username, member.FullName)
			})
		},
	}
}

func (c *cli) newLoginCmd() *cobra.Command {
	var key, token string
	var skipVerify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key and token in the OS keychain",
		Long: `Store Trello credentials in the OS keychain.

Get a key at https://trello.com/power-ups/admin and generate a token from
the same page. Values not given as flags are read from stdin, one per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(c.in)
			if key == "" {
				if key, err = prompt(cmd, reader, "API key: "); err != nil {
					return err
				}
			}
			if token == "" {
				if token, err = prompt(cmd, reader, "API token: "); err != nil {
					return err
				}
			}
			creds := credentials.Credentials{Key: key, Token: token}
			if !creds.Complete() {
				return errors.New("both an API key and a token are required")
			}

			if !skipVerify {
				member, err := credentials.Verify(cmd.Context(), creds, cfg.BaseURL, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Verified as %s\n", member.Username)
			}

			if err := credentials.NewKeyring(cfg.KeyringAccount).Save(creds); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Saved credentials to keychain account %q\n", cfg.KeyringAccount)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Trello API key")
	cmd.Flags().StringVar(&token, "token", "", "Trello API token")
	cmd.Flags().BoolVar(&skipVerify, "no-verify", false, "skip the /members/me check")
	return cmd
}

func prompt(cmd *cobra.Command, r *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials from the OS keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := credentials.NewKeyring(cfg.KeyringAccount).Delete(); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Removed keychain account %q\n", cfg.KeyringAccount)
			return nil
		},
	}
}

