package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/mark-c-hall/moviecards/internal/config"
	"github.com/mark-c-hall/moviecards/internal/logging"
	"github.com/mark-c-hall/moviecards/internal/models"
	"github.com/mark-c-hall/moviecards/internal/moviecards"
	"github.com/mark-c-hall/moviecards/internal/rest"
)

const RootHelp = `moviecards lists, fetches and saves actors and movies on a moviecards service.

The service URL comes from --api-url, or MOVIECARDS_API_URL, or defaults to
` + config.DefaultAPIURL + `.`

const (
	ExitOK       = 0
	ExitError    = 1
	ExitNotFound = 2
)

type options struct {
	apiURL   string
	output   string
	logLevel string

	catalog *moviecards.Catalog
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := RootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if moviecards.IsNotFound(err) {
		return ExitNotFound
	}
	return ExitError
}

func RootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:               "moviecards",
		Short:             "Client for the moviecards service",
		Long:              RootHelp,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Base URL of the moviecards service")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "Output format (json, yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if opts.output != "json" && opts.output != "yaml" {
			return fmt.Errorf("invalid output format %q: want json or yaml", opts.output)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if opts.apiURL != "" {
			cfg.Client.APIURL = opts.apiURL
		}
		level := cfg.LogLevel
		if opts.logLevel != "" {
			level = opts.logLevel
		}

		logger, err := logging.New(cmd.ErrOrStderr(), level, logging.FormatText)
		if err != nil {
			return err
		}
		logger.Debug("using moviecards service", "api_url", cfg.Client.APIURL)

		opts.catalog = moviecards.NewCatalog(rest.NewClient(cfg.Client, logger), cfg.Client.APIURL)
		return nil
	}

	rootCmd.AddCommand(
		resourceCmd("actors", "actor", opts, func() moviecards.Service[models.Actor] { return opts.catalog.Actors }),
		resourceCmd("movies", "movie", opts, func() moviecards.Service[models.Movie] { return opts.catalog.Movies }),
	)

	return rootCmd
}

// resourceCmd builds the list/get/save group for one collection. svc is
// resolved lazily because the catalog only exists after PersistentPreRunE.
func resourceCmd[T any](name, singular string, opts *options, svc func() moviecards.Service[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Manage %s", name),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List all %s", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := svc().GetAll(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.output, items)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s", singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid %s id %q", singular, args[0])
			}
			item, err := svc().GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.output, item)
		},
	}

	var file string
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: fmt.Sprintf("Create or update a %s from JSON (id 0 creates)", singular),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := readEntity[T](cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			saved, err := svc().Save(cmd.Context(), entity)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), opts.output, saved)
		},
	}
	saveCmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file to read, - for stdin")

	cmd.AddCommand(listCmd, getCmd, saveCmd)
	return cmd
}

func readEntity[T any](stdin io.Reader, file string) (T, error) {
	var entity T

	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return entity, fmt.Errorf("error opening %s: %w", file, err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entity); err != nil {
		if errors.Is(err, io.EOF) {
			return entity, errors.New("no JSON input")
		}
		return entity, fmt.Errorf("error decoding input: %w", err)
	}
	return entity, nil
}

func printResult(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml":
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	_, err = w.Write(data)
	return err
}
