package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-repo-chat/internal/config"
	"github.com/kurihiro0119/github-repo-chat/internal/domain"
	apperrors "github.com/kurihiro0119/github-repo-chat/internal/errors"
	"github.com/kurihiro0119/github-repo-chat/internal/lister"
	"github.com/kurihiro0119/github-repo-chat/internal/logger"
	"github.com/kurihiro0119/github-repo-chat/pkg/client"
)

var (
	outputJSON bool
	token      string
	useAPI     bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "github-repos",
	Short: "List GitHub repositories",
	Long: `A CLI tool for listing the repositories of a GitHub account.

Without an account the repositories of the token's owner are listed,
including private ones. The token is read from --token or
GITHUB_PERSONAL_ACCESS_TOKEN (or .env).`,
	SilenceUsage: true,
}

var listCmd = &cobra.Command{
	Use:   "list [account]",
	Short: "List repositories",
	Long:  `List the repositories of a GitHub account, or of the authenticated user when no account is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [owner/name]",
	Short: "Show one repository",
	Long: `Display the details of one repository of an account.

The owner's public listing is searched first. When the repository is not
there, the repositories of the token's owner are searched as well, which
includes private ones.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "GitHub token (default GITHUB_PERSONAL_ACCESS_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&useAPI, "api", false, "go through a running server at API_ENDPOINT")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log GitHub requests")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// fetchFunc loads the repositories of an account, "" meaning the token's owner
type fetchFunc func(ctx context.Context, account string) ([]domain.RepositorySummary, error)

func newFetcher() (fetchFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if useAPI {
		c := client.NewClient(cfg.APIEndpoint)
		return func(ctx context.Context, account string) ([]domain.RepositorySummary, error) {
			return c.LoadRepositories(ctx, token, account)
		}, nil
	}

	level := "warn"
	if verbose {
		level = logrus.DebugLevel.String()
	}
	l, err := lister.NewGitHubLister(lister.Options{
		BaseURL:  cfg.GitHubAPIURL,
		PerPage:  cfg.PerPage,
		MaxPages: cfg.MaxPages,
		Timeout:  cfg.HTTPTimeout,
		Logger:   logger.NewWithOutput(level, os.Stderr),
	})
	if err != nil {
		return nil, err
	}

	resolved := strings.TrimSpace(token)
	if resolved == "" {
		resolved = cfg.GitHubToken
	}
	return func(ctx context.Context, account string) ([]domain.RepositorySummary, error) {
		return l.ListRepositories(ctx, resolved, account)
	}, nil
}

func runList(cmd *cobra.Command, args []string) error {
	account := ""
	if len(args) == 1 {
		account = args[0]
	}

	fetch, err := newFetcher()
	if err != nil {
		return err
	}

	repos, err := fetch(cmd.Context(), account)
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	if outputJSON {
		return writeJSON(os.Stdout, repos)
	}

	if account == "" {
		fmt.Printf("\nRepositories of the authenticated user\n\n")
	} else {
		fmt.Printf("\nRepositories: %s\n\n", account)
	}
	renderList(os.Stdout, repos)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	fetch, err := newFetcher()
	if err != nil {
		return err
	}

	repo, err := findRepository(cmd.Context(), fetch, args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(os.Stdout, repo)
	}

	fmt.Printf("\nRepository: %s\n\n", repo.FullName)
	renderDetail(os.Stdout, repo)
	return nil
}

// findRepository looks fullName up in its owner's listing, then in the
// authenticated user's listing, which also holds private repositories
func findRepository(ctx context.Context, fetch fetchFunc, fullName string) (domain.RepositorySummary, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return domain.RepositorySummary{}, apperrors.NewBadRequestError(fmt.Sprintf("invalid repository name %q, expected owner/name", fullName))
	}

	for _, account := range []string{owner, ""} {
		repos, err := fetch(ctx, account)
		if err != nil {
			return domain.RepositorySummary{}, fmt.Errorf("failed to list repositories: %w", err)
		}
		if repo, found := domain.FindByFullName(repos, fullName); found {
			return repo, nil
		}
	}

	return domain.RepositorySummary{}, apperrors.NewNotFoundError("repository " + fullName)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderList(w io.Writer, repos []domain.RepositorySummary) {
	if len(repos) == 0 {
		fmt.Fprintln(w, "No repositories found")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Repository", "Language", "Stars", "Visibility", "Updated"})
	for _, r := range repos {
		table.Append([]string{
			r.FullName,
			r.LanguageOr("-"),
			strconv.Itoa(r.StarCount),
			r.Visibility(),
			r.UpdatedDate(),
		})
	}
	table.SetFooter([]string{"", "", "", "Total", strconv.Itoa(len(repos))})
	table.Render()
}

func renderDetail(w io.Writer, r domain.RepositorySummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	table.Append([]string{"Name", r.Name})
	table.Append([]string{"Description", r.DescriptionOr("-")})
	table.Append([]string{"Language", r.LanguageOr("Not specified")})
	table.Append([]string{"Stars", strconv.Itoa(r.StarCount)})
	table.Append([]string{"Forks", strconv.Itoa(r.ForksCount)})
	table.Append([]string{"Visibility", r.Visibility()})
	if updated := r.UpdatedDate(); updated != "" {
		table.Append([]string{"Updated", updated})
	}
	table.Append([]string{"URL", r.URL})
	table.Render()
}
