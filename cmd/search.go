package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/outreach"
	"github.com/spigell/alumni-referrer/internal/referral"
	"github.com/spigell/alumni-referrer/internal/search"
)

const (
	PromptShowResults = "Show ranked alumni"
	PromptReport      = "Report by organization"
	PromptOutreach    = "Generate outreach for an alumnus"
	PromptReferral    = "Analyze referral path for an alumnus"
	PromptDump        = "Dump results to file"
	PromptExit        = "Exit"
	PromptBack        = "back"
)

var errExit = errors.New("exit requested")

var actionPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowResults, PromptReport, PromptOutreach, PromptReferral, PromptDump, PromptExit},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Rank alumni for the configured student profile",
	Run: func(cmd *cobra.Command, _ []string) {
		runSearch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("profile", "p", "", "JSON file with the student profile (default is the profile config section)")
	searchCmd.Flags().IntP("top-k", "k", 0, "number of alumni to return (default is search.top-k)")
	searchCmd.Flags().BoolP("interactive", "i", false, "pick alumni from the results for outreach and referral analysis")
	searchCmd.Flags().BoolP("report", "r", false, "print the results grouped by organization")
	searchCmd.Flags().Bool("dump", false, "dump the results to a temporary file")
}

func runSearch(cmd *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()
	config := mustConfig(logger)

	profile, err := resolveProfile(cmd, config)
	if err != nil {
		logger.Fatal("loading the student profile", zap.Error(err))
	}

	st, err := newStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening the alumni store", zap.Error(err))
	}
	defer st.Close()

	svc, err := newSearchService(config, st, nil, logger)
	if err != nil {
		logger.Fatal("creating the search service", zap.Error(err))
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	result, err := svc.Search(ctx, search.Request{Profile: profile, Filters: config.Filters, TopK: topK})
	if err != nil {
		logger.Fatal("searching alumni", zap.Error(err))
	}

	logger.Info("search finished",
		zap.String("status", result.Status),
		zap.String("search_method", result.SearchMethod),
		zap.Int("total_found", result.TotalFound),
		zap.Int("total_after_filter", result.TotalAfterFilter),
		zap.Int("returned", len(result.Candidates)),
		zap.String("message", result.Message),
	)
	if len(result.InvalidFilters) > 0 {
		logger.Warn("ignored invalid filters", zap.Strings("filters", result.InvalidFilters))
	}

	results := alumni.NewCandidates(result.Candidates)
	if results.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no alumni matched"))
		return
	}

	showResults(results, logger)

	if report, _ := cmd.Flags().GetBool("report"); report {
		printReport(results, logger)
	}
	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		if err := dumpResults(results, logger); err != nil {
			logger.Fatal("dumping results", zap.Error(err))
		}
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive {
		return
	}

	composer := newComposer(ctx, config, nil, logger)
	analyzer := referral.NewAnalyzer()
	for {
		_, action, err := actionPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, results, profile, config, composer, analyzer, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, results *alumni.Candidates, profile *alumni.QueryProfile, config *Config, composer *outreach.Composer, analyzer *referral.Analyzer, logger *zap.Logger) error {
	switch action {
	case PromptShowResults:
		showResults(results, logger)
		return nil
	case PromptReport:
		printReport(results, logger)
		return nil
	case PromptDump:
		return dumpResults(results, logger)
	case PromptOutreach, PromptReferral:
		candidate, err := pickCandidate(results)
		if err != nil || candidate == nil {
			return err
		}
		if action == PromptReferral {
			return printReferralPath(analyzer, profile, candidate, logger)
		}
		return printOutreach(ctx, composer, outreach.Request{
			Profile:     profile,
			Candidate:   candidate,
			MessageType: config.Outreach.MessageType,
		}, logger)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// pickCandidate returns nil when the user goes back.
func pickCandidate(results *alumni.Candidates) (*alumni.Candidate, error) {
	items := make([]string, 0, results.Len()+1)
	for _, c := range results.Items {
		items = append(items, fmt.Sprintf("%s %s / %s / %s / %.2f", c.ID, c.Name, c.Organization, c.Title, c.Score))
	}

	candidatePrompt := promptui.Select{
		Label: "Choose an alumnus and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := candidatePrompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptBack {
		return nil, nil
	}

	id := strings.Split(selected, " ")[0]
	candidate := results.FindByID(id)
	if candidate == nil {
		return nil, fmt.Errorf("there is no such alumni id %s", id)
	}
	return candidate, nil
}

func showResults(results *alumni.Candidates, logger *zap.Logger) {
	for rank, c := range results.Items {
		logger.Info("ranked alumni",
			zap.Int("rank", rank+1),
			zap.String("candidate_id", c.ID),
			zap.String("name", c.Name),
			zap.String("organization", c.Organization),
			zap.String("title", c.Title),
			zap.Float64("match_score", c.Score),
			zap.String("source", c.Source),
			zap.Any("components", c.Components),
		)
	}
}

func printReport(results *alumni.Candidates, logger *zap.Logger) {
	// do not bother error since the report holds only strings
	pretty, _ := json.MarshalIndent(results.ReportByOrganization(), "", "  ")
	logger.Info(string(pretty),
		zap.Int("alumni count", results.Len()),
		zap.Strings("organizations", results.Organizations()),
	)
}

func dumpResults(results *alumni.Candidates, logger *zap.Logger) error {
	filename, err := results.DumpToTmpFile()
	if err != nil {
		return fmt.Errorf("dump results to file: %w", err)
	}
	logger.Info("dumping result to file", zap.String("filename", filename))
	return nil
}

func printOutreach(ctx context.Context, composer *outreach.Composer, req outreach.Request, logger *zap.Logger) error {
	result, err := composer.Compose(ctx, req)
	if err != nil {
		return err
	}
	for _, m := range result.Messages {
		logger.Info(fmt.Sprintf("%s message:\n%s", m.Variant, m.Content),
			zap.String("method", m.Method),
			zap.String("recommended_use", m.RecommendedUse),
		)
	}
	if len(result.SubjectLines) > 0 {
		logger.Info("subject lines", zap.Strings("subjects", result.SubjectLines))
	}
	logger.Info("message tips", zap.Strings("tips", result.Tips))
	return nil
}

func printReferralPath(analyzer *referral.Analyzer, profile *alumni.QueryProfile, candidate *alumni.Candidate, logger *zap.Logger) error {
	path, err := analyzer.Analyze(profile, candidate)
	if err != nil {
		return err
	}
	pretty, _ := json.MarshalIndent(path, "", "  ")
	logger.Info(string(pretty),
		zap.String("candidate_id", path.CandidateID),
		zap.String("connection", path.StrengthLabel),
		zap.Float64("success_probability", path.SuccessProbability),
	)
	return nil
}

// resolveProfile prefers the --profile file over the profile config section.
func resolveProfile(cmd *cobra.Command, config *Config) (*alumni.QueryProfile, error) {
	path, _ := cmd.Flags().GetString("profile")
	if strings.TrimSpace(path) == "" {
		return config.Profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var profile alumni.QueryProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &profile, nil
}
