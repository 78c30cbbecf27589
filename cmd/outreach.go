package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/alumni-referrer/internal/outreach"
	"github.com/spigell/alumni-referrer/internal/referral"
)

var outreachCmd = &cobra.Command{
	Use:   "outreach <alumni-id>",
	Short: "Generate outreach messages for one alumnus",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runOutreach(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(outreachCmd)

	outreachCmd.Flags().StringP("profile", "p", "", "JSON file with the student profile (default is the profile config section)")
	outreachCmd.Flags().StringP("type", "t", "", "message type: linkedin, email or follow_up (default is outreach.message-type)")
	outreachCmd.Flags().String("target-role", "", "role the referral is for")
	outreachCmd.Flags().String("target-company", "", "organization the referral is for")
	outreachCmd.Flags().Bool("referral-path", false, "also print the referral path analysis")
}

func runOutreach(cmd *cobra.Command, id string) {
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

	candidate, err := st.GetByID(ctx, id)
	if err != nil {
		logger.Fatal("getting the alumnus", zap.String("candidate_id", id), zap.Error(err))
	}

	messageType, _ := cmd.Flags().GetString("type")
	if messageType == "" {
		messageType = config.Outreach.MessageType
	}
	targetRole, _ := cmd.Flags().GetString("target-role")
	targetCompany, _ := cmd.Flags().GetString("target-company")

	composer := newComposer(ctx, config, nil, logger)
	err = printOutreach(ctx, composer, outreach.Request{
		Profile:            profile,
		Candidate:          candidate,
		MessageType:        messageType,
		TargetRole:         targetRole,
		TargetOrganization: targetCompany,
	}, logger)
	if err != nil {
		logger.Fatal("composing outreach", zap.Error(err))
	}

	if withPath, _ := cmd.Flags().GetBool("referral-path"); withPath {
		if err := printReferralPath(referral.NewAnalyzer(), profile, candidate, logger); err != nil {
			logger.Fatal("analyzing the referral path", zap.Error(err))
		}
	}
}
