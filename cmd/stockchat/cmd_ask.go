package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shanehull/stockchat/internal/notify"
)

var (
	askSession string
	askEmail   bool

	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question and print it",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
)

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "cli", "Conversation session id")
	askCmd.Flags().BoolVarP(&askEmail, "email", "e", false, "Email the answer using the SMTP settings")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	askedAt := time.Now()
	ans := a.pipeline.Ask(ctx, askSession, question)

	digest := notify.Digest{
		Question: question,
		Answer:   ans.Response,
		Label:    string(ans.Label),
		Sources:  ans.Sources,
		Success:  ans.Success,
		AskedAt:  askedAt,
	}
	for _, t := range ans.Symbols {
		digest.Symbols = append(digest.Symbols, string(t))
	}

	notify.ReportAnswer(os.Stdout, digest)

	if !askEmail {
		return nil
	}
	if !cfg.Email.Enabled() {
		log.Warn().Msg("Email requested but SMTP settings are incomplete, skipping")
		return nil
	}

	sender := notify.NewEmailSender(notify.EmailConfig{
		SMTPServer: cfg.Email.SMTPServer,
		SMTPPort:   cfg.Email.SMTPPort,
		SMTPUser:   cfg.Email.SMTPUser,
		SMTPPass:   cfg.Email.SMTPPass,
		FromEmail:  cfg.Email.FromEmail,
		ToEmail:    cfg.Email.ToEmail,
		Enabled:    true,
	}, log)

	if err := notify.NewNotifier(sender).EmailAnswer(digest); err != nil {
		return fmt.Errorf("failed to email answer: %w", err)
	}
	return nil
}
