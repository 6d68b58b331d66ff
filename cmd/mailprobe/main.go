// Command mailprobe verifies email deliverability from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/optimode/mailprobe"
	"github.com/optimode/mailprobe/internal/config"
	"github.com/optimode/mailprobe/internal/logging"
)

const version = "1.2.0"

var (
	cfgFile    string
	jsonOut    bool
	noSMTP     bool
	noCatchAll bool
	timeoutMS  int
	noColor    bool

	exitCode int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

var rootCmd = &cobra.Command{
	Use:     "mailprobe",
	Short:   "Verify email deliverability without sending mail",
	Version: version,
	Long: `mailprobe checks whether an address is likely to accept mail:
syntax validation, MX resolution, a throttled SMTP RCPT TO probe and
catch-all differentiation, scored into a calibrated confidence.`,
}

var checkCmd = &cobra.Command{
	Use:   "check <email>...",
	Short: "Verify one or more email addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "print the version and exit")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	checkCmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "emit raw JSON results")
	checkCmd.Flags().BoolVar(&noSMTP, "no-smtp", false, "skip the SMTP probe")
	checkCmd.Flags().BoolVar(&noCatchAll, "no-catchall", false, "skip catch-all detection")
	checkCmd.Flags().IntVarP(&timeoutMS, "timeout", "t", 0, "SMTP operation timeout in milliseconds")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return err
	}

	opts := mailprobe.Options{
		DNSTimeout:    time.Duration(cfg.Verify.DNSTimeoutMS) * time.Millisecond,
		SMTPTimeout:   time.Duration(cfg.Verify.SMTPTimeoutMS) * time.Millisecond,
		SMTPCheck:     cfg.Verify.SMTPCheck && !noSMTP,
		CatchAllCheck: cfg.Verify.CatchAllCheck && !noCatchAll,
		SenderEmail:   cfg.Verify.SenderEmail,
		SMTPPort:      cfg.Verify.SMTPPort,
	}
	if timeoutMS > 0 {
		opts.SMTPTimeout = time.Duration(timeoutMS) * time.Millisecond
	}

	engine := mailprobe.NewEngineWithLogger(logger, opts)

	var bar *progressbar.ProgressBar
	if !jsonOut && len(args) > 3 {
		bar = progressbar.NewOptions(len(args),
			progressbar.OptionSetDescription("probing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := make([]mailprobe.VerificationResult, 0, len(args))
	for _, email := range args {
		res, err := engine.VerifyEmail(cmd.Context(), email)
		if err != nil {
			return err
		}
		results = append(results, res)
		if bar != nil {
			_ = bar.Add(1)
		}
		if !res.Valid {
			exitCode = 1
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if jsonOut {
		return printJSON(cmd, results)
	}
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		printHuman(cmd, res)
	}
	return nil
}

func printJSON(cmd *cobra.Command, results []mailprobe.VerificationResult) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

func printHuman(cmd *cobra.Command, res mailprobe.VerificationResult) {
	out := cmd.OutOrStdout()

	verdict := color.New(color.FgGreen, color.Bold).Sprint("VALID")
	if !res.Valid {
		verdict = color.New(color.FgRed, color.Bold).Sprint("INVALID")
	} else if res.Checks.IsUnknown {
		verdict = color.New(color.FgYellow, color.Bold).Sprint("RISKY")
	}

	fmt.Fprintf(out, "%s  %s  (confidence %.2f)\n", verdict, color.CyanString(res.Email), res.Confidence)

	rows := [][2]string{
		{"syntax", boolMark(res.Checks.IsValidSyntax)},
		{"domain", boolMark(res.Checks.IsValidDomain)},
		{"smtp", string(res.Details.SmtpStatus)},
		{"deliverable", boolMark(res.Checks.IsDeliverable)},
		{"catch-all", catchAllMark(res.Details.CatchAll)},
		{"disposable", boolMark(res.Checks.IsDisposableEmail)},
		{"role account", boolMark(res.Checks.IsRoleBasedAccount)},
		{"free provider", boolMark(res.Checks.IsFreeEmailProvider)},
		{"safe to send", boolMark(res.IsSafeToSend)},
	}
	if res.Details.Provider != nil {
		rows = append(rows, [2]string{"provider", res.Details.Provider.Name})
	}
	if res.Details.DidYouMean != "" {
		rows = append(rows, [2]string{"did you mean", color.YellowString(res.Details.DidYouMean)})
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %-14s %s\n", row[0], row[1])
	}

	if len(res.Details.ConfidenceReasons) > 0 {
		fmt.Fprintf(out, "  %-14s %s\n", "reasons", strings.Join(res.Details.ConfidenceReasons, "; "))
	}
}

func boolMark(v bool) string {
	if v {
		return color.GreenString("yes")
	}
	return color.HiBlackString("no")
}

func catchAllMark(v *bool) string {
	if v == nil {
		return color.HiBlackString("n/a")
	}
	if *v {
		return color.YellowString("yes")
	}
	return color.GreenString("no")
}
