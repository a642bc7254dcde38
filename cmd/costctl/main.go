package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/emergency-response/internal/application"
	appquota "github.com/bryanwahyu/emergency-response/internal/application/quota"
	"github.com/bryanwahyu/emergency-response/internal/config"
	domquota "github.com/bryanwahyu/emergency-response/internal/domain/quota"
	filestore "github.com/bryanwahyu/emergency-response/internal/infra/counterstore/file"
	mysqlstore "github.com/bryanwahyu/emergency-response/internal/infra/counterstore/mysql"
	pgstore "github.com/bryanwahyu/emergency-response/internal/infra/counterstore/postgres"
)

// costctl monitors and controls API usage without going through the server.
// Demo mode and limits are env-file settings, so changing them here takes
// effect on the next server restart.

const envFile = ".env"

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "costctl",
		Short: "Cost protection admin for the emergency response service",
	}
	root.AddCommand(statusCmd(), resetCmd(), demoCmd(), limitsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadQuota() (*appquota.Service, error) {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	var store domquota.CounterStore
	switch cfg.CostProtection.StoreDriver {
	case "mysql":
		store, err = mysqlstore.Connect(context.Background(), cfg.CostProtection.DSN)
	case "postgres":
		store, err = pgstore.Connect(context.Background(), cfg.CostProtection.DSN)
	default:
		store, err = filestore.New(cfg.CostProtection.UsageFile)
	}
	if err != nil {
		return nil, err
	}
	return appquota.NewService(store, cfg.DailyLimits(), application.SystemClock{}, cfg.CostProtection.DemoMode), nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's API usage against limits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := loadQuota()
			if err != nil {
				return err
			}
			report, err := svc.Report(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println("API USAGE REPORT")
			fmt.Println(strings.Repeat("=", 50))
			fmt.Printf("Date: %s\nDemo mode: %v\n\n", report.Date, report.DemoMode)
			for _, res := range []domquota.Resource{
				domquota.ResourceOpenAI, domquota.ResourceGoogleMaps, domquota.ResourceTwilioCalls,
			} {
				u := report.Usage[res]
				status := "Safe"
				if u.Limit > 0 && float64(u.Used) > float64(u.Limit)*0.8 {
					status = "NEAR LIMIT"
				}
				fmt.Printf("%s:\n   Used: %d/%d\n   Cost: $%.4f\n   Status: %s\n\n",
					res, u.Used, u.Limit, u.Cost, status)
			}
			fmt.Printf("TOTAL TODAY'S COST: $%.4f\n", report.TotalCost)
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset today's usage counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := loadQuota()
			if err != nil {
				return err
			}
			if err := svc.ResetToday(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Today's usage counters reset")
			return nil
		},
	}
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "demo [on|off]",
		Short:     "Enable or disable demo mode (takes effect on restart)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(_ *cobra.Command, args []string) error {
			on := args[0] == "on"
			if err := updateEnvVar("DEMO_MODE", fmt.Sprintf("%v", on)); err != nil {
				return err
			}
			if on {
				fmt.Println("Demo mode ENABLED - no API charges will occur")
			} else {
				fmt.Println("Demo mode DISABLED - live API calls enabled, charges may apply")
			}
			fmt.Println("Restart the server to apply changes")
			return nil
		},
	}
}

func limitsCmd() *cobra.Command {
	var openai, gmaps, calls, minutes int
	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Set custom daily usage limits (takes effect on restart)",
		RunE: func(_ *cobra.Command, _ []string) error {
			updates := map[string]int{}
			if openai >= 0 {
				updates["MAX_DAILY_OPENAI_REQUESTS"] = openai
			}
			if gmaps >= 0 {
				updates["MAX_DAILY_GOOGLE_REQUESTS"] = gmaps
			}
			if calls >= 0 {
				updates["MAX_DAILY_TWILIO_CALLS"] = calls
			}
			if minutes >= 0 {
				updates["MAX_DAILY_TWILIO_MINUTES"] = minutes
			}
			if len(updates) == 0 {
				return fmt.Errorf("no limits given, see --help")
			}
			for key, value := range updates {
				if err := updateEnvVar(key, fmt.Sprintf("%d", value)); err != nil {
					return err
				}
				fmt.Printf("   %s: %d\n", key, value)
			}
			fmt.Println("Restart the server to apply changes")
			return nil
		},
	}
	cmd.Flags().IntVar(&openai, "openai", -1, "max daily OpenAI requests")
	cmd.Flags().IntVar(&gmaps, "google", -1, "max daily Google Maps requests")
	cmd.Flags().IntVar(&calls, "twilio-calls", -1, "max daily Twilio calls")
	cmd.Flags().IntVar(&minutes, "twilio-minutes", -1, "max daily Twilio minutes")
	return cmd
}

// updateEnvVar rewrites (or appends) one KEY=value line in .env.
func updateEnvVar(key, value string) error {
	var lines []string
	if b, err := os.ReadFile(envFile); err == nil {
		lines = strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	} else if !os.IsNotExist(err) {
		return err
	}

	found := false
	for i, line := range lines {
		if strings.HasPrefix(line, key+"=") {
			lines[i] = key + "=" + value
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, key+"="+value)
	}

	out := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(envFile, []byte(out), 0o644); err != nil {
		return err
	}
	log.Printf("updated %s in %s", key, envFile)
	return nil
}
