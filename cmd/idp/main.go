package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/angryss/idp-cli/pkg/logging"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

var commonCfg struct {
	verbose  bool
	jsonLogs bool

	apiURL string
	apiKey string
}

const defaultAPIURL = "https://api.idp.angryss.com"

func main() {
	rootCmd := &cobra.Command{
		Use:           "idp",
		Short:         "Generate infrastructure-as-code from IDP blueprints and stacks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.LogOpts{
				Verbose:  commonCfg.verbose,
				Encoding: encoding(),
			})
			if commonCfg.apiKey == "" {
				commonCfg.apiKey = os.Getenv("IDP_API_KEY")
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&commonCfg.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&commonCfg.jsonLogs, "json-logs", false, "Emit logs as JSON")
	flags.StringVar(&commonCfg.apiURL, "api-url", defaultAPIURL, "Base URL of the IDP API")
	flags.StringVar(&commonCfg.apiKey, "api-key", "", "API key (defaults to IDP_API_KEY)")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newListVariablesCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		zap.S().Error(err)
		os.Exit(1)
	}
}

func encoding() string {
	if commonCfg.jsonLogs {
		return "json"
	}
	return "console"
}

func requireAPIKey() error {
	if commonCfg.apiKey == "" {
		return fmt.Errorf("no API key provided: pass --api-key or set IDP_API_KEY")
	}
	return nil
}
