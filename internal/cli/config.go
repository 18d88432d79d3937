package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kokjohn0824/financial-researcher/internal/config"
	"github.com/kokjohn0824/financial-researcher/internal/i18n"
	"github.com/kokjohn0824/financial-researcher/internal/ui"
)

const defaultConfigFile = ".financial-researcher.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: i18n.CmdConfigShort,
	Long:  i18n.CmdConfigLong,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: i18n.CmdConfigShowShort,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		ui.PrintHeader(w, i18n.UIConfiguration)
		configTable(cfg).Render(w)

		fmt.Fprintln(w)
		ui.PrintInfo(w, fmt.Sprintf(i18n.MsgConfigFilePath, configFilePath()))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: i18n.CmdConfigInitShort,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.ErrOrStderr()
		path := defaultConfigFile
		if cfgFile != "" {
			path = cfgFile
		}

		if _, err := os.Stat(path); err == nil {
			ui.PrintWarning(w, fmt.Sprintf(i18n.MsgConfigExists, path))
			prompt := ui.NewPrompt(cmd.InOrStdin(), w)
			ok, err := prompt.Confirm(i18n.MsgConfirmOverwrite, false)
			if err != nil || !ok {
				return nil
			}
		}

		if err := config.GenerateDefaultConfigFile(path); err != nil {
			return fmt.Errorf(i18n.ErrGenerateConfigFailed, err)
		}

		ui.PrintSuccess(w, fmt.Sprintf(i18n.MsgConfigWritten, path))
		ui.PrintInfo(w, i18n.MsgConfigEditHint)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: i18n.CmdConfigPathShort,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configFilePath())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	// Default subcommand is show
	configCmd.RunE = configShowCmd.RunE
}

func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetConfigFilePath()
}

// configTable lists the effective settings. The API key itself is never shown.
func configTable(c *config.Config) *ui.Table {
	apiKey := i18n.MsgNotSet
	if c.OpenAIAPIKey != "" {
		apiKey = i18n.MsgSet
	}
	baseURL := c.OpenAIBaseURL
	if baseURL == "" {
		baseURL = i18n.MsgNotSet
	}
	crewFile := c.CrewFile
	if crewFile == "" {
		crewFile = i18n.MsgEmbeddedCrewFile
	}

	table := ui.NewTable(i18n.UITableKey, i18n.UITableValue)
	table.AddRow("Model", c.Model)
	table.AddRow("OpenAI API Key", apiKey)
	table.AddRow("OpenAI Base URL", baseURL)
	table.AddRow("Responses API", strconv.FormatBool(c.UseResponses))
	table.AddRow("Web Search", strconv.FormatBool(c.WebSearch))
	table.AddRow("Max Turns", strconv.Itoa(c.MaxTurns))
	table.AddRow("Timeout", fmt.Sprintf(i18n.MsgSecondsFormat, c.Timeout))
	table.AddRow("Tracing", strconv.FormatBool(c.Tracing))
	table.AddRow("Crew File", crewFile)
	table.AddRow("Output Dir", c.OutputDir)
	table.AddRow("Logs Dir", c.LogsDir)
	table.AddRow("History Dir", c.HistoryDir)
	table.AddRow("Transcripts", strconv.FormatBool(c.Transcripts))
	return table
}
