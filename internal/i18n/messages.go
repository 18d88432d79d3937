// Package i18n provides internationalization support for the financial researcher.
// All user-facing strings are centralized here for future localization.
package i18n

// Message keys organized by functional area.
// The current implementation uses English (en-US) as the default.

// Common messages
const (
	MsgCancelled = "cancelled"

	// Input prompts
	MsgCompanyPrompt        = "Enter the company name to research: "
	MsgTextinputPlaceholder = "e.g. Acme Corp"
	MsgTextinputSubmitHint  = "Enter to confirm, Ctrl+D to end input, Esc to cancel"
	MsgConfirmOverwrite     = "Overwrite it?"
)

// Command descriptions
const (
	CmdRootShort = "Research a company with a crew of AI agents"
	CmdRootLong  = `Financial Researcher - runs a crew of AI agents against a company.

The crew researches the company (status, history, challenges, news, outlook)
and an analyst turns the findings into a report. The report text is printed
to standard output; progress and errors go to standard error.

Examples:
  financial-researcher                    # prompt for the company name
  financial-researcher --company "Acme"   # no prompt
  echo "Acme Corp" | financial-researcher`

	CmdVersionShort = "Show version information"

	CmdConfigShort = "Manage configuration"
	CmdConfigLong  = `Show or manage financial-researcher configuration.

Examples:
  financial-researcher config           # show current configuration
  financial-researcher config init      # write a default configuration file
  financial-researcher config path      # print the configuration file path`
	CmdConfigShowShort = "Show current configuration"
	CmdConfigInitShort = "Write a default configuration file"
	CmdConfigPathShort = "Print the configuration file path"

	CmdHistoryShort = "Inspect past research runs"
	CmdHistoryLong  = `List, show or clean the recorded research runs.

Examples:
  financial-researcher history
  financial-researcher history show 6f1c...
  financial-researcher history clean`

	CmdHistoryListShort  = "List recorded runs, newest first"
	CmdHistoryShowShort  = "Print the raw result of a recorded run"
	CmdHistoryCleanShort = "Delete all recorded runs"

	CmdCompletionShort = "Generate a shell completion script"
	CmdCompletionLong  = `Generate the completion script for the given shell.

Bash:
  financial-researcher completion bash > /etc/bash_completion.d/financial-researcher

Zsh:
  financial-researcher completion zsh > "${fpath[1]}/_financial-researcher"

Fish:
  financial-researcher completion fish > ~/.config/fish/completions/financial-researcher.fish

PowerShell:
  financial-researcher completion powershell > financial-researcher.ps1`
)

// Flag descriptions
const (
	FlagConfig     = "config file path (default: .financial-researcher.yaml)"
	FlagDryRun     = "run the crew against a placeholder model, no API calls"
	FlagVerbose    = "verbose output"
	FlagDebug      = "debug mode (mirrors the execution log to stderr)"
	FlagQuiet      = "quiet mode, only errors"
	FlagCompany    = "company name; skips the interactive prompt"
	FlagModel      = "default model for agents without an explicit llm"
	FlagOutputDir  = "directory that task output files are written under"
	FlagLimit      = "maximum number of runs to list (0 = all)"
	FlagRaw        = "print only the raw result"
	FlagTranscript = "also print the recorded agent conversations"
	FlagForce      = "do not ask for confirmation"
)

// UI messages
const (
	UIConfiguration = "Current configuration"
	UIHistory       = "Research history"
	UITableKey      = "Setting"
	UITableValue    = "Value"

	UIColID       = "ID"
	UIColCompany  = "Company"
	UIColStatus   = "Status"
	UIColStarted  = "Started"
	UIColDuration = "Duration"
	UIColTokens   = "Tokens"
	UIColReport   = "Report"
	UIColLog      = "Log"
	UITranscript  = "Transcript: %s"

	MsgKickoff          = "Kicking off the crew for %q..."
	MsgTaskStarted      = "Task %d/%d: %s (%s)"
	MsgTaskFinished     = "Task %s finished in %s"
	MsgKickoffDone      = "Crew finished in %s (%d requests, %d tokens)"
	MsgReportWritten    = "Report written: %s"
	MsgLogPath          = "Execution log: %s"
	MsgDryRunNotice     = "[DRY RUN] using a placeholder model, no API calls are made"
	MsgConfigFilePath   = "Config file: %s"
	MsgConfigExists     = "Config file already exists: %s"
	MsgConfigWritten    = "Config file written: %s"
	MsgConfigEditHint   = "Edit this file to customize the crew"
	MsgNoHistory        = "No research runs recorded yet"
	MsgHistoryCleaned   = "Removed all recorded runs"
	MsgCleanWarning     = "About to delete %d recorded runs in %s"
	MsgConfirmClean     = "Delete them?"
	MsgNoTranscript     = "No transcript recorded for this run (enable transcripts in the config)"
	MsgHistorySaveWarn  = "Could not record the run: %s"
	MsgErrorDetail      = "Error: %s"
	MsgErrorCause       = "  caused by: %s"
	MsgSecondsFormat    = "%d s"
	MsgNotSet           = "(not set)"
	MsgSet              = "(set)"
	MsgEmbeddedCrewFile = "(embedded default)"
)

// Error messages
const (
	ErrLoadConfigFailed     = "failed to load config: %w"
	ErrGenerateConfigFailed = "failed to write config file: %w"
	ErrReadConfigFailed     = "error reading config file: %w"
	ErrUnmarshalConfig      = "error unmarshaling config: %w"
	ErrConfigMaxTurns       = "max_turns must be at least 1"
	ErrConfigTimeout        = "timeout must be at least 1 second"
	ErrRunIDRequired        = "a run ID is required"
)

// Error messages for the errors package
const (
	// Error operation names
	ErrOpInput   = "input"
	ErrOpKickoff = "kickoff"
	ErrOpCrew    = "crew"
	ErrOpConfig  = "config"
	ErrOpHistory = "history"

	ErrMsgReadInput     = "failed to read the company name"
	ErrMsgKickoffFailed = "crew kickoff failed"
	ErrMsgCrewConfig    = "invalid crew definition"
	ErrMsgAPIKeyMissing = "no OpenAI API key configured (set OPENAI_API_KEY or openai_api_key)"
	ErrMsgSaveRun       = "failed to record run %s"
	ErrMsgRunNotFound   = "run not found: %s"
)

// Crew prompt fragments
const (
	CrewAgentInstructions = "You are %s.\n%s\n\nYour personal goal is: %s"
	CrewTaskExpected      = "\n\nThis is the expected criteria for your final answer: %s\n" +
		"You MUST return the actual complete content as the final answer, not a summary."
	CrewTaskContext  = "\n\nThis is the context you're working with:\n%s"
	CrewDryRunOutput = "[DRY RUN] %s would answer:\n%s"
)
