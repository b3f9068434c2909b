package batchrename

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/thrawn01/batch-rename/overview"
)

// RunCmdOptions contains options for customizing RunCmd behavior
type RunCmdOptions struct {
	// MCPTransport allows providing a custom transport for MCP server (used for testing)
	MCPTransport mcp.Transport
	// Stdin supplies answers to prompts (defaults to os.Stdin)
	Stdin io.Reader
	// Stdout writer for normal output (defaults to os.Stdout)
	Stdout io.Writer
	// Stderr writer for logs and errors (defaults to os.Stderr)
	Stderr io.Writer
	// Now returns the batch start time for timestamp naming (defaults to time.Now)
	Now func() time.Time
}

// commandContext holds runtime context for command execution
type commandContext struct {
	stdin   *bufio.Reader
	stdout  io.Writer
	stderr  io.Writer
	now     func() time.Time
	config  *Config
	log     *slog.Logger
	renamer *DefaultRenamer
}

type globalFlags struct {
	configFile string
	logFile    string
	verbose    bool
	mcp        bool
}

// RunCmd runs the command line in args, where args[0] is the program name.
func RunCmd(args []string, options *RunCmdOptions) error {
	if options == nil {
		options = &RunCmdOptions{}
	}

	cmdCtx := &commandContext{
		stdout: io.Writer(os.Stdout),
		stderr: io.Writer(os.Stderr),
		now:    time.Now,
	}
	stdin := io.Reader(os.Stdin)
	if options.Stdin != nil {
		stdin = options.Stdin
	}
	cmdCtx.stdin = bufio.NewReader(stdin)
	if options.Stdout != nil {
		cmdCtx.stdout = options.Stdout
	}
	if options.Stderr != nil {
		cmdCtx.stderr = options.Stderr
	}
	if options.Now != nil {
		cmdCtx.now = options.Now
	}

	root := newRootCommand(cmdCtx, options)
	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root.ExecuteContext(context.Background())
}

func newRootCommand(cmdCtx *commandContext, options *RunCmdOptions) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "batch-rename",
		Short: "Rename every file in a directory under one prefix, with undo",
		Long: `Batch Rename - rename the files of a directory to <prefix>_<timestamp> or
<prefix>_<number>, keeping their extensions. Every batch is recorded in a JSON
log so it can be undone.

Run without a command for the interactive menu.`,
		Example: `  batch-rename rename ./pixel pixel_art
  batch-rename rename ./cartoon cartoon --sequence 1
  batch-rename undo
  batch-rename overview --base-url https://raw.githubusercontent.com/user/images/master
  batch-rename --mcp --config ~/.config/batch-rename.yaml`,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.setup(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.mcp {
				return RunMCPServer(cmd.Context(), cmdCtx.config, cmdCtx.log, options.MCPTransport)
			}
			cmd.SilenceUsage = true
			return runMenu(cmd.Context(), cmdCtx)
		},
	}

	root.SetIn(cmdCtx.stdin)
	root.SetOut(cmdCtx.stdout)
	root.SetErr(cmdCtx.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Path to configuration file")
	pf.StringVar(&flags.logFile, "log-file", "", "Path of the rename log used for undo (default ./"+DefaultLogFileName+")")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose output")
	root.Flags().BoolVar(&flags.mcp, "mcp", false, "Run as MCP server")

	root.AddCommand(
		newMenuCommand(cmdCtx),
		newRenameCommand(cmdCtx),
		newUndoCommand(cmdCtx),
		newOverviewCommand(cmdCtx),
	)
	return root
}

func (c *commandContext) setup(flags *globalFlags) error {
	config, err := LoadConfig(flags.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.logFile != "" {
		config.LogFile = flags.logFile
		if err := config.resolveLogFile(); err != nil {
			return fmt.Errorf("invalid log file: %w", err)
		}
	}
	c.config = config
	c.log = NewLogger(c.stderr, flags.verbose)

	renamer, err := NewDefaultRenamer(config, c.log)
	if err != nil {
		return fmt.Errorf("failed to create renamer: %w", err)
	}
	c.renamer = renamer
	return nil
}

func newMenuCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu (default when no command is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runMenu(cmd.Context(), cmdCtx)
		},
	}
}

type renameFlags struct {
	sequence  bool
	recursive bool
	yes       bool
	dryRun    bool
	json      bool
}

func newRenameCommand(cmdCtx *commandContext) *cobra.Command {
	flags := &renameFlags{}

	cmd := &cobra.Command{
		Use:   "rename <directory> <prefix> [start]",
		Short: "Rename all files in a directory",
		Long: `Rename all files in <directory> to <prefix>_<YYMMDDHHmm><ext>, or with
--sequence to <prefix>_<NNN><ext> counting from [start] (default 1).`,
		Example: `  batch-rename rename ./pixel pixel_art         # pixel_art_2505261507.png
  batch-rename rename ./cartoon cartoon --sequence 1  # cartoon_001.png`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := PlanOptions{
				Prefix: args[1],
				Mode:   ModeTimestamp,
				Start:  1,
			}
			if flags.sequence {
				opts.Mode = ModeSequence
			}

			if len(args) == 3 {
				if !flags.sequence {
					cmdCtx.log.Warn("start number is only used with --sequence, ignoring", "start", args[2])
				} else {
					start, err := strconv.Atoi(strings.TrimSpace(args[2]))
					if err != nil {
						return fmt.Errorf("%w: %q", ErrInvalidNumber, args[2])
					}
					opts.Start = start
				}
			}

			cmd.SilenceUsage = true
			return renameCommand(cmd.Context(), cmdCtx, args[0], opts, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.sequence, "sequence", false, "Use sequence numbers instead of timestamps")
	cmd.Flags().BoolVarP(&flags.recursive, "recursive", "r", false, "Include files in subdirectories")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Apply without asking for confirmation")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show the plan without renaming anything")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output as JSON")
	return cmd
}

func renameCommand(ctx context.Context, cmdCtx *commandContext, dir string, opts PlanOptions, flags *renameFlags) error {
	if err := cmdCtx.renamer.validator.ValidatePrefix(opts.Prefix); err != nil {
		return err
	}

	// With --json stdout carries only the JSON document.
	human := cmdCtx.stdout
	if flags.json {
		human = cmdCtx.stderr
	}

	files, err := cmdCtx.renamer.Scan(ctx, dir, flags.recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrEmptyFileList, dir)
	}

	_, _ = fmt.Fprintf(human, "Found %d files\n", len(files))
	_, _ = fmt.Fprintf(human, "Prefix: %s\n", strings.TrimSpace(opts.Prefix))
	if opts.Mode == ModeSequence {
		_, _ = fmt.Fprintf(human, "Naming: sequence (start: %d)\n", opts.Start)
	} else {
		_, _ = fmt.Fprintln(human, "Naming: timestamp (YYMMDDHHmm)")
	}

	opts.Now = cmdCtx.now()
	plan, err := cmdCtx.renamer.Plan(files, opts)
	if err != nil {
		return err
	}

	if err := RenderPreview(human, plan, cmdCtx.config.PreviewWidth); err != nil {
		return err
	}

	if flags.dryRun {
		_, _ = fmt.Fprintln(human, "DRY RUN MODE - No files will be renamed")
		if flags.json {
			return encodeJSON(cmdCtx.stdout, plan)
		}
		return nil
	}

	if cmdCtx.renamer.PendingUndo() {
		cmdCtx.log.Warn("the previous batch was never undone; its log will be replaced", "log", cmdCtx.renamer.LogPath())
	}

	if !flags.yes {
		if !cmdCtx.confirm(human, fmt.Sprintf("Rename these %d files? (y/N): ", plan.Len())) {
			_, _ = fmt.Fprintln(human, "Cancelled")
			return nil
		}
	}

	result, execErr := cmdCtx.renamer.Execute(ctx, dir, plan)
	if result == nil {
		return execErr
	}

	if flags.json {
		if err := encodeJSON(cmdCtx.stdout, result); err != nil {
			return err
		}
	} else {
		printExecuteResult(human, result)
	}

	if execErr != nil {
		return execErr
	}
	if !result.Success() {
		return fmt.Errorf("%d of %d renames failed", len(result.Failed), plan.Len())
	}
	return nil
}

func newUndoCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the last batch rename",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return undoCommand(cmd.Context(), cmdCtx, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func undoCommand(ctx context.Context, cmdCtx *commandContext, jsonOutput bool) error {
	result, err := cmdCtx.renamer.Undo(ctx)
	if result == nil {
		return err
	}

	if jsonOutput {
		if err := encodeJSON(cmdCtx.stdout, result); err != nil {
			return err
		}
	} else {
		printUndoResult(cmdCtx.stdout, result)
	}

	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%d renames could not be undone; log kept at %s", len(result.Failed), cmdCtx.renamer.LogPath())
	}
	return nil
}

type overviewFlags struct {
	root    string
	baseURL string
	output  string
	title   string
	json    bool
}

func newOverviewCommand(cmdCtx *commandContext) *cobra.Command {
	flags := &overviewFlags{}

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Generate a Markdown overview of the images in a project",
		Long: `Scan a project for images and write a Markdown file listing them per folder,
linked to --base-url. Everything above the first "---" line of an existing
overview is kept. Without --root, the nearest parent directory that already
contains the overview file is used, or the current directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return overviewCommand(cmd.Context(), cmdCtx, flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "Project root to scan")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "URL prefix images are served from")
	cmd.Flags().StringVar(&flags.output, "output", "", "Overview file name (default "+overview.DefaultOutputFile+")")
	cmd.Flags().StringVar(&flags.title, "title", "", "Title for a new overview")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output as JSON")
	return cmd
}

func overviewCommand(ctx context.Context, cmdCtx *commandContext, flags *overviewFlags) error {
	config := cmdCtx.config.Overview
	if flags.baseURL != "" {
		config.BaseURL = flags.baseURL
	}
	if flags.output != "" {
		config.OutputFile = flags.output
	}
	if flags.title != "" {
		config.Title = flags.title
	}

	root := flags.root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		if root, err = overview.FindProjectRoot(cwd, config.OutputFile); err != nil {
			return err
		}
	}

	generator, err := overview.NewGenerator(config, cmdCtx.log)
	if err != nil {
		return err
	}

	result, err := generator.Generate(ctx, root)
	if err != nil {
		return err
	}

	if flags.json {
		return encodeJSON(cmdCtx.stdout, result)
	}

	_, _ = fmt.Fprintf(cmdCtx.stdout, "Overview updated: %s\n", result.OutputPath)
	_, _ = fmt.Fprintf(cmdCtx.stdout, "%d folders, %d images (%s)\n", result.Folders, result.Images, result.TotalSize)
	if len(result.Added) > 0 || len(result.Removed) > 0 {
		_, _ = fmt.Fprintf(cmdCtx.stdout, "%d added, %d removed since last run\n", len(result.Added), len(result.Removed))
	}
	return nil
}

func (c *commandContext) confirm(w io.Writer, prompt string) bool {
	answer, ok := c.ask(w, prompt)
	return ok && strings.EqualFold(answer, "y")
}

// ask prints prompt and returns the trimmed reply. ok is false once input is
// exhausted.
func (c *commandContext) ask(w io.Writer, prompt string) (string, bool) {
	_, _ = fmt.Fprint(w, prompt)
	line, err := c.stdin.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		_, _ = fmt.Fprintln(w)
		return "", false
	}
	return strings.TrimSpace(line), true
}

func printExecuteResult(w io.Writer, result *ExecuteResult) {
	for _, entry := range result.Renamed {
		_, _ = fmt.Fprintf(w, "✓ %s -> %s\n", entry.OldName, entry.NewName)
	}

	_, _ = fmt.Fprintf(w, "\nRename complete! Succeeded: %d, Failed: %d\n", len(result.Renamed), len(result.Failed))

	if len(result.Failed) > 0 {
		_, _ = fmt.Fprintln(w, "\nFailed renames:")
		for _, f := range result.Failed {
			_, _ = fmt.Fprintf(w, "  %s -> %s: %s\n", f.OldName, f.NewName, f.Reason)
		}
	}

	if result.LogPath != "" {
		_, _ = fmt.Fprintf(w, "\nUndo log saved to: %s\n", result.LogPath)
	}
}

func printUndoResult(w io.Writer, result *UndoResult) {
	_, _ = fmt.Fprintf(w, "Undoing %d renames...\n", len(result.Restored)+len(result.Failed))
	for _, entry := range result.Restored {
		_, _ = fmt.Fprintf(w, "✓ Restored: %s -> %s\n", entry.NewName, entry.OldName)
	}
	for _, f := range result.Failed {
		_, _ = fmt.Fprintf(w, "✗ %s -> %s: %s\n", f.OldName, f.NewName, f.Reason)
	}

	_, _ = fmt.Fprintf(w, "\nUndo complete! Succeeded: %d, Failed: %d\n", len(result.Restored), len(result.Failed))
	if result.LogCleared {
		_, _ = fmt.Fprintln(w, "Undo log removed")
	}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
