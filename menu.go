package batchrename

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// runMenu drives the interactive loop until the operator exits or input ends.
// Errors from a single action are reported and the menu is shown again.
func runMenu(ctx context.Context, cmdCtx *commandContext) error {
	out := cmdCtx.stdout

	_, _ = fmt.Fprintln(out, "Batch Rename")
	_, _ = fmt.Fprintln(out, strings.Repeat("=", 50))

	for {
		_, _ = fmt.Fprintln(out, "\nChoose an action:")
		_, _ = fmt.Fprintln(out, "1. Batch rename files")
		if cmdCtx.renamer.PendingUndo() {
			_, _ = fmt.Fprintln(out, "2. Undo last rename (pending)")
		} else {
			_, _ = fmt.Fprintln(out, "2. Undo last rename")
		}
		_, _ = fmt.Fprintln(out, "3. Exit")

		choice, ok := cmdCtx.ask(out, "\nEnter option (1-3): ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			err := menuRename(ctx, cmdCtx)
			if errors.Is(err, errInputClosed) {
				return nil
			}
			if err != nil {
				_, _ = fmt.Fprintf(out, "Error: %v\n", err)
			}
		case "2":
			result, err := cmdCtx.renamer.Undo(ctx)
			if result != nil {
				printUndoResult(out, result)
			}
			if err != nil {
				_, _ = fmt.Fprintf(out, "Error: %v\n", err)
			}
		case "3":
			_, _ = fmt.Fprintln(out, "Bye!")
			return nil
		default:
			_, _ = fmt.Fprintln(out, "Invalid option, try again")
		}
	}
}

// errInputClosed ends a prompt sequence when stdin runs out mid-dialog.
var errInputClosed = errors.New("input closed")

func menuRename(ctx context.Context, cmdCtx *commandContext) error {
	out := cmdCtx.stdout

	ask := func(prompt string) (string, error) {
		answer, ok := cmdCtx.ask(out, prompt)
		if !ok {
			return "", errInputClosed
		}
		return answer, nil
	}

	dir, err := ask("\nTarget directory (Enter for current directory): ")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = "."
	}

	recursive, err := ask("Include files in subdirectories? (y/N): ")
	if err != nil {
		return err
	}

	files, err := cmdCtx.renamer.Scan(ctx, dir, strings.EqualFold(recursive, "y"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		_, _ = fmt.Fprintln(out, "No files found in directory")
		return nil
	}
	_, _ = fmt.Fprintf(out, "\nFound %d files\n", len(files))

	prefix, err := ask("Prefix for the new names: ")
	if err != nil {
		return err
	}
	if err := cmdCtx.renamer.validator.ValidatePrefix(prefix); err != nil {
		return err
	}

	modeChoice, err := ask("Naming mode:\n1. Timestamp (recommended, e.g. prefix_2505261507)\n2. Sequence (e.g. prefix_001)\nChoose (1/2, default 1): ")
	if err != nil {
		return err
	}

	opts := PlanOptions{Prefix: prefix, Mode: ModeTimestamp, Start: 1}
	if modeChoice == "2" {
		opts.Mode = ModeSequence

		startInput, err := ask("Start number (default 1): ")
		if err != nil {
			return err
		}
		if startInput != "" {
			start, err := strconv.Atoi(startInput)
			if err != nil {
				_, _ = fmt.Fprintf(out, "Warning: %v, using 1\n", ErrInvalidNumber)
			} else {
				opts.Start = start
			}
		}
	}

	opts.Now = cmdCtx.now()
	plan, err := cmdCtx.renamer.Plan(files, opts)
	if err != nil {
		return err
	}

	if err := RenderPreview(out, plan, cmdCtx.config.PreviewWidth); err != nil {
		return err
	}

	if cmdCtx.renamer.PendingUndo() {
		_, _ = fmt.Fprintln(out, "\nNote: the previous batch was never undone; its undo log will be replaced.")
	}

	if !cmdCtx.confirm(out, "\nApply these renames? (y/N): ") {
		_, _ = fmt.Fprintln(out, "Cancelled")
		return nil
	}

	result, err := cmdCtx.renamer.Execute(ctx, dir, plan)
	if result != nil {
		printExecuteResult(out, result)
	}
	return err
}
