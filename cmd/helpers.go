package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/PolarWolf314/huna/internal/audit"
	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/ui"
	"github.com/PolarWolf314/huna/internal/utils"
	"github.com/briandowns/spinner"
)

// confirm asks a yes/no question on the terminal.
var confirm = utils.Confirm

// errReported is returned by commands that already printed their failure.
var errReported = errors.New("failure already reported")

// Reported reports whether err was already shown to the user.
func Reported(err error) bool {
	return errors.Is(err, errReported)
}

// startSpinner creates and starts a spinner on stderr with the given message
// when not in verbose or debug mode. Stdout stays clean for secrets.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}
		if quiet {
			s.Stop()
		}
		if finalMsg != "" {
			fmt.Fprint(os.Stderr, finalMsg)
		}
	}

	return s, cleanup
}

// report prints err as a failure line with a hint and returns errReported.
func report(err error) error {
	fmt.Fprintln(os.Stderr, describe(err))
	return errReported
}

// describe renders err as a failure line with a hint.
func describe(err error) string {
	Logger.Debugf("Command failed: %v", err)
	switch {
	case errors.Is(err, herrors.ErrStoreNotInitialized):
		return ui.Failure("No store found", "Run "+ui.Code.Sprint("huna init")+" first")
	case errors.Is(err, herrors.ErrStoreExists):
		return ui.Failure("A store already exists",
			"Run "+ui.Code.Sprint("huna rotate <recipient>...")+" to change who can read it")
	case errors.Is(err, herrors.ErrRecipientsUnchanged):
		return ui.Failure("The store is already encrypted for these recipients",
			"Pass "+ui.Flag.Sprint("--force")+" to re-encrypt anyway")
	case errors.Is(err, herrors.ErrPartialRotation):
		return ui.Failure(err.Error(),
			"Run "+ui.Code.Sprint("huna rotate --force")+" with the same recipients to finish")
	case errors.Is(err, herrors.ErrEmptyRecipients), errors.Is(err, herrors.ErrInvalidRecipient):
		return ui.Failure(err.Error(), "Recipients are age1... keys or ssh-ed25519/ssh-rsa public keys")
	case errors.Is(err, herrors.ErrPathExists):
		return ui.Failure(err.Error(),
			"Use "+ui.Code.Sprint("huna edit")+" or "+ui.Code.Sprint("huna generate --force")+" to change it")
	case errors.Is(err, herrors.ErrPathNotFound):
		return ui.Failure(err.Error(), "Run "+ui.Code.Sprint("huna list")+" to see the stored paths")
	case errors.Is(err, herrors.ErrInvalidPath):
		return ui.Failure(err.Error(), "Paths are relative, /-separated and contain no . or .. segments")
	case errors.Is(err, herrors.ErrCorruptIndex), errors.Is(err, herrors.ErrMissingRecord):
		return ui.Failure(err.Error(), "Run "+ui.Code.Sprint("huna doctor")+" for details")
	case errors.Is(err, herrors.ErrNoIdentity), errors.Is(err, herrors.ErrDecryptFailed):
		return ui.Failure(err.Error(), "Check that "+ui.Path.Sprint("HUNA_IDENTITIES")+" points at one of the store's identities")
	case errors.Is(err, herrors.ErrEditorFailed):
		return ui.Failure(err.Error(), "Set "+ui.Path.Sprint("VISUAL")+" or "+ui.Path.Sprint("EDITOR"))
	case errors.Is(err, herrors.ErrClipboard):
		return ui.Failure(err.Error(), "Show the secret without "+ui.Flag.Sprint("--clip"))
	case errors.Is(err, audit.ErrNotRepository):
		return ui.Failure(err.Error(), "Unset "+ui.Path.Sprint("HUNA_NOGIT")+" and run "+ui.Code.Sprint("huna git init"))
	default:
		return ui.Failure(err.Error(), "")
	}
}
