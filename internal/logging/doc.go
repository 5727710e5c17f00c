// Package logger provides leveled logging for huna commands.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Output goes to stderr so that secrets printed on stdout can be
// piped without log noise.
//
// # Verbosity Levels
//
//   - --verbose: Shows info messages
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always shown.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Re-encrypted %d artifacts", count)
//
// Never log secret payloads or secret paths; IDs and counts are fine.
package logger
