package main

import (
	"errors"
	"fmt"
	"os"

	"StateProof/internal/logger"
)

// errRejected reports an evaluated proof that did not meet the threshold.
var errRejected = errors.New("state proof rejected")

const usage = `usage: stateproof <command> [flags]

commands:
  verify   verify a transaction from record, signature and address book files,
           an envelope (-proof) or the archive (-archive)
  compact  write a self-contained proof envelope for a transaction (-proof)
  archive  store a proof envelope in the archive (-archive)
  show     print a record file summary

run "stateproof <command> -h" for the flags of a command`

func main() {
	logger.Init()

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches to the command named by args[0].
func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return errors.New("missing command")
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, err := parseFlags(args[0], args[1:])
	if err != nil {
		return err
	}

	return cmd(cfg)
}
