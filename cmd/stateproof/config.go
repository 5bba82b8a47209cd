package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"StateProof/internal/addressbook"
	"StateProof/internal/hapi"
	"StateProof/internal/logger"
	"StateProof/internal/stateproof"
)

// Config holds the command configuration.
type Config struct {
	// RecordPath is the record file (.rcd or .rcd.gz).
	RecordPath string

	// SigsDir holds one signature file per node, either named
	// <nodeId>.rcd_sig or placed in a record<nodeId>/ subdirectory.
	SigsDir string

	// AddressBooks are address book files, oldest first.
	AddressBooks []string

	// TxID is the transaction id, payer-seconds-nanos or payer@seconds.nanos.
	TxID string

	// Nonce is the child transaction nonce.
	Nonce int

	// Scheduled selects the scheduled execution of the transaction.
	Scheduled bool

	// Policy is the address book policy name.
	Policy string

	// ProofPath is the envelope file read by verify and written by compact.
	ProofPath string

	// ArchivePath is the proof archive directory.
	ArchivePath string

	// Workers bounds parallel signature verification (0 = GOMAXPROCS).
	Workers int

	// Verbose enables debug logging.
	Verbose bool
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// parseFlags parses the flags of one command into Config.
func parseFlags(name string, args []string) (*Config, error) {
	cfg := &Config{}
	books := stringList{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.RecordPath, "record", "", "Record file path")
	fs.StringVar(&cfg.SigsDir, "sigs", "", "Signature files directory")
	fs.Var(&books, "addressbook", "Address book file (repeatable, oldest first)")
	fs.StringVar(&cfg.TxID, "tx", "", "Transaction id")
	fs.IntVar(&cfg.Nonce, "nonce", 0, "Transaction nonce")
	fs.BoolVar(&cfg.Scheduled, "scheduled", false, "Scheduled transaction")
	fs.StringVar(&cfg.Policy, "policy", addressbook.PolicyLatest.String(), "Address book policy (latest, union)")
	fs.StringVar(&cfg.ProofPath, "proof", "", "Proof envelope path")
	fs.StringVar(&cfg.ArchivePath, "archive", "", "Proof archive directory")
	fs.IntVar(&cfg.Workers, "workers", 0, "Parallel signature checks (0 = all CPUs)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.AddressBooks = books

	if cfg.Verbose {
		logger.SetLevel(slog.LevelDebug)
	}

	return cfg, nil
}

// transactionKey builds the target key from -tx, -nonce and -scheduled.
func (c *Config) transactionKey() (hapi.TransactionKey, error) {
	if c.TxID == "" {
		return hapi.TransactionKey{}, fmt.Errorf("-tx is required")
	}

	id, err := hapi.ParseTransactionIDString(c.TxID)
	if err != nil {
		return hapi.TransactionKey{}, fmt.Errorf("parse -tx:\n%w", err)
	}

	return hapi.TransactionKey{ID: id.String(), Nonce: int32(c.Nonce), Scheduled: c.Scheduled}, nil
}

// options builds the handler options from the flags.
func (c *Config) options() (stateproof.Options, error) {
	opts := stateproof.DefaultOptions()

	policy, err := addressbook.ParsePolicy(c.Policy)
	if err != nil {
		return opts, err
	}

	opts.Policy = policy
	opts.Workers = c.Workers

	return opts, nil
}
