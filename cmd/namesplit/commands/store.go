package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kerem-kaynak/authorname/internal/logger"
	"github.com/kerem-kaynak/authorname/pkg/authorname"
	"github.com/kerem-kaynak/authorname/pkg/freqdb"
)

// openStore opens the configured frequency store. A snapshot wins over the
// database unless writable is set.
func openStore(cmd *cobra.Command, writable bool) (authorname.Store, func() error, error) {
	snapshot := cfg.Store.Snapshot
	if f := cmd.Flag("snapshot"); f != nil && f.Value.String() != "" {
		snapshot = f.Value.String()
	}
	if snapshot != "" && !writable {
		snap, err := authorname.OpenSnapshot(snapshot)
		if err != nil {
			return nil, nil, err
		}
		logger.Debugw("Using snapshot", "path", snapshot, "tokens", snap.Len())
		return snap, snap.Close, nil
	}

	path := cfg.Store.Path
	if f := cmd.Flag("db"); f != nil && f.Value.String() != "" {
		path = f.Value.String()
	}
	db, err := freqdb.OpenStore(path, logger.Logger)
	if err != nil {
		return nil, nil, errors.WithHint(err, "set store.path or pass --db")
	}
	return db, db.Close, nil
}

// loadRules returns the built-in table extended by rules.path, if set.
func loadRules() (*authorname.Rules, error) {
	rules := authorname.DefaultRules()
	if cfg.Rules.Path == "" {
		return rules, nil
	}
	extra, err := authorname.LoadRulesFile(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}
	return rules.Merge(extra)
}

// newParser builds a parser over the configured store and rules.
func newParser(cmd *cobra.Command, writable bool) (*authorname.Parser, func() error, error) {
	opts, err := cfg.ParserOptions()
	if err != nil {
		return nil, nil, err
	}
	if opts.Rules, err = loadRules(); err != nil {
		return nil, nil, err
	}
	store, closer, err := openStore(cmd, writable)
	if err != nil {
		return nil, nil, err
	}
	opts.Store = store
	opts.Logger = logger.Logger

	p, err := authorname.New(opts)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return p, closer, nil
}

// storeErr reports an error a store swallowed while serving queries.
func storeErr(store authorname.Store) error {
	if db, ok := store.(*freqdb.Store); ok {
		return db.Err()
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encode json")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
