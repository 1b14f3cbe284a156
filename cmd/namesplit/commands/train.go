package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kerem-kaynak/authorname/internal/logger"
	"github.com/kerem-kaynak/authorname/pkg/authorname"
	"github.com/kerem-kaynak/authorname/pkg/corpus"
	"github.com/kerem-kaynak/authorname/pkg/freqcsv"
)

var (
	trainWorkers int
	importGiven  string
	importFamily string
	exportOutput string
)

var trainCmd = &cobra.Command{
	Use:   "train <file-or-dir>...",
	Short: "Train the frequency table from XML author lists",
	Long: `Train the frequency table from XML author lists.

Directories are expanded to the .xml files they contain. Both the training
layout (<Author><FamilyName/><GivenName/></Author>) and PubMed author lists
(<LastName/><ForeName/>) are read.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := corpus.Expand(args...)
		if err != nil {
			return err
		}
		p, closer, err := newParser(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		workers := cfg.Train.Workers
		if trainWorkers > 0 {
			workers = trainWorkers
		}
		start := time.Now()
		trainer := corpus.NewTrainer(p, workers, logger.Logger)
		stats, err := trainer.Train(cmd.Context(), corpus.DecodeFiles(files), p.Store())
		if err != nil {
			return errors.Wrap(err, "train")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Trained %d authors (%d skipped, %d observations) from %d files in %v; %d tokens in table\n",
			stats.Authors, stats.Skipped, stats.Observations, len(files),
			time.Since(start).Round(time.Millisecond), p.Store().Len())
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [table.csv]",
	Short: "Load counts from CSV into the frequency table",
	Long: `Load counts from CSV into the frequency table. Counts are added to
existing ones.

Examples:
  namesplit import table.csv                              # name,occ_given,occ_family
  namesplit import --given given.csv --family family.csv  # two name,count lists`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := readImport(args)
		if err != nil {
			return err
		}
		store, closer, err := openStore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		if err := store.Load(authorname.RecordsOf(rows...)); err != nil {
			return errors.Wrap(err, "load rows")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows; %d tokens in table\n", len(rows), store.Len())
		return nil
	},
}

func readImport(args []string) ([]authorname.Record, error) {
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", args[0])
		}
		defer f.Close()
		return freqcsv.Read(f)
	}
	if importGiven == "" || importFamily == "" {
		return nil, errors.WithHint(errors.New("nothing to import"),
			"pass a table file, or both --given and --family")
	}
	given, err := os.Open(importGiven)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", importGiven)
	}
	defer given.Close()
	family, err := os.Open(importFamily)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", importFamily)
	}
	defer family.Close()
	return freqcsv.MergeCounts(given, family)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the frequency table as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore(cmd, false)
		if err != nil {
			return err
		}
		defer closer()

		out := cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return errors.Wrapf(err, "create %s", exportOutput)
			}
			defer f.Close()
			out = f
		}
		if err := freqcsv.Write(out, store.Export()); err != nil {
			return err
		}
		return storeErr(store)
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <out.fst>",
	Short: "Build a read-only FST snapshot of the frequency table",
	Long: `Build a read-only FST snapshot of the frequency table. Point
store.snapshot (or --snapshot) at it to serve queries without the database.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore(cmd, true)
		if err != nil {
			return err
		}
		defer closer()

		if err := authorname.WriteSnapshot(args[0], store.Export()); err != nil {
			return err
		}
		if err := storeErr(store); err != nil {
			return err
		}

		snap, err := authorname.OpenSnapshot(args[0])
		if err != nil {
			return err
		}
		defer snap.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d tokens\n", args[0], snap.Len())
		return nil
	},
}

func init() {
	trainCmd.Flags().IntVar(&trainWorkers, "workers", 0, "Worker count (overrides train.workers)")
	importCmd.Flags().StringVar(&importGiven, "given", "", "Two-column name,count list of given names")
	importCmd.Flags().StringVar(&importFamily, "family", "", "Two-column name,count list of family names")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
}
