package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kerem-kaynak/authorname/pkg/authorname"
)

const boxWidth = 62

var (
	benchIterations int
	benchWarmup     int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure parser throughput",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		fmt.Fprint(out, "Building parser... ")
		start := time.Now()
		p, err := benchParser()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "done (%d particles, %d tokens in %v)\n",
			p.Rules().Particles.Len(), p.Store().Len(), time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(out, "Iterations: %d (warmup: %d)\n\n", benchIterations, benchWarmup)

		b := newBencher(out)

		b.header("FULL PIPELINE THROUGHPUT")
		b.run("Parse (fields)", func() { p.Parse("Bryanne Brissian de Souza", "Langhi Júnior") })
		b.run("ParseAuthor (comma)", func() { p.ParseAuthor("Smith, John Maynard W") })
		b.run("ParseAuthor (classified)", func() { p.ParseAuthor("Thomas Maria van der Smith") })
		b.footer()

		b.header("COMPONENT BREAKDOWN")
		given := authorname.NewPipeline(p.Rules(), authorname.GivenMode)
		tokens := authorname.SplitTokens("Bryanne Brissian de Souza")
		b.run("Split tokens", func() { authorname.SplitTokens("Bryanne Brissian de Souza") })
		b.run("Given filter", func() { given.Filter(tokens) })
		b.run("Classify", func() { p.Classify("Thomas") })
		b.run("Particle lookup", func() { p.Rules().IsParticle("von der") })

		p.ClearCache()
		p.GivenNames("Bryanne Brissian de Souza")
		b.run("Given names (cache hit)", func() { p.GivenNames("Bryanne Brissian de Souza") })
		b.run("Given names (cache miss)", func() {
			p.ClearCache()
			p.GivenNames("Bryanne Brissian de Souza")
		})
		b.footer()

		b.header("NORMALIZER STEPS BREAKDOWN")
		b.run("Key normalizer", func() { authorname.NormalizeKey("JÚNIOR,") })
		b.run("NFKD decompose", func() { authorname.NFKDDecompose("Júnior") })
		b.run("Lowercase", func() { authorname.Lowercase("JÚNIOR") })
		b.run("Remove combining marks", func() { authorname.RemoveCombiningMarks("Júnior") })
		b.footer()
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVar(&benchIterations, "iterations", 100000, "Timed iterations per case")
	benchCmd.Flags().IntVar(&benchWarmup, "warmup", 1000, "Untimed warmup iterations per case")
}

// benchParser uses a small in-memory table so the run needs no database.
func benchParser() (*authorname.Parser, error) {
	store := authorname.NewMemoryStore()
	err := store.Load(authorname.RecordsOf(
		authorname.Record{Token: "thomas", Given: 80_000, Family: 1_000},
		authorname.Record{Token: "maria", Given: 90_000, Family: 300},
		authorname.Record{Token: "smith", Given: 200, Family: 60_000},
	))
	if err != nil {
		return nil, err
	}
	opts := authorname.DefaultConfig()
	opts.Store = store
	return authorname.New(opts)
}

type bencher struct {
	out    io.Writer
	line   string
	dim    *color.Color
	title  *color.Color
	ops    *color.Color
	timing *color.Color
}

func newBencher(out io.Writer) *bencher {
	return &bencher{
		out:    out,
		line:   strings.Repeat("─", boxWidth),
		dim:    color.New(color.Faint),
		title:  color.New(color.FgCyan),
		ops:    color.New(color.FgGreen),
		timing: color.New(color.FgYellow),
	}
}

func (b *bencher) run(name string, fn func()) {
	for i := 0; i < benchWarmup; i++ {
		fn()
	}

	start := time.Now()
	for i := 0; i < benchIterations; i++ {
		fn()
	}
	elapsed := time.Since(start)

	opsPerSec := float64(benchIterations) / elapsed.Seconds()
	nsPerOp := float64(elapsed.Nanoseconds()) / float64(benchIterations)

	displayName := name
	if len(displayName) > 26 {
		displayName = displayName[:26]
	}

	// Pad on the plain text; color codes have no width.
	plain := fmt.Sprintf("  %-26s %10.0f ops/sec %8.0f ns", displayName, opsPerSec, nsPerOp)
	colored := fmt.Sprintf("  %-26s %s ops/sec %s ns",
		displayName,
		b.ops.Sprintf("%10.0f", opsPerSec),
		b.timing.Sprintf("%8.0f", nsPerOp))
	if pad := boxWidth - len(plain); pad > 0 {
		colored += strings.Repeat(" ", pad)
	}

	fmt.Fprintln(b.out, b.dim.Sprint("│")+colored+b.dim.Sprint("│"))
}

func (b *bencher) header(title string) {
	fmt.Fprintln(b.out, b.dim.Sprint("┌"+b.line+"┐"))
	fmt.Fprintln(b.out, b.dim.Sprint("│")+b.title.Sprint(padLine("  "+title))+b.dim.Sprint("│"))
	fmt.Fprintln(b.out, b.dim.Sprint("├"+b.line+"┤"))
}

func (b *bencher) footer() {
	fmt.Fprintln(b.out, b.dim.Sprint("└"+b.line+"┘"))
	fmt.Fprintln(b.out)
}

func padLine(content string) string {
	if len(content) >= boxWidth {
		return content[:boxWidth]
	}
	return content + strings.Repeat(" ", boxWidth-len(content))
}
