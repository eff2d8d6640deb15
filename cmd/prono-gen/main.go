// Command prono-gen writes a random contest snapshot file for load tests
// and demos of prono.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/okian/prono/internal/adapters/fixture"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	def := fixture.DefaultGenerateConfig()
	var (
		cfg    fixture.GenerateConfig
		output string
	)

	fset := flag.NewFlagSet("prono-gen", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.IntVar(&cfg.Contests, "contests", def.Contests, "Number of contests, one per year")
	fset.IntVar(&cfg.Entries, "entries", def.Entries, "Entries per contest")
	fset.IntVar(&cfg.Users, "users", def.Users, "Users predicting every contest")
	fset.Uint64Var(&cfg.Seed, "seed", 0, "Random seed; the same seed writes the same file")
	fset.IntVar(&cfg.Year, "year", def.Year, "Year of the first contest")
	fset.Float64Var(&cfg.Skill, "skill", def.Skill, "How close predictions are to the results, 0 to 1")
	fset.StringVar(&output, "output", "", "Output file (default: stdout)")
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	contests, err := fixture.Generate(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if output == "" {
		err = fixture.Write(stdout, contests)
	} else {
		err = fixture.WriteFile(output, contests)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
