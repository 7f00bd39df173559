// takeskip CLI - applies a bit-transformation command string to bit
// sequences given as arguments or on stdin, one sequence per line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/jolsten/takeskip"
	"github.com/jolsten/takeskip/bits"
	"github.com/jolsten/takeskip/config"
)

var log = commonlog.GetLogger("takeskip.cli")

func main() {
	remnantFlag := flag.String("r", "", "Remnant policy: remove, keep, or pad (default from takeskip.toml)")
	storeFlag := flag.String("store", "", "Path to a persistent parse cache (overrides takeskip.toml)")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: takeskip [options] <command> [bits...]\n\n")
		fmt.Fprintf(os.Stderr, "Applies a takeskip command string to bit sequences. Sequences are\n")
		fmt.Fprintf(os.Stderr, "strings of 0s and 1s, given as arguments or on stdin one per line.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  takeskip s2t4 10110010          # skip 2, take 4 -> 1100\n")
		fmt.Fprintf(os.Stderr, "  takeskip -r pad t4 10110010     # take 4, pad back to 8 bits\n")
		fmt.Fprintf(os.Stderr, "  takeskip '(t1s1)4' 10101010     # every other bit -> 1111\n")
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := args[0]

	cfg, err := config.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	remnantName := cfg.Execute.Remnant
	if *remnantFlag != "" {
		remnantName = *remnantFlag
	}
	remnant, err := takeskip.ParseRemnant(remnantName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	storePath := cfg.Cache.Path
	if *storeFlag != "" {
		storePath = *storeFlag
	}

	opts := []takeskip.Option{takeskip.WithCacheSize(cfg.Cache.Size)}
	if storePath != "" {
		opts = append(opts, takeskip.WithStore(storePath))
		log.Infof("using persistent parse cache at %s", storePath)
	}

	engine, err := takeskip.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	if len(args) > 1 {
		for _, arg := range args[1:] {
			if err := run(engine, command, arg, remnant); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := run(engine, command, line, remnant); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
		os.Exit(1)
	}
}

func run(engine *takeskip.Engine, command, input string, remnant takeskip.Remnant) error {
	in, err := bits.Parse(input)
	if err != nil {
		return err
	}
	out, err := engine.Execute(command, in, remnant)
	if err != nil {
		return err
	}
	fmt.Println(out.String())
	return nil
}
