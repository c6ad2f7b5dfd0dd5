// Command vslc is the command-line front end for the compiler: it wires
// together the frontend (lexer/parser), the semantic analyzer, the IR
// generator, the object code generator and the virtual machine behind a
// small Cobra command tree.
package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"vslc/src/backend"
	"vslc/src/frontend"
	"vslc/src/ir"
	"vslc/src/util"
	"vslc/src/vm"
)

var opt util.Options

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("vslc failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vslc",
		Short: "vslc compiles and runs programs for the stack-machine toy language",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if opt.Verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
		},
	}
	root.PersistentFlags().BoolVarP(&opt.Verbose, "verbose", "v", false, "enable verbose diagnostics")

	root.AddCommand(newRunCmd(), newBuildCmd(), newTokensCmd())
	return root
}

// compile runs a single source string through every stage up to and
// including object code generation, returning the assembly text.
func compile(src string) (string, error) {
	ast, err := frontend.Parse(src)
	if err != nil {
		return "", errors.Wrap(err, "parse error")
	}

	analyzer := ir.NewAnalyzer()
	symtab, err := analyzer.Analyze(ast)
	if err != nil {
		return "", errors.Wrap(err, "semantic error")
	}
	for _, w := range symtab.Warnings {
		log.Warn().Msg(w)
	}

	gen := ir.NewGenerator()
	quads := gen.Generate(ast)
	log.Debug().Int("quads", len(quads)).Msg("generated IR")

	asm, err := backend.GenerateObject(quads)
	if err != nil {
		return "", errors.Wrap(err, "codegen error")
	}
	return asm, nil
}

// ----------------------
// ----- run command ----
// ----------------------

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "compile and execute a source file in the virtual machine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opt.Src = args[0]
			}
			src, err := util.ReadSource(opt)
			if err != nil {
				return errors.Wrap(err, "read source")
			}

			asm, err := compile(src)
			if err != nil {
				return err
			}
			log.Debug().Str("asm", asm).Msg("object code")

			machine := vm.New()
			if err := machine.Load(asm); err != nil {
				return errors.Wrap(err, "load object code")
			}
			if err := machine.Run(); err != nil {
				return errors.Wrap(err, "runtime error")
			}
			if v, ok := machine.FinalTop(); ok {
				fmt.Println(v)
			}
			return nil
		},
	}
	return cmd
}

// ------------------------
// ----- build command -----
// ------------------------

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [files...]",
		Short: "compile one or more source files to object code concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.Threads = len(args)
			var wg sync.WaitGroup
			var outFile *os.File
			if opt.Out != "" {
				f, err := os.Create(opt.Out)
				if err != nil {
					return errors.Wrap(err, "create output file")
				}
				defer f.Close()
				outFile = f
			}
			util.ListenWrite(opt, outFile, &wg)
			defer util.Close()

			pe := util.NewPerror(len(args))
			defer pe.Stop()

			var jobs sync.WaitGroup
			for _, path := range args {
				jobs.Add(1)
				go func(path string) {
					defer jobs.Done()
					b, err := os.ReadFile(path)
					if err != nil {
						pe.Append(errors.Wrapf(err, "read %s", path))
						return
					}
					asm, err := compile(string(b))
					if err != nil {
						pe.Append(errors.Wrapf(err, "compile %s", path))
						return
					}
					w := util.NewWriter()
					w.Write("; %s\n%s\n", path, asm)
					w.Close()
				}(path)
			}
			jobs.Wait()
			wg.Wait()

			if n := pe.Len(); n > 0 {
				for err := range pe.Errors() {
					log.Error().Err(err).Msg("build failed")
				}
				return fmt.Errorf("build failed for %d file(s)", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opt.Out, "out", "o", "", "output file (default stdout)")
	return cmd
}

// -------------------------
// ----- tokens command -----
// -------------------------

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "print the token stream for a source file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opt.Src = args[0]
			}
			src, err := util.ReadSource(opt)
			if err != nil {
				return errors.Wrap(err, "read source")
			}

			var wg sync.WaitGroup
			util.ListenWrite(opt, nil, &wg)
			defer util.Close()
			if err := frontend.TokenStream(src); err != nil {
				return errors.Wrap(err, "token stream")
			}
			wg.Wait()
			return nil
		},
	}
	return cmd
}
