// Command ren is a REPL and script-file host for the interpreter core in
// package interp: a thin cobra-driven CLI wrapping readline-backed
// interactive evaluation and a flat "run a file" mode.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ren-core/ren/internal/corelog"
	"github.com/ren-core/ren/internal/coremetrics"
	"github.com/ren-core/ren/internal/miniscan"
	"github.com/ren-core/ren/internal/renconfig"
	"github.com/ren-core/ren/interp"
)

var (
	devLog      bool
	forceGC     bool
	metricsAddr string
	stackLimit  int
)

func main() {
	cfg, err := renconfig.Load(renconfig.DefaultPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ren: reading config: %v", err))
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:   "ren [script]",
		Short: "Evaluate Ren source interactively or from a file",
		RunE:  runRoot,
	}
	root.Flags().BoolVar(&devLog, "dev-log", cfg.DevLog, "use a human-readable development logger instead of JSON")
	root.Flags().BoolVar(&forceGC, "force-gc", cfg.ForceGC, "run Recycle on every trampoline step")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", cfg.MetricsAddr, "if set, serve Prometheus metrics on this address (e.g. :9090)")
	root.Flags().IntVar(&stackLimit, "stack-limit", cfg.StackLimit, "maximum frame stack depth before a resource error is raised (0 = engine default)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ren: %v", err))
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	logger, err := corelog.New(devLog)
	if err != nil {
		return err
	}
	defer logger.Sync()

	eng := interp.New(interp.EngineOptions{
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		ForceGCEachStep: forceGC,
		StackLimit:      stackLimit,
		Logger:          logger,
	})
	defer eng.Shutdown()

	reg := coremetrics.NewRegistry()
	if err := coremetrics.Register(reg, eng.Metrics()); err != nil {
		logger.Sugar().Warnw("metrics registration failed", "error", err)
	}
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Sugar().Warnw("metrics server stopped", "error", err)
			}
		}()
	}

	if len(args) > 0 {
		return runFile(eng, args[0])
	}
	return runREPL(eng)
}

func runFile(eng *interp.Interp, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	scanner := miniscan.New(string(src), eng.Symtab())
	block, err := scanner.ScanBlock()
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	out, err := eng.EvalArray(block)
	if err != nil {
		return err
	}
	fmt.Println(eng.MoldResult(out))
	return nil
}

func runREPL(eng *interp.Interp) error {
	prompt := color.New(color.FgCyan).Sprint(">> ")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println(color.New(color.FgGreen).Sprint("ren — interactive session. quit with Ctrl-D."))

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		evalLine(eng, line)
	}
}

func evalLine(eng *interp.Interp, line string) {
	scanner := miniscan.New(line, eng.Symtab())
	block, err := scanner.ScanBlock()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("scan error: %v", err))
		return
	}
	out, err := eng.EvalArray(block)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("** %v", err))
		return
	}
	fmt.Println(color.New(color.FgYellow).Sprint("== ") + eng.MoldResult(out))
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.ren_history"
}
