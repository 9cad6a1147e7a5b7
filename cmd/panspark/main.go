// Command panspark is a minimal host driver for the PanSpark VM: it
// compiles a source file, registers the demo peripherals, and runs the
// program to completion or to a host-imposed step quota, printing the
// output buffer. It stands in for the kind of enclosing host a real
// deployment would have (tick driver, hardware registry, REPL), just
// enough of one to exercise the library end to end.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/verpitek/panspark/asm"
	"github.com/verpitek/panspark/peripherals"
	"github.com/verpitek/panspark/vm"
)

func main() {
	var (
		registers  = flag.Int("registers", vm.DefaultRegisterCount, "register count")
		heapLimit  = flag.Int("heap", vm.DefaultHeapLimit, "heap byte budget")
		callDepth  = flag.Int("callstack", vm.DefaultCallStackLimit, "call stack depth")
		maxSteps   = flag.Int("steps", 1_000_000, "host-imposed step quota for fast-mode runs (0 = unbounded)")
		logLevel   = flag.String("loglevel", "warn", "logrus level: debug, info, warn, error")
		debug      = flag.Bool("debug", false, "print full error chains on failure")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: panspark [flags] <source-file>")
		os.Exit(2)
	}

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lvl)
	}

	if err := run(*registers, *heapLimit, *callDepth, *maxSteps, log, flag.Arg(0)); err != nil {
		if *debug {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}

func run(registers, heapLimit, callDepth, maxSteps int, log *logrus.Logger, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	i := vm.New(
		vm.WithRegisters(registers, heapLimit),
		vm.WithCallStackLimit(callDepth),
		vm.WithLogger(log),
	)
	peripherals.Register(i)

	program, err := asm.New(
		asm.WithPeripherals(i.Peripherals()),
		asm.WithLogger(log),
	).Compile(string(src))
	if err != nil {
		return errors.Wrap(err, "compile failed")
	}
	i.Load(program)

	if err := i.RunFast(maxSteps); err != nil {
		return errors.Wrap(err, "run failed")
	}

	bw := bufio.NewWriter(os.Stdout)
	if err := writeOutput(bw, i.Output()); err != nil {
		return err
	}
	return bw.Flush()
}

// writeOutput prints each value from the VM's output buffer to w, one per
// line, stopping at the first write error instead of attempting the
// remaining values into an already-broken stream.
func writeOutput(w io.Writer, values []vm.Value) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(w, formatValue(v)); err != nil {
			return errors.Wrap(err, "write failed")
		}
	}
	return nil
}

func formatValue(v vm.Value) string {
	switch v.Kind {
	case vm.KindInt:
		return fmt.Sprintf("%d", v.I)
	case vm.KindStr:
		return v.S
	case vm.KindArr:
		return fmt.Sprintf("%v", v.A)
	default:
		return ""
	}
}
