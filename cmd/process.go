package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/desmoke/desmoke/internal/diag"
	"github.com/desmoke/desmoke/internal/history"
	"github.com/desmoke/desmoke/internal/logging"
	"github.com/desmoke/desmoke/internal/logparser"
	"github.com/desmoke/desmoke/internal/project"
	"github.com/desmoke/desmoke/internal/watch"
)

// processor drives one extraction run: it sniffs the log format from the
// first line (unless forced), forwards input in pass-through mode, feeds each
// line to the driver, and prints and records completed diagnostics.
type processor struct {
	ctx  context.Context
	opts logparser.Options

	driver      logparser.Driver
	passThrough bool
	printer     *printer
	echo        io.Writer

	assertions []string
	recorder   *recorder
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := GetContext()

	proj, err := project.Find("")
	if err != nil && !errors.Is(err, project.ErrNotFound) {
		return fmt.Errorf("failed to load project: %w", err)
	}

	opts := logparser.Options{}
	color := !flagNoColor
	record := false
	if proj != nil {
		opts = proj.Config.Parser.Options()
		if !proj.Config.Output.ShouldColor() {
			color = false
		}
		record = proj.Config.History.ShouldRecord()
	}

	filename := ""
	source := "-"
	if len(args) == 1 {
		filename = args[0]
		source = filename
	}
	if flagFollow && filename == "" {
		return errors.New("--follow requires a file argument")
	}

	p := &processor{
		ctx:         ctx,
		opts:        opts,
		passThrough: !flagOnly,
		printer: &printer{
			out:    os.Stdout,
			color:  color,
			prefix: !flagOnly,
		},
		echo: os.Stdout,
	}
	if flagFiletype != "" {
		driver, err := logparser.New(flagFiletype, opts)
		if err != nil {
			return err
		}
		p.driver = driver
	}

	if record && proj != nil {
		rec, err := newRecorder(ctx, proj.HistoryPath(), source)
		if err != nil {
			// History is a convenience; a broken database never blocks
			// extraction.
			logging.Warn("failed to open history database", "error", err)
		} else {
			p.recorder = rec
			defer func() { p.recorder.close(len(p.assertions)) }()
		}
	}

	if flagFollow {
		err = watch.Follow(ctx, filename, p.line)
	} else {
		err = p.run(filename)
	}
	if errors.Is(err, context.Canceled) {
		// Interrupted follow or pipe; what was extracted so far stands.
		err = nil
	}
	if err != nil {
		return err
	}

	if flagSummary {
		fmt.Fprintln(os.Stdout, "----")
		fmt.Fprintln(os.Stdout, strings.Join(p.assertions, "\n"))
		fmt.Fprintln(os.Stdout, "----")
	}
	return nil
}

// run reads the whole input, line by line, feeding the processor.
func (p *processor) run(filename string) error {
	in := io.Reader(os.Stdin)
	if filename != "" {
		f, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", filename, err)
		}
		defer f.Close()
		in = f
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		if err := p.line(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// line handles one input line: format sniffing on the first line, echo, then
// extraction.
func (p *processor) line(line string) error {
	if p.driver == nil {
		p.driver = logparser.Detect(line, p.opts)
		logging.Debug("detected log format", "format", p.driver.Name())
	}
	if p.passThrough {
		fmt.Fprintln(p.echo, line)
	}

	diags, err := p.driver.Feed(line)
	if err != nil {
		return err
	}
	for _, d := range diags {
		p.emit(d)
	}
	return nil
}

func (p *processor) emit(d diag.Diagnostic) {
	p.printer.print(d)
	p.assertions = append(p.assertions, d.String())
	if p.recorder != nil {
		p.recorder.record(p.ctx, p.driver.Name(), d)
	}
}

// recorder persists a run to the history database. All failures downgrade to
// debug-log warnings.
type recorder struct {
	db     *history.DB
	source string
	run    *history.Run
	seq    int
	closed bool
}

func newRecorder(ctx context.Context, path, source string) (*recorder, error) {
	db, err := history.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &recorder{db: db, source: source}, nil
}

func (r *recorder) record(ctx context.Context, format string, d diag.Diagnostic) {
	if r.run == nil {
		run, err := r.db.StartRun(ctx, format, r.source)
		if err != nil {
			logging.Warn("failed to start history run", "error", err)
			return
		}
		r.run = run
	}
	if err := r.db.RecordDiagnostic(ctx, r.run.ID, r.seq, d); err != nil {
		logging.Warn("failed to record diagnostic", "error", err)
		return
	}
	r.seq++
}

// close finishes the run and closes the database. It runs on every exit path,
// including an interrupted follow, so it does not take the (possibly
// cancelled) run context.
func (r *recorder) close(count int) {
	if r.closed {
		return
	}
	r.closed = true
	if r.run != nil {
		if err := r.db.FinishRun(context.Background(), r.run.ID, count); err != nil {
			logging.Warn("failed to finish history run", "error", err)
		}
	}
	if err := r.db.Close(); err != nil {
		logging.Warn("failed to close history database", "error", err)
	}
}
