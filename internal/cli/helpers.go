package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/circmerge/internal/circuit"
	"github.com/lherron/circmerge/internal/cli/appctx"
	"github.com/lherron/circmerge/internal/journal"
	"github.com/lherron/circmerge/internal/paths"
	"github.com/lherron/circmerge/internal/render"
	"github.com/lherron/circmerge/internal/source"
)

// prompt writes label and reads one line. A final line without a newline is
// accepted; an empty stream is an error.
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", fmt.Errorf("no input for %q", strings.TrimSpace(label))
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// loadDocument sanitizes raw and loads the document it names.
func loadDocument(app *appctx.App, raw string) (*circuit.Document, string, error) {
	path, err := paths.Sanitize(app.FS, raw)
	if err != nil {
		return nil, "", err
	}
	doc, err := circuit.LoadFile(app.FS, path, app.UnitOptions()...)
	if err != nil {
		return nil, "", err
	}
	warnDuplicates(app.Log, doc, path)
	return doc, path, nil
}

// loadLibrary loads the source document: the file named by from when set,
// else the configured library (local copy, then download).
func loadLibrary(ctx context.Context, app *appctx.App, from string) (*circuit.Document, string, error) {
	if from != "" {
		return loadDocument(app, from)
	}

	resolver := source.New(app.FS, app.Remote, app.Config.Library, app.Config.LibraryURL)
	content, err := resolver.Fetch(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load library: %w", err)
	}
	app.Log.Debug("library loaded", zap.String("origin", content.Origin), zap.Int("bytes", len(content.Data)))

	doc, err := circuit.Load(bytes.NewReader(content.Data), app.UnitOptions()...)
	if err != nil {
		return nil, "", err
	}
	warnDuplicates(app.Log, doc, content.Origin)
	return doc, content.Origin, nil
}

func warnDuplicates(log *zap.Logger, doc *circuit.Document, origin string) {
	for _, name := range doc.Duplicates() {
		log.Warn("duplicate unit name, first one wins",
			zap.String("document", origin),
			zap.String("name", name))
	}
}

// parseRenames turns old=new pairs into a lookup.
func parseRenames(pairs []string) (map[string]string, error) {
	renames := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		oldName, newName, ok := strings.Cut(pair, "=")
		oldName = strings.TrimSpace(oldName)
		newName = strings.TrimSpace(newName)
		if !ok || oldName == "" || newName == "" {
			return nil, fmt.Errorf("invalid rename %q (want old=new)", pair)
		}
		renames[oldName] = newName
	}
	return renames, nil
}

// buildRequests pairs names with their renames. A rename for a name that
// is not requested is an error.
func buildRequests(names []string, renames map[string]string) ([]circuit.Request, error) {
	used := make(map[string]bool, len(renames))
	reqs := make([]circuit.Request, 0, len(names))
	for _, name := range names {
		req := circuit.Request{Name: name}
		if newName, ok := renames[name]; ok {
			req.Rename = newName
			used[name] = true
		}
		reqs = append(reqs, req)
	}
	for oldName := range renames {
		if !used[oldName] {
			return nil, fmt.Errorf("rename %q does not match any selected unit", oldName)
		}
	}
	return reqs, nil
}

// outputOptions picks the render format from flags, falling back to the
// configured default.
func outputOptions(app *appctx.App, jsonOut, yamlOut, tsvOut, porcelain bool) (render.Options, error) {
	opts := render.Options{Porcelain: porcelain}
	switch {
	case jsonOut:
		opts.Format = render.FormatJSON
	case yamlOut:
		opts.Format = render.FormatYAML
	case tsvOut:
		opts.Format = render.FormatTSV
	default:
		format, err := render.ParseFormat(app.Config.Output)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}
	return opts, nil
}

// merge is one destination document being changed by a command.
type merge struct {
	app     *appctx.App
	command string
	origin  string
	path    string
	dst     *circuit.Document
	rev     string
	started time.Time
}

type mergeReport struct {
	Destination string            `json:"destination" yaml:"destination"`
	Source      string            `json:"source,omitempty" yaml:"source,omitempty"`
	RevBefore   string            `json:"rev_before" yaml:"rev_before"`
	RevAfter    string            `json:"rev_after,omitempty" yaml:"rev_after,omitempty"`
	DryRun      bool              `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Applied     []circuit.Applied `json:"applied" yaml:"applied"`
}

func openMerge(app *appctx.App, command, rawDest string) (*merge, error) {
	dst, path, err := loadDocument(app, rawDest)
	if err != nil {
		return nil, err
	}
	rev, err := dst.Rev()
	if err != nil {
		return nil, fmt.Errorf("failed to hash destination: %w", err)
	}
	return &merge{
		app:     app,
		command: command,
		path:    path,
		dst:     dst,
		rev:     rev,
		started: time.Now(),
	}, nil
}

// apply runs reqs against the destination and saves it. Nothing is written
// unless every transfer succeeded.
func (m *merge) apply(ctx context.Context, src *circuit.Document, reqs []circuit.Request) (*mergeReport, *circuit.BatchResult, error) {
	report := &mergeReport{
		Destination: m.path,
		Source:      m.origin,
		RevBefore:   m.rev,
	}

	result, err := circuit.Batch(src, m.dst, reqs, circuit.WithLogger(m.app.Log))
	if err != nil {
		m.record(ctx, journal.StatusFailed, result.Applied, "", err)
		return nil, result, err
	}
	report.Applied = result.Applied

	if err := circuit.Save(m.app.FS, m.dst, m.path); err != nil {
		m.record(ctx, journal.StatusFailed, result.Applied, "", err)
		return nil, result, fmt.Errorf("failed to save destination: %w", err)
	}

	report.RevAfter, err = m.dst.Rev()
	if err != nil {
		return nil, result, fmt.Errorf("failed to hash destination: %w", err)
	}
	m.app.Log.Info("destination saved",
		zap.String("path", m.path),
		zap.Int("transfers", len(result.Applied)),
		zap.String("rev", report.RevAfter))

	m.record(ctx, journal.StatusOK, result.Applied, report.RevAfter, nil)
	return report, result, nil
}

// preview writes the diff of each request to w without saving. Requests are
// applied to a scratch copy so later previews see earlier transfers.
func (m *merge) preview(ctx context.Context, src *circuit.Document, reqs []circuit.Request, w io.Writer) (*mergeReport, error) {
	data, err := m.dst.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode destination: %w", err)
	}
	scratch, err := circuit.Load(bytes.NewReader(data), m.app.UnitOptions()...)
	if err != nil {
		return nil, err
	}

	report := &mergeReport{
		Destination: m.path,
		Source:      m.origin,
		RevBefore:   m.rev,
		DryRun:      true,
	}
	for _, req := range reqs {
		diff, err := circuit.Preview(src, scratch, req)
		if err != nil {
			m.record(ctx, journal.StatusFailed, report.Applied, "", err)
			return nil, err
		}
		if w != nil {
			if diff == "" {
				fmt.Fprintf(w, "%s: no changes\n", req)
			} else {
				fmt.Fprint(w, diff)
			}
		}
		applied, err := circuit.Apply(src, scratch, req)
		if err != nil {
			return nil, err
		}
		report.Applied = append(report.Applied, *applied)
	}

	m.record(ctx, journal.StatusDryRun, report.Applied, "", nil)
	return report, nil
}

// record writes the run to the journal when one is open. Journal failures
// are logged and never fail the command.
func (m *merge) record(ctx context.Context, status journal.Status, applied []circuit.Applied, revAfter string, runErr error) {
	if m.app.Journal == nil {
		return
	}

	run := &journal.Run{
		StartedAt:   m.started,
		Command:     m.command,
		Source:      m.origin,
		Destination: m.path,
		RevBefore:   m.rev,
		RevAfter:    revAfter,
		Status:      status,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	for _, a := range applied {
		run.Entries = append(run.Entries, journal.Entry{
			Name:     a.Request.Name,
			Rename:   a.Request.Rename,
			Replaced: a.Replaced,
		})
	}

	if err := m.app.Journal.Record(ctx, run); err != nil {
		m.app.Log.Warn("failed to record run", zap.Error(err))
		return
	}
	m.app.Log.Debug("run recorded", zap.String("id", run.ID), zap.String("status", string(run.Status)))
}

// printApplied writes one line per applied transfer.
func printApplied(w io.Writer, applied []circuit.Applied) {
	for _, a := range applied {
		line := "Imported: " + a.Request.Name
		if a.Request.Rename != "" && a.Request.Rename != a.Request.Name {
			line += " as " + a.Request.Rename
		}
		if a.Replaced > 0 {
			line += fmt.Sprintf(" (replaced %d)", a.Replaced)
		}
		fmt.Fprintln(w, line)
	}
}

// writeReport renders a finished merge.
func writeReport(cmd *cobra.Command, report *mergeReport, result *circuit.BatchResult, jsonOut bool) error {
	out := cmd.OutOrStdout()
	if jsonOut {
		return render.NewRenderer(out, render.Options{Format: render.FormatJSON}).RenderJSON(report)
	}

	printApplied(out, report.Applied)
	if result != nil && result.Summary.TotalItems > 1 {
		result.Summary.PrintSummary(out)
	}
	return nil
}

// writeFailure prints the batch summary to stderr after a failed multi-unit
// run.
func writeFailure(cmd *cobra.Command, result *circuit.BatchResult, jsonOut bool) {
	if jsonOut || result == nil || result.Summary == nil || result.Summary.TotalItems < 2 {
		return
	}
	result.Summary.PrintSummary(cmd.ErrOrStderr())
	fmt.Fprintln(cmd.ErrOrStderr(), "Destination not saved.")
}

// isNotFound reports whether err is a missing unit, directly or within a batch.
func isNotFound(err error) bool {
	var nf *circuit.UnitNotFoundError
	return errors.As(err, &nf)
}
