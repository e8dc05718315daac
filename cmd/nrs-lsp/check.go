package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
)

const defaultCheckPattern = "**/*.nrs"

// tabWidth is the display width used for tabs in source excerpts.
const tabWidth = 4

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgBlue, color.Bold)
	pathColor    = color.New(color.Bold)
	caretColor   = color.New(color.FgGreen, color.Bold)
)

// fileReport holds the outcome of compiling one file.
type fileReport struct {
	Path        string
	Text        string
	Diagnostics []analysis.Diagnostic
}

func (r fileReport) errorCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == analysis.SeverityError {
			n++
		}
	}
	return n
}

func check(c *cli.Context) error {
	if c.Bool("no-color") {
		color.NoColor = true
	}

	patterns := c.Args().Slice()
	if len(patterns) == 0 {
		patterns = []string{defaultCheckPattern}
	}

	paths, err := expandPatterns(patterns)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return cli.Exit("no files match "+strings.Join(patterns, " "), 1)
	}

	reports, err := checkFiles(c.Context, paths, c.Int("jobs"))
	if err != nil {
		return err
	}

	errors := 0
	for _, r := range reports {
		errors += writeReport(c.App.Writer, r)
	}
	log.Infof("checked %d files, %d errors", len(reports), errors)

	if errors > 0 {
		return cli.Exit(fmt.Sprintf("%d error(s) in %d file(s)", errors, len(reports)), 1)
	}
	return nil
}

// expandPatterns resolves doublestar globs to a sorted, deduplicated file
// list. A pattern without glob metacharacters is taken as a literal path.
func expandPatterns(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			paths = append(paths, pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// checkFiles compiles paths concurrently. Reports keep the order of paths.
func checkFiles(ctx context.Context, paths []string, jobs int) ([]fileReport, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	reports := make([]fileReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			text := string(data)
			res, err := analysis.Compile(text)
			if err != nil {
				return fmt.Errorf("compile %s: %w", path, err)
			}
			reports[i] = fileReport{Path: path, Text: text, Diagnostics: res.Diagnostics}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// writeReport prints every diagnostic of r and returns the number of errors.
func writeReport(w io.Writer, r fileReport) int {
	for _, d := range r.Diagnostics {
		writeDiagnostic(w, r.Path, r.Text, d)
	}
	return r.errorCount()
}

func writeDiagnostic(w io.Writer, path, text string, d analysis.Diagnostic) {
	start := min(max(d.Span.Start, 0), len(text))
	end := min(max(d.Span.End, start), len(text))

	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	lineEnd := strings.IndexByte(text[start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text)
	} else {
		lineEnd += start
	}
	lineNo := strings.Count(text[:lineStart], "\n") + 1
	col := utf8.RuneCountInString(text[lineStart:start]) + 1

	fmt.Fprintf(w, "%s: %s: %s",
		pathColor.Sprintf("%s:%d:%d", path, lineNo, col),
		severityColor(d.Severity).Sprint(d.Severity),
		d.Message)
	if d.Code != "" {
		fmt.Fprintf(w, " [%s]", d.Code)
	}
	fmt.Fprintln(w)

	line := text[lineStart:lineEnd]
	fmt.Fprintf(w, "  %s\n", expandTabs(line))
	fmt.Fprintf(w, "  %s%s\n",
		strings.Repeat(" ", displayWidth(text[lineStart:start])),
		caretColor.Sprint(underline(displayWidth(text[start:min(end, lineEnd)]))))
}

func severityColor(s analysis.Severity) *color.Color {
	switch s {
	case analysis.SeverityError:
		return errorColor
	case analysis.SeverityWarning:
		return warningColor
	default:
		return infoColor
	}
}

// underline renders a caret followed by tildes spanning width columns.
func underline(width int) string {
	if width < 1 {
		width = 1
	}
	return "^" + strings.Repeat("~", width-1)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}
