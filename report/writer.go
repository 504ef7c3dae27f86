package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
)

// Result is a written report. Generated is false when the fallback summary
// was used.
type Result struct {
	Path      string
	Generated bool
	GenErr    error
}

// Writer renders reports to markdown files. A generator failure degrades to
// the fallback summary; the fetched records are always written.
type Writer struct {
	gen    Generator
	dir    string
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewWriter(gen Generator, dir string, logger *zap.SugaredLogger) *Writer {
	if dir == "" {
		dir = "outputs"
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Writer{gen: gen, dir: dir, logger: logger, now: time.Now}
}

func (w *Writer) Write(ctx context.Context, in Input) (Result, error) {
	var res Result
	analysis, err := w.analyze(ctx, in)
	if err != nil {
		res.GenErr = err
		w.logger.Warnw("Report generation failed, using summary",
			"title", in.Title,
			"error", err)
		analysis = Summary(in)
	} else {
		res.Generated = true
	}

	now := w.now().UTC()
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create report dir: %w", err)
	}
	res.Path = filepath.Join(w.dir, fmt.Sprintf("%s_%s.md", slug(in.Title), now.Format("20060102_150405")))

	content, err := render(in, analysis, res.Generated, now)
	if err != nil {
		return res, err
	}
	if err := os.WriteFile(res.Path, []byte(content), 0o644); err != nil {
		return res, fmt.Errorf("failed to write report: %w", err)
	}

	w.logger.Infow("Report written",
		"path", res.Path,
		"records", len(in.Records),
		"generated", res.Generated)
	return res, nil
}

func (w *Writer) analyze(ctx context.Context, in Input) (string, error) {
	if w.gen == nil {
		return "", ErrNotConfigured
	}
	p, err := BuildPrompt(in)
	if err != nil {
		return "", err
	}
	return w.gen.Generate(ctx, p)
}

func render(in Input, analysis string, generated bool, now time.Time) (string, error) {
	raw, err := json.MarshalIndent(in.Records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode records: %w", err)
	}

	source := "fallback summary"
	if generated {
		source = "language model"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s\n\n", in.Title, now.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "## Analysis (%s)\n\n%s\n\n", source, strings.TrimSpace(analysis))
	b.WriteString("## Raw Data\n\n```json\n")
	b.Write(raw)
	b.WriteString("\n```\n\n")
	fmt.Fprintf(&b, "*Generated on %s*\n", now.Format(time.RFC3339))
	return b.String(), nil
}

func slug(s string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			sep = false
		} else if !sep {
			b.WriteByte('_')
			sep = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "report"
	}
	return out
}
