package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"CreatorProfiler/internal/ports"
)

// FileArchive writes each report as {dir}/job_{id}.md.
type FileArchive struct {
	dir string
}

var _ ports.ReportArchive = (*FileArchive)(nil)

// NewFileArchive points the archive at dir; the directory is created lazily.
func NewFileArchive(dir string) *FileArchive {
	return &FileArchive{dir: dir}
}

// Path returns the file a job's report is written to.
func (a *FileArchive) Path(jobID int64) string {
	return filepath.Join(a.dir, fmt.Sprintf("job_%d.md", jobID))
}

// Save overwrites the job's report file. The write goes through a temp file
// so readers never see a partial report.
func (a *FileArchive) Save(ctx context.Context, jobID int64, markdown string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(a.dir, fmt.Sprintf(".job_%d_*.md", jobID))
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(markdown); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), a.Path(jobID)); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
