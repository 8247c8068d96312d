package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-anno/internal/cache"
)

const ucscBaseURL = "https://hgdownload.soe.ucsc.edu/goldenPath"

// ucscTable is one downloadable knownGene table dump.
type ucscTable struct {
	file     string
	required bool
}

var ucscTables = []ucscTable{
	{cache.KnownGeneFile, true},
	{cache.KnownXrefFile, false},
	{cache.KnownLocusFile, false},
	{cache.KnownGeneMrnaFile, false},
}

// ucscTableURL returns the gzipped dump URL of a table for an assembly.
func ucscTableURL(baseURL, assembly, file string) string {
	return fmt.Sprintf("%s/%s/database/%s.gz", baseURL, strings.ToLower(assembly), file)
}

func newDownloadCmd() *cobra.Command {
	var (
		assembly  string
		outputDir string
		baseURL   string
		noMrna    bool
	)

	cmd := &cobra.Command{
		Use:   "download [flags]",
		Short: "Download UCSC knownGene tables",
		Long: `Download the UCSC knownGene, kgXref, knownToLocusLink and knownGeneMrna
table dumps for an assembly. Files that already exist are kept.`,
		Example: `  vibe-anno download
  vibe-anno download --assembly hg38
  vibe-anno download --output /data/ucsc/hg19 --no-mrna`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = defaultDataDir(assembly)
			}
			if outputDir == "" {
				return fmt.Errorf("cannot determine home directory; use --output")
			}
			return runDownload(cmd.Context(), cmd.OutOrStdout(), baseURL, assembly, outputDir, noMrna)
		},
	}

	f := cmd.Flags()
	f.StringVar(&assembly, "assembly", "hg19", "UCSC assembly name, e.g. hg19 or hg38")
	f.StringVarP(&outputDir, "output", "o", "", "Output directory (default: ~/.vibe-anno/<assembly>)")
	f.StringVar(&baseURL, "base-url", ucscBaseURL, "UCSC goldenPath base URL")
	f.BoolVar(&noMrna, "no-mrna", false, "Skip knownGeneMrna (no protein changes for exonic variants)")
	return cmd
}

func runDownload(ctx context.Context, w io.Writer, baseURL, assembly, destDir string, noMrna bool) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", destDir, err)
	}

	fmt.Fprintf(w, "Downloading UCSC knownGene tables for %s...\n", assembly)
	fmt.Fprintf(w, "Destination: %s\n\n", destDir)

	client := &http.Client{Timeout: 30 * time.Minute}
	for _, tbl := range ucscTables {
		if noMrna && tbl.file == cache.KnownGeneMrnaFile {
			continue
		}
		url := ucscTableURL(baseURL, assembly, tbl.file)
		dest := filepath.Join(destDir, tbl.file+".gz")
		if err := downloadFile(ctx, client, w, url, dest); err != nil {
			if tbl.required {
				return fmt.Errorf("download %s: %w", tbl.file, err)
			}
			fmt.Fprintf(w, "  Warning: could not download %s: %v\n", tbl.file, err)
		}
	}

	fmt.Fprintf(w, "\nDownload complete!\n")
	fmt.Fprintf(w, "To annotate variants, run:\n")
	fmt.Fprintf(w, "  vibe-anno annotate --transcripts %s input.vcf\n", destDir)
	return nil
}

// downloadFile downloads url to destPath through a temporary file.
func downloadFile(ctx context.Context, client *http.Client, w io.Writer, url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(w, "  Downloading %s...\n", filepath.Base(destPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{
		w:         w,
		total:     resp.ContentLength,
		lastPrint: time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(w, "    Done: %s\n", formatSize(pw.downloaded))
	return nil
}

// progressWriter reports download progress about once a second.
type progressWriter struct {
	w          io.Writer
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.w, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.w, "\r    Progress: %s  ", formatSize(pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
