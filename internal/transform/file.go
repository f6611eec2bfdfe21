package transform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Harsh-BH/csvflag/internal/domain"
)

// Result summarises one file transformation.
type Result struct {
	Rows    int
	Skipped int
}

// FileTransformer streams a CSV file through a RowTransformer.
type FileTransformer struct {
	rows       *RowTransformer
	flagColumn string
}

// NewFileTransformer creates a FileTransformer that names the appended
// header column flagColumn.
func NewFileTransformer(rows *RowTransformer, flagColumn string) *FileTransformer {
	return &FileTransformer{rows: rows, flagColumn: flagColumn}
}

// Run reads CSV text from r and writes the augmented file to w.
//
// The header gets the flag column appended. Blank data lines are dropped and
// counted in Result.Skipped. A missing or whitespace-only header yields
// domain.ErrMalformedInput. Run stops with ctx.Err() when ctx is cancelled.
func (f *FileTransformer) Run(ctx context.Context, r io.Reader, w io.Writer) (Result, error) {
	var res Result

	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	header, err := readLine(br)
	if err != nil && !errors.Is(err, io.EOF) {
		return res, fmt.Errorf("read header: %w", err)
	}
	// A header only needs some text; delimiter-only headers such as "," are kept.
	if strings.TrimSpace(header) == "" {
		return res, domain.ErrMalformedInput
	}
	if _, werr := bw.WriteString(header + Delimiter + f.flagColumn + "\n"); werr != nil {
		return res, fmt.Errorf("write header: %w", werr)
	}

	for !errors.Is(err, io.EOF) {
		if cerr := ctx.Err(); cerr != nil {
			return res, cerr
		}

		var line string
		line, err = readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return res, fmt.Errorf("read row %d: %w", res.Rows+res.Skipped+1, err)
		}
		if line == "" && errors.Is(err, io.EOF) {
			break
		}
		if IsBlank(line) {
			res.Skipped++
			continue
		}

		if _, werr := bw.WriteString(f.rows.TransformLine(line) + "\n"); werr != nil {
			return res, fmt.Errorf("write row %d: %w", res.Rows+1, werr)
		}
		res.Rows++
	}

	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("flush output: %w", err)
	}
	return res, nil
}

// readLine returns the next line without its line terminator. At the end of
// input it returns the trailing partial line, if any, together with io.EOF.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}
