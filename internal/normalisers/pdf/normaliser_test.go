package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

// writeTestPDF writes a minimal PDF with one text line per page.
// An empty string produces a page with no text.
func writeTestPDF(t *testing.T, pages []string) string {
	t.Helper()

	// Object layout: 1 catalog, 2 pages, 3 font, then a page and content pair per page.
	var objects []string
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "source.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestSupports(t *testing.T) {
	e := New()

	assert.True(t, e.Supports("data/All_about_buddy.pdf"))
	assert.True(t, e.Supports("REPORT.PDF"))
	assert.False(t, e.Supports("notes.txt"))
	assert.False(t, e.Supports("pdf"))
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

	require.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestExtract_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a pdf"), 0o600))

	_, err := New().Extract(context.Background(), path)

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_Pages(t *testing.T) {
	path := writeTestPDF(t, []string{
		"Buddy is a dalmatian.",
		"",
		"He lives in San Francisco.",
	})

	docs, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, docs, 2, "blank page is skipped")
	assert.Equal(t, 1, docs[0].Page)
	assert.Contains(t, docs[0].Text, "dalmatian")
	assert.Equal(t, 3, docs[1].Page, "page numbers keep their position in the file")
	assert.Contains(t, docs[1].Text, "San Francisco")
}

func TestExtract_Cancelled(t *testing.T) {
	path := writeTestPDF(t, []string{"Buddy is a dalmatian."})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, path)

	require.ErrorIs(t, err, context.Canceled)
}
