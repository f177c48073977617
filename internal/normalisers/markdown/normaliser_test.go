package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

func TestSupports(t *testing.T) {
	e := New()

	assert.True(t, e.Supports("README.md"))
	assert.True(t, e.Supports("notes.markdown"))
	assert.False(t, e.Supports("notes.txt"))
}

func TestExtract_SectionsBecomePages(t *testing.T) {
	content := "# About Buddy\n\nBuddy is a **dalmatian**.\n\n---\n\n" +
		"## Home\n\n- He lives in [San Francisco](https://sf.gov).\n\n---\n\n"
	path := filepath.Join(t.TempDir(), "buddy.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	docs, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, docs, 2, "trailing empty section is skipped")
	assert.Equal(t, domain.Document{Page: 1, Text: "About Buddy\n\nBuddy is a dalmatian."}, docs[0])
	assert.Equal(t, domain.Document{Page: 2, Text: "Home\n\nHe lives in San Francisco."}, docs[1])
}

func TestExtract_RuleInsideCodeBlockDoesNotSplit(t *testing.T) {
	content := "Intro text.\n\n```\n---\n```\n\nMore text."
	path := filepath.Join(t.TempDir(), "code.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	docs, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "Intro text.\n\nMore text.", docs[0].Text)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.md"))

	require.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "### Title", "Title"},
		{"bold", "a **bold** word", "a bold word"},
		{"inline code keeps text", "run `buddy index`", "run buddy index"},
		{"image removed", "see ![dog](dog.png) here", "see  here"},
		{"numbered list", "1. first\n2. second", "first\nsecond"},
		{"blockquote", "> quoted", "quoted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.in))
		})
	}
}
