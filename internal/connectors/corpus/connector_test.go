package corpus

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadence-hq/cadence-cli/internal/core/domain"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collectScan(t *testing.T, c *Connector) ([]domain.RawDocument, []error) {
	t.Helper()
	docsCh, errsCh := c.Scan(context.Background())

	var docs []domain.RawDocument
	var errs []error
	for docsCh != nil || errsCh != nil {
		select {
		case doc, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			docs = append(docs, doc)
		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			errs = append(errs, err)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, errs
}

func TestValidate(t *testing.T) {
	t.Run("Accepts a readable directory", func(t *testing.T) {
		c := New(t.TempDir(), nil)
		assert.NoError(t, c.Validate(context.Background()))
	})

	t.Run("Rejects a missing root", func(t *testing.T) {
		c := New(filepath.Join(t.TempDir(), "missing"), nil)
		assert.Error(t, c.Validate(context.Background()))
	})

	t.Run("Rejects a file root", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "file.md", "x")
		c := New(filepath.Join(root, "file.md"), nil)
		assert.ErrorIs(t, c.Validate(context.Background()), domain.ErrInvalidInput)
	})

	t.Run("Rejects an invalid ignore glob", func(t *testing.T) {
		c := New(t.TempDir(), []string{"[unclosed"})
		assert.ErrorIs(t, c.Validate(context.Background()), domain.ErrConfiguration)
	})
}

func TestScan(t *testing.T) {
	t.Run("Streams supported files with category metadata", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "guides/setup.md", "# Setup")
		writeFile(t, root, "faq/billing.txt", "Billing FAQ")
		writeFile(t, root, "notes.md", "Top level")
		writeFile(t, root, "assets/logo.png", "binary")

		docs, errs := collectScan(t, New(root, nil))
		require.Empty(t, errs)
		require.Len(t, docs, 3)

		assert.Equal(t, "faq/billing.txt", docs[0].Path)
		assert.Equal(t, "text/plain", docs[0].MIMEType)
		assert.Equal(t, "faq", docs[0].Metadata["category"])

		assert.Equal(t, "guides/setup.md", docs[1].Path)
		assert.Equal(t, "text/markdown", docs[1].MIMEType)
		assert.Equal(t, []byte("# Setup"), docs[1].Content)

		assert.Equal(t, "notes.md", docs[2].Path)
		assert.Equal(t, "general", docs[2].Metadata["category"])
	})

	t.Run("Skips README files at any depth", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "README.md", "corpus layout")
		writeFile(t, root, "guides/readme.txt", "guide index")
		writeFile(t, root, "guides/real.md", "real")

		docs, errs := collectScan(t, New(root, nil))
		require.Empty(t, errs)
		require.Len(t, docs, 1)
		assert.Equal(t, "guides/real.md", docs[0].Path)
	})

	t.Run("Skips hidden directories and files", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, ".git/config.md", "not a doc")
		writeFile(t, root, "guides/.draft.md", "hidden")
		writeFile(t, root, "guides/real.md", "real")

		docs, errs := collectScan(t, New(root, nil))
		require.Empty(t, errs)
		require.Len(t, docs, 1)
		assert.Equal(t, "guides/real.md", docs[0].Path)
	})

	t.Run("Honours ignore globs", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "drafts/wip.md", "wip")
		writeFile(t, root, "guides/old.tmp.md", "temp")
		writeFile(t, root, "guides/keep.md", "keep")

		c := New(root, []string{"drafts/**", "**/*.tmp.md"})
		docs, errs := collectScan(t, c)
		require.Empty(t, errs)
		require.Len(t, docs, 1)
		assert.Equal(t, "guides/keep.md", docs[0].Path)
	})

	t.Run("Unreadable file is reported without stopping the scan", func(t *testing.T) {
		if os.Getuid() == 0 {
			t.Skip("root ignores file permissions")
		}
		root := t.TempDir()
		writeFile(t, root, "a.md", "readable")
		writeFile(t, root, "b.md", "locked")
		require.NoError(t, os.Chmod(filepath.Join(root, "b.md"), 0o000))

		docs, errs := collectScan(t, New(root, nil))
		require.Len(t, errs, 1)
		require.Len(t, docs, 1)
		assert.Equal(t, "a.md", docs[0].Path)
	})

	t.Run("Cancellation stops the walk", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "a.md", "x")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		docsCh, errsCh := New(root, nil).Scan(ctx)
		for docsCh != nil || errsCh != nil {
			select {
			case _, ok := <-docsCh:
				if !ok {
					docsCh = nil
				}
			case _, ok := <-errsCh:
				if !ok {
					errsCh = nil
				}
			}
		}
	})
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "guides", category("guides/setup.md"))
	assert.Equal(t, "guides", category("guides/nested/deep.md"))
	assert.Equal(t, "general", category("readme.md"))
}
