package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diffwatch/reviewbot/internal/domain"
)

func file(path string) domain.ChangedFile {
	return domain.ChangedFile{Filename: path, Status: domain.StatusModified, Patch: "+x"}
}

func paths(files []domain.ChangedFile) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path())
	}
	return out
}

func TestApplyIncludeIsExclusive(t *testing.T) {
	rules := Rules{
		IgnoreList:      []string{"keep.me.ts"},
		IgnorePatterns:  []string{"*.md"},
		IncludePatterns: []string{"*.go"},
	}

	files := []domain.ChangedFile{
		file("main.go"),
		file("notes.md"),
		// Not ignored by any rule, but absent from the include set.
		file("script.py"),
		// On the ignore list, but include patterns bypass ignores entirely.
		file("keep.me.ts"),
	}

	kept := rules.Apply(files)
	require.Equal(t, []string{"main.go"}, paths(kept))
}

func TestApplyIgnoreListExactMatch(t *testing.T) {
	rules := Rules{IgnoreList: []string{"package-lock.json"}}

	kept := rules.Apply([]domain.ChangedFile{
		file("package-lock.json"),
		file("sub/package-lock.json"), // exact match only
		file("main.go"),
	})
	require.Equal(t, []string{"sub/package-lock.json", "main.go"}, paths(kept))
}

func TestApplyIgnorePatterns(t *testing.T) {
	rules := Rules{IgnorePatterns: []string{"*.md", "vendor/**"}}

	kept := rules.Apply([]domain.ChangedFile{
		file("README.md"),
		file("vendor/lib/dep.go"),
		file("internal/app.go"),
	})
	require.Equal(t, []string{"internal/app.go"}, paths(kept))
}

func TestApplyNoRulesKeepsEverything(t *testing.T) {
	files := []domain.ChangedFile{file("a.go"), file("b.md")}
	require.Len(t, Rules{}.Apply(files), 2)
}

func TestApplyEmptyResultIsValid(t *testing.T) {
	rules := Rules{IncludePatterns: []string{"*.rs"}}
	require.Empty(t, rules.Apply([]domain.ChangedFile{file("a.go")}))
}

func TestApplyUsesDecodedURLPath(t *testing.T) {
	rules := Rules{IgnoreList: []string{"docs/release notes.md"}}

	f := domain.ChangedFile{
		Filename:    "docs/release notes.md",
		Status:      domain.StatusModified,
		Patch:       "+x",
		ContentsURL: "https://api.github.com/repos/o/r/contents/docs/release%20notes.md?ref=abc123",
	}

	require.Empty(t, rules.Apply([]domain.ChangedFile{f}))
}
