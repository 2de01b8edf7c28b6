package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChangedFilePath(t *testing.T) {
	tests := []struct {
		name string
		file ChangedFile
		want string
	}{
		{
			name: "derived from contents URL",
			file: ChangedFile{
				Filename:    "src/index.ts",
				ContentsURL: "https://api.github.com/repos/o/r/contents/src/index.ts?ref=abc",
			},
			want: "src/index.ts",
		},
		{
			name: "percent-decoded",
			file: ChangedFile{
				Filename:    "docs/release notes.md",
				ContentsURL: "https://api.github.com/repos/o/r/contents/docs/release%20notes.md?ref=abc",
			},
			want: "docs/release notes.md",
		},
		{
			name: "falls back to filename",
			file: ChangedFile{Filename: "main.go"},
			want: "main.go",
		},
		{
			name: "unparseable URL falls back to filename",
			file: ChangedFile{Filename: "main.go", ContentsURL: "://nope"},
			want: "main.go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.file.Path())
		})
	}
}

func TestChangedFileReviewable(t *testing.T) {
	patch := "@@ -1 +1 @@\n+hi"

	require.True(t, (&ChangedFile{Status: StatusAdded, Patch: patch}).Reviewable(0))
	require.True(t, (&ChangedFile{Status: StatusModified, Patch: patch}).Reviewable(len(patch)))

	require.False(t, (&ChangedFile{Status: StatusRemoved, Patch: patch}).Reviewable(0))
	require.False(t, (&ChangedFile{Status: StatusRenamed, Patch: patch}).Reviewable(0))
	require.False(t, (&ChangedFile{Status: StatusModified}).Reviewable(0))
	require.False(t, (&ChangedFile{Status: StatusModified, Patch: patch}).Reviewable(len(patch)-1))
}

func TestVerdictRequestsChanges(t *testing.T) {
	require.False(t, Verdict{LGTM: true}.RequestsChanges())
	require.False(t, Verdict{LGTM: true, Comment: "looks good"}.RequestsChanges())
	require.False(t, Verdict{LGTM: false, Comment: "   "}.RequestsChanges())
	require.True(t, Verdict{LGTM: false, Comment: "please fix"}.RequestsChanges())
}

func TestPullRequestHasLabel(t *testing.T) {
	pr := PullRequest{Labels: []string{"bug", "needs-review"}}
	require.True(t, pr.HasLabel("needs-review"))
	require.False(t, pr.HasLabel("enhancement"))
}
