package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		current  string
	}{
		{"Identical", "foo\nbar\n", "foo\nbar\n"},
		{"Empty", "", ""},
		{"OnlyTrailingNewlineAdded", "foo", "foo\n"},
		{"OnlyTrailingNewlineRemoved", "foo\n", "foo"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			patch := Diff(test.previous, test.current, "a.txt")
			assert.False(t, patch.Changed())
			assert.Empty(t, patch.Text)
		})
	}
}

func TestDiffAddLine(t *testing.T) {
	patch := Diff("foo\n", "foo\nbar\n", "a.txt")
	assert.True(t, patch.Changed())
	assert.Equal(t, 1, patch.Added)
	assert.Equal(t, 0, patch.Removed)
	assert.Equal(t, "+1 -0", patch.Summary())

	exp := "--- a/a.txt\n" +
		"+++ b/a.txt\n" +
		"@@ -1,1 +1,2 @@\n" +
		" foo\n" +
		"+bar\n"
	assert.Equal(t, exp, patch.Text)
}

func TestDiffFirstContent(t *testing.T) {
	patch := Diff("", "a\nb\n", "new.txt")
	assert.True(t, patch.Changed())
	assert.Equal(t, 2, patch.Added)
	assert.Equal(t, 0, patch.Removed)
	assert.Contains(t, patch.Text, "@@ -0,0 +1,2 @@\n")
}

func TestDiffContextWindow(t *testing.T) {
	var prevLines, currLines []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("line-%d", i)
		prevLines = append(prevLines, line)
		if i == 5 {
			line = "changed"
		}
		currLines = append(currLines, line)
	}
	previous := strings.Join(prevLines, "\n") + "\n"
	current := strings.Join(currLines, "\n") + "\n"

	patch := Diff(previous, current, "a.txt")
	assert.Equal(t, 1, patch.Added)
	assert.Equal(t, 1, patch.Removed)

	// Two lines of context on each side of the change, and nothing more.
	assert.Contains(t, patch.Text, "@@ -3,5 +3,5 @@\n")
	assert.Contains(t, patch.Text, " line-3\n")
	assert.Contains(t, patch.Text, " line-7\n")
	assert.Contains(t, patch.Text, "-line-5\n")
	assert.Contains(t, patch.Text, "+changed\n")
	assert.NotContains(t, patch.Text, "line-2")
	assert.NotContains(t, patch.Text, "line-8")
}

func TestDiffHunkGrouping(t *testing.T) {
	tests := []struct {
		name         string
		lines        int
		changedLines []int
		expHunks     int
	}{
		{
			// The three unchanged lines between the changes fit within the
			// shared context, so the changes share a hunk.
			name:         "NearbyChangesMerge",
			lines:        8,
			changedLines: []int{2, 6},
			expHunks:     1,
		},
		{
			name:         "DistantChangesSplit",
			lines:        14,
			changedLines: []int{2, 12},
			expHunks:     2,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			changed := map[int]bool{}
			for _, line := range test.changedLines {
				changed[line] = true
			}

			var prevLines, currLines []string
			for i := 1; i <= test.lines; i++ {
				line := fmt.Sprintf("line-%d", i)
				prevLines = append(prevLines, line)
				if changed[i] {
					line += "-changed"
				}
				currLines = append(currLines, line)
			}

			patch := Diff(strings.Join(prevLines, "\n")+"\n",
				strings.Join(currLines, "\n")+"\n", "a.txt")
			assert.Equal(t, test.expHunks, strings.Count(patch.Text, "@@ -"))
		})
	}
}

func TestApplyRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		current  string
	}{
		{"AppendLine", "foo\n", "foo\nbar\n"},
		{"PrependLine", "foo\n", "bar\nfoo\n"},
		{"DeleteMiddle", "a\nb\nc\n", "a\nc\n"},
		{"DeleteTail", "a\nb\nc\n", "a\n"},
		{"ReplaceAll", "a\nb\n", "x\ny\nz\n"},
		{"FromEmpty", "", "a\nb\n"},
		{"ToEmpty", "a\nb\n", ""},
		{"InsertedPlusLines", "a\n", "a\n++ x\n+++ y\n"},
		{
			"MultipleHunks",
			"1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n",
			"1\nchanged\n3\n4\n5\n6\n7\n8\n9\n10\n11\nalso-changed\n13\n14\n",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			patch := Diff(test.previous, test.current, "a.txt")
			require.True(t, patch.Changed())

			applied, err := Apply(test.previous, patch)
			require.NoError(t, err)
			assert.Equal(t, test.current, applied)
		})
	}
}

func TestApplyContentMismatch(t *testing.T) {
	patch := Diff("foo\n", "bar\n", "a.txt")
	_, err := Apply("something else\n", patch)
	assert.Error(t, err)
}
