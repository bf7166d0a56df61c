// Package diff produces the unified-style patches that are sent to the
// agent when a tracked text file changes. It's a pure transformation of two
// content snapshots; all state lives with the caller.
package diff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/peripherylabs/agentsync/pkg/errors"
)

// contextLines is the number of unchanged lines shown on each side of a
// change within a hunk.
const contextLines = 2

// Patch is a unified-style textual patch between two content snapshots,
// along with a summary of the line counts. The counts are derived from the
// patch for display purposes only.
type Patch struct {
	// Text is the unified patch. Empty when the two snapshots are equal
	// (a difference of only a trailing final newline counts as equal).
	Text string

	// Added and Removed count the changed lines.
	Added   int
	Removed int
}

// Changed returns whether the patch contains any changes.
func (p Patch) Changed() bool {
	return p.Text != ""
}

// Summary returns a short human-readable description of the patch size.
func (p Patch) Summary() string {
	return fmt.Sprintf("+%d -%d", p.Added, p.Removed)
}

type lineOp struct {
	op   diffmatchpatch.Operation
	line string
}

// Diff computes the unified patch that transforms `previous` into
// `current`. `label` names the file in the patch header. Contents that
// differ only by the presence of a final trailing newline produce an empty
// patch.
func Diff(previous, current, label string) Patch {
	previous = normalize(previous)
	current = normalize(current)
	if previous == current {
		return Patch{}
	}

	ops := lineDiff(previous, current)

	var added, removed int
	for _, op := range ops {
		switch op.op {
		case diffmatchpatch.DiffInsert:
			added++
		case diffmatchpatch.DiffDelete:
			removed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", label)
	fmt.Fprintf(&b, "+++ b/%s\n", label)
	for _, hunk := range hunkRanges(ops) {
		writeHunk(&b, ops, hunk)
	}

	return Patch{Text: b.String(), Added: added, Removed: removed}
}

// Apply replays a patch produced by Diff onto `previous` and returns the
// resulting content. It's used to verify that a patch faithfully
// reproduces the content it was computed from.
func Apply(previous string, p Patch) (string, error) {
	if !p.Changed() {
		return normalize(previous), nil
	}

	prevLines := splitLines(normalize(previous))
	var out []string
	cursor := 0
	inHunk := false

	for _, line := range splitLines(p.Text) {
		switch {
		case !inHunk && (strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ")):
		case strings.HasPrefix(line, "@@"):
			inHunk = true
			start, count, err := parseHunkHeader(line)
			if err != nil {
				return "", err
			}

			// With a zero count the header names the line the insertion
			// follows rather than the first affected line.
			upTo := start - 1
			if count == 0 {
				upTo = start
			}
			if upTo < cursor || upTo > len(prevLines) {
				return "", errors.New("hunk does not apply: bad start line")
			}
			out = append(out, prevLines[cursor:upTo]...)
			cursor = upTo
		case strings.HasPrefix(line, "+"):
			out = append(out, strings.TrimPrefix(line, "+"))
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, " "):
			if cursor >= len(prevLines) || prevLines[cursor] != line[1:] {
				return "", errors.New("hunk does not apply: content mismatch")
			}
			if line[0] == ' ' {
				out = append(out, prevLines[cursor])
			}
			cursor++
		default:
			return "", errors.New(fmt.Sprintf("unrecognized patch line %q", line))
		}
	}

	out = append(out, prevLines[cursor:]...)
	return strings.Join(out, ""), nil
}

// lineDiff returns the per-line edit script between the two contents. Each
// returned op covers exactly one line, including its trailing newline.
func lineDiff(previous, current string) []lineOp {
	dmp := diffmatchpatch.New()
	prevChars, currChars, lines := dmp.DiffLinesToChars(previous, current)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(prevChars, currChars, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			ops = append(ops, lineOp{op: d.Type, line: line})
		}
	}
	return ops
}

type hunkRange struct {
	start, end int
}

// hunkRanges groups the edit script into hunks. Changes separated by at
// most 2*contextLines unchanged lines share a hunk; each hunk carries up
// to contextLines of unchanged lines on either side.
func hunkRanges(ops []lineOp) []hunkRange {
	var hunks []hunkRange

	i := 0
	for i < len(ops) {
		if ops[i].op == diffmatchpatch.DiffEqual {
			i++
			continue
		}

		start := i - contextLines
		if start < 0 {
			start = 0
		}

		end := i + 1
		j := i + 1
		for j < len(ops) {
			if ops[j].op != diffmatchpatch.DiffEqual {
				end = j + 1
				j++
				continue
			}

			k := j
			for k < len(ops) && ops[k].op == diffmatchpatch.DiffEqual {
				k++
			}
			if k < len(ops) && k-j <= contextLines*2 {
				// The gap is small enough to fold into this hunk.
				j = k
				continue
			}
			break
		}

		end += contextLines
		if end > len(ops) {
			end = len(ops)
		}

		hunks = append(hunks, hunkRange{start, end})
		i = end
	}
	return hunks
}

func writeHunk(b *strings.Builder, ops []lineOp, hunk hunkRange) {
	// Line numbers (1-based) of the hunk's first op in each snapshot.
	oldStart, newStart := 1, 1
	for _, op := range ops[:hunk.start] {
		switch op.op {
		case diffmatchpatch.DiffEqual:
			oldStart++
			newStart++
		case diffmatchpatch.DiffDelete:
			oldStart++
		case diffmatchpatch.DiffInsert:
			newStart++
		}
	}

	var oldCount, newCount int
	for _, op := range ops[hunk.start:hunk.end] {
		switch op.op {
		case diffmatchpatch.DiffEqual:
			oldCount++
			newCount++
		case diffmatchpatch.DiffDelete:
			oldCount++
		case diffmatchpatch.DiffInsert:
			newCount++
		}
	}

	// By convention an empty side is reported at the preceding line.
	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}

	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	for _, op := range ops[hunk.start:hunk.end] {
		switch op.op {
		case diffmatchpatch.DiffEqual:
			b.WriteString(" ")
		case diffmatchpatch.DiffDelete:
			b.WriteString("-")
		case diffmatchpatch.DiffInsert:
			b.WriteString("+")
		}
		b.WriteString(op.line)
	}
}

// parseHunkHeader extracts the previous-content start line and count from
// a `@@ -start,count +start,count @@` header.
func parseHunkHeader(header string) (start, count int, err error) {
	fields := strings.Fields(header)
	if len(fields) < 3 || !strings.HasPrefix(fields[1], "-") {
		return 0, 0, errors.New(fmt.Sprintf("malformed hunk header %q", header))
	}

	spec := strings.TrimPrefix(fields[1], "-")
	parts := strings.SplitN(spec, ",", 2)
	if start, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, errors.WithContext(err, "parse hunk start")
	}

	count = 1
	if len(parts) == 2 {
		if count, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, errors.WithContext(err, "parse hunk count")
		}
	}
	return start, count, nil
}

// normalize guarantees the content ends with a newline so that the final
// line diffs like any other. A file differing only by its final newline is
// therefore treated as unchanged.
func normalize(content string) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		return content + "\n"
	}
	return content
}

// splitLines splits content into lines, each keeping its trailing newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
