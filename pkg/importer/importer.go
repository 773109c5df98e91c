// Package importer classifies an uploaded legacy journal export into one of
// four known shapes and extracts a normalized list of dated entries. It is a
// pure in-memory transformation: it opens no connections and writes nothing.
// Content that cannot be confidently dated is skipped with a human-readable
// warning rather than silently mis-dated, and no malformed input is ever a
// fatal error to the caller.
package importer

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Format is the detected shape of an uploaded file.
type Format string

const (
	// FormatZipArchive is a compressed archive of one file per entry, with
	// the entry date in each member's filename (the 750words.com export).
	FormatZipArchive Format = "zip_archive"
	// FormatDelimited is a single text file holding many entries separated
	// by "=== label ===" section headers.
	FormatDelimited Format = "delimited"
	// FormatDatedFile is a single entry whose date appears in the filename.
	FormatDatedFile Format = "dated_file"
	// FormatUndatedFile is a single entry with no recognizable date.
	FormatUndatedFile Format = "undated_file"
)

// ParsedEntry is one normalized entry produced by the pipeline. Every entry
// handed to the caller has a resolved date; the content is whitespace-trimmed.
type ParsedEntry struct {
	Date    time.Time
	Content string
}

// headerRe matches section delimiter lines like "=== January 5, 2024 ===" or
// "=== 2024-01-05 ===". The dot does not cross newlines, so the whole
// delimiter must sit on one line.
var headerRe = regexp.MustCompile(`={3,}\s*\S.*?\s*={3,}`)

// DetectFormat classifies an upload. The order of checks is significant and
// must not change: the archive check is extension-only and comes first, so
// zip bytes are never inspected as text; the content delimiter check comes
// before the filename date check so a multi-entry file named with a date
// still parses every section.
func DetectFormat(filename, content string) Format {
	if strings.HasSuffix(strings.ToLower(filename), ".zip") {
		return FormatZipArchive
	}
	if headerRe.MatchString(content) {
		return FormatDelimited
	}
	if _, ok := ParseDate(filename); ok {
		return FormatDatedFile
	}
	return FormatUndatedFile
}

// ParseUpload is the pipeline entry point: given an uploaded filename and its
// raw bytes, it returns the extracted entries and any warnings. Both lists
// may be empty; entries keep file traversal order and are not deduplicated.
// Resolving duplicate dates against already-stored entries is the caller's
// policy, not the pipeline's.
func ParseUpload(filename string, data []byte) ([]ParsedEntry, []string) {
	var content string
	if !strings.HasSuffix(strings.ToLower(filename), ".zip") {
		content = decodeText(data)
	}

	switch DetectFormat(filename, content) {
	case FormatZipArchive:
		return parseZipArchive(data)
	case FormatDelimited:
		return parseDelimited(content)
	case FormatDatedFile:
		return parseDatedFile(filename, content)
	default:
		return parseUndatedFile(content)
	}
}

// parseZipArchive extracts one entry per dated member. Directory markers and
// packaging metadata ("__MACOSX/...") are skipped silently; members whose
// names carry no parseable date are skipped with a warning. A container that
// cannot be opened at all yields zero entries and a single warning.
func parseZipArchive(data []byte) ([]ParsedEntry, []string) {
	var entries []ParsedEntry
	var warnings []string

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, []string{fmt.Sprintf("Invalid zip file: %v", err)}
	}

	for _, member := range reader.File {
		name := member.Name
		if strings.HasSuffix(name, "/") || strings.HasPrefix(name, "__MACOSX") {
			continue
		}

		date, ok := ParseDate(name)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Could not parse date from filename: %s - skipped.", name))
			continue
		}

		raw, err := readZipMember(member)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Could not read archive member %s - skipped.", name))
			continue
		}

		entries = append(entries, ParsedEntry{
			Date:    date,
			Content: strings.TrimSpace(decodeText(raw)),
		})
	}

	return entries, warnings
}

func readZipMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseDelimited splits a multi-entry file on its "=== label ===" headers,
// pairing each header with the text that follows it up to the next header.
// A header whose label has no parseable date voids only its own section.
func parseDelimited(text string) ([]ParsedEntry, []string) {
	var entries []ParsedEntry
	var warnings []string

	headers := headerRe.FindAllString(text, -1)
	if len(headers) == 0 {
		// Detection requires at least one header, so this is a guard for
		// callers invoking the shape parser directly.
		return nil, []string{"No date headers found - use the dated file import instead."}
	}

	// parts[0] is whatever precedes the first header, usually empty.
	parts := headerRe.Split(text, -1)

	for i, header := range headers {
		segment := parts[i+1]

		date, ok := ParseDate(header)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Could not parse date from header %q - skipped.", strings.TrimSpace(header)))
			continue
		}

		entries = append(entries, ParsedEntry{
			Date:    date,
			Content: strings.TrimSpace(segment),
		})
	}

	return entries, warnings
}

// parseDatedFile handles a single entry dated by its filename. The filename
// is the only date source for this shape, so an unparseable name voids the
// whole file.
func parseDatedFile(filename, content string) ([]ParsedEntry, []string) {
	date, ok := ParseDate(filename)
	if !ok {
		return nil, []string{fmt.Sprintf("Could not parse date from filename: %s", filename)}
	}

	return []ParsedEntry{{
		Date:    date,
		Content: strings.TrimSpace(content),
	}}, nil
}

// parseUndatedFile assigns today's date and says so; the user is expected to
// correct the date after import if today is wrong.
func parseUndatedFile(content string) ([]ParsedEntry, []string) {
	today := dateOnly(time.Now())

	warning := fmt.Sprintf(
		"No date found in filename - imported as today (%s). Edit the entry date if needed.",
		today.Format("2006-01-02"))

	return []ParsedEntry{{
		Date:    today,
		Content: strings.TrimSpace(content),
	}}, []string{warning}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
