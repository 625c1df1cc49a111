package batchimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/hsinyu-chen/novelshelf/internal/entities"
)

// legacyBackfillYear is the year completion dates are backfilled into
// for completed rows that carry no date of their own.
const legacyBackfillYear = 2025

// readRows loads a CSV file into header-indexed rows. Files saved by
// older spreadsheet tools arrive as Big5; anything that is not valid
// UTF-8 is decoded as such before parsing.
func readRows(path string) ([]map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(raw) {
		decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s as Big5: %w", path, err)
		}
		raw = decoded
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadGamingCSV parses the gaming-forum export layout. Every row there
// is a finished book: ratings are star glyph counts, remarks carry
// bracketed category labels, and no completion date exists so one is
// backfilled per the date strategy.
func LoadGamingCSV(path string, strategy DateStrategy) ([]Candidate, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, row := range rows {
		title := row["書名"]
		if title == "" {
			continue
		}
		c := Candidate{
			Title:           title,
			Author:          row["作者"],
			URL:             row["Link"],
			DescriptionText: row["評論"],
			UserRating:      strings.Count(row["推薦度"], "★"),
			Status:          entities.StatusCompleted,
			Tags:            parseRemarkTags(row["備註"]),
			OriginalSource:  SourceGamingCSV,
			CompletedDate:   strategy.legacyDate(legacyBackfillYear),
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// LoadBooklistCSV parses the hand-maintained booklist layout, which
// carries a synopsis, a category column and an explicit completion date.
// A dated row counts as completed even when the status cell is not
// marked; a marked but undated row gets a backfill date per the
// strategy.
func LoadBooklistCSV(path string, strategy DateStrategy) ([]Candidate, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, row := range rows {
		title := row["書名"]
		if title == "" {
			continue
		}
		date := parseBooklistDate(row["日期"])
		status := entities.StatusUnread
		if date != nil || strings.Contains(row["狀態"], "完") {
			status = entities.StatusCompleted
		}
		if status == entities.StatusCompleted && date == nil {
			date = strategy.legacyDate(legacyBackfillYear)
		}
		tags := row["類別Tag"]
		if tags == "" {
			tags = row["類別"]
		}
		c := Candidate{
			Title:           title,
			Author:          row["作者"],
			URL:             row["來源"],
			DescriptionText: row["文案"],
			Status:          status,
			Tags:            splitTags(tags),
			OriginalSource:  SourceBooklistCSV,
			CompletedDate:   date,
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// parseRemarkTags turns a remark cell like "【現代】【娛樂圈】" into its
// bracketed labels. Free text outside brackets is kept as one tag.
func parseRemarkTags(remark string) []string {
	remark = strings.TrimSpace(remark)
	if remark == "" {
		return nil
	}
	if !strings.Contains(remark, "【") {
		return []string{remark}
	}
	var tags []string
	for _, part := range strings.Split(remark, "【") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "】"))
		part = strings.ReplaceAll(part, "】", "")
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// splitTags splits a category cell on either fullwidth or ASCII commas,
// folding fullwidth parentheses to ASCII along the way.
func splitTags(cell string) []string {
	cell = strings.ReplaceAll(cell, "（", "(")
	cell = strings.ReplaceAll(cell, "）", ")")
	cell = strings.ReplaceAll(cell, "，", ",")
	var tags []string
	for _, t := range strings.Split(cell, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseBooklistDate(cell string) *time.Time {
	if cell == "" {
		return nil
	}
	for _, layout := range []string{"2006/01/02", "2006/1/2", "2006-01-02"} {
		if d, err := time.ParseInLocation(layout, cell, time.Local); err == nil {
			return &d
		}
	}
	return nil
}
