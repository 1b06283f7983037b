package merge

import (
	"fmt"
	"strings"

	"github.com/munakata1001/mitumorisyo/internal/model"
)

// Mode selects how uploaded files are combined.
type Mode string

const (
	ModeSingle         Mode = "single"
	ModeTwoFile        Mode = "2-file"
	ModeThreeFile      Mode = "3-file"
	ModePriceReference Mode = "2-file+price-reference"
)

var modeAliases = map[string]Mode{
	"":       ModeSingle,
	"single": ModeSingle,
	"個別解析":   ModeSingle,

	"2-file":  ModeTwoFile,
	"2ファイル統合": ModeTwoFile,
	"3-file":  ModeThreeFile,
	"3ファイル統合": ModeThreeFile,

	"2-file+price-reference": ModePriceReference,
	"2ファイル+価格参考":             ModePriceReference,
}

// ParseMode accepts both the English mode names and the Japanese labels used
// by the upload form. An empty value selects ModeSingle.
func ParseMode(raw string) (Mode, error) {
	if m, ok := modeAliases[strings.TrimSpace(raw)]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown parse mode %q", raw)
}

// FileCount returns the number of files a mode requires, or 0 when any count
// up to the upload limit is accepted.
func (m Mode) FileCount() int {
	switch m {
	case ModeTwoFile, ModePriceReference:
		return 2
	case ModeThreeFile:
		return 3
	default:
		return 0
	}
}

// Label returns the Japanese name shown on the upload form.
func (m Mode) Label() string {
	switch m {
	case ModeTwoFile:
		return "2ファイル統合"
	case ModeThreeFile:
		return "3ファイル統合"
	case ModePriceReference:
		return "2ファイル+価格参考"
	default:
		return "個別解析"
	}
}

// FileCountError reports a mode used with the wrong number of files.
type FileCountError struct {
	Mode Mode
	Want int
	Got  int
}

func (e *FileCountError) Error() string {
	return fmt.Sprintf("mode %s requires %d files, got %d", e.Mode, e.Want, e.Got)
}

// Combine dispatches parsed file results according to mode.
func Combine(mode Mode, results [][]model.LineItem) ([]model.LineItem, error) {
	if want := mode.FileCount(); want > 0 && len(results) != want {
		return nil, &FileCountError{Mode: mode, Want: want, Got: len(results)}
	}

	switch mode {
	case ModeTwoFile, ModeThreeFile:
		return MergeFileResults(results), nil
	case ModePriceReference:
		primary := MergeFileResults(results[:1])
		return ApplyPriceReference(primary, results[1]), nil
	default:
		if len(results) == 0 {
			return []model.LineItem{}, nil
		}
		return results[0], nil
	}
}
