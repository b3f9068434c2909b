package batchrename

import "fmt"

type NamingMode string

const (
	ModeTimestamp NamingMode = "timestamp"
	ModeSequence  NamingMode = "sequence"
)

// ParseNamingMode accepts the mode names as well as the menu choices "1" and "2".
func ParseNamingMode(s string) (NamingMode, error) {
	switch s {
	case "", "1", string(ModeTimestamp):
		return ModeTimestamp, nil
	case "2", string(ModeSequence):
		return ModeSequence, nil
	default:
		return "", fmt.Errorf("unknown naming mode: %s", s)
	}
}

type FileEntry struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type RenamePair struct {
	Source  FileEntry `json:"source"`
	NewName string    `json:"new_name"`
}

type RenamePlan struct {
	Mode   NamingMode   `json:"mode"`
	Prefix string       `json:"prefix"`
	Pairs  []RenamePair `json:"pairs"`
}

func (p *RenamePlan) Len() int {
	return len(p.Pairs)
}

type LogEntry struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

type RenameFailure struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	Reason  string `json:"reason"`
}

type ExecuteResult struct {
	Renamed []LogEntry      `json:"renamed"`
	Failed  []RenameFailure `json:"failed,omitempty"`
	LogPath string          `json:"log_path,omitempty"`
}

func (r *ExecuteResult) Success() bool {
	return len(r.Failed) == 0
}

type UndoResult struct {
	Restored   []LogEntry      `json:"restored"`
	Failed     []RenameFailure `json:"failed,omitempty"`
	LogCleared bool            `json:"log_cleared"`
}

func (r *UndoResult) Success() bool {
	return len(r.Failed) == 0
}
