package batchrename

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout renders YYMMDDHHmm, e.g. 2505261507.
const TimestampLayout = "0601021504"

type PlanOptions struct {
	Prefix string
	Mode   NamingMode
	// Start is the first sequence number. Ignored in timestamp mode.
	Start int
	// Now is the batch start time. Zero means time.Now().
	Now time.Time
}

// GeneratePlan assigns a new name to every file, preserving order. In
// timestamp mode the i-th file gets the batch start time plus i minutes so
// names stay distinct even when the batch runs in under a minute.
func GeneratePlan(files []FileEntry, opts PlanOptions) (*RenamePlan, error) {
	if len(files) == 0 {
		return nil, ErrEmptyFileList
	}

	prefix := strings.TrimSpace(opts.Prefix)
	if err := NewDefaultValidator().ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeTimestamp
	}

	plan := &RenamePlan{
		Mode:   mode,
		Prefix: prefix,
		Pairs:  make([]RenamePair, 0, len(files)),
	}

	switch mode {
	case ModeTimestamp:
		base := opts.Now
		if base.IsZero() {
			base = time.Now()
		}
		for i, file := range files {
			stamp := base.Add(time.Duration(i) * time.Minute).Format(TimestampLayout)
			plan.Pairs = append(plan.Pairs, RenamePair{
				Source:  file,
				NewName: prefix + "_" + stamp + Extension(file.Name),
			})
		}
	case ModeSequence:
		for i, file := range files {
			plan.Pairs = append(plan.Pairs, RenamePair{
				Source:  file,
				NewName: fmt.Sprintf("%s_%0*d%s", prefix, MinSequenceWidth, opts.Start+i, Extension(file.Name)),
			})
		}
	default:
		return nil, fmt.Errorf("unknown naming mode: %s", mode)
	}

	return plan, nil
}

// Extension returns the final dot suffix of name. Names whose only dot is
// the leading one (".bashrc") and names ending in a dot have no extension.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}
