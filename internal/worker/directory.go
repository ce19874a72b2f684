package worker

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/nerrad567/pillarmap-api/internal/infrastructure/logging"
)

// SourceBundled names the worker file compiled into the binary.
const SourceBundled = "bundled:data/workerinfo.json"

//go:embed data/workerinfo.json
var bundledFile []byte

// Directory is an immutable lookup table of worker records by bldg_id.
type Directory struct {
	byBldgID map[string]Info
	source   string
}

// NewDirectory builds a Directory from records.
//
// Records without a bldg_id are skipped. When two records share a bldg_id
// the later one wins.
func NewDirectory(records []Info) *Directory {
	byBldgID := make(map[string]Info, len(records))
	for _, r := range records {
		if r.BldgID == "" {
			continue
		}
		byBldgID[r.BldgID] = r
	}
	return &Directory{byBldgID: byBldgID}
}

// Get returns the record for bldgID. Matching is exact and case-sensitive.
func (d *Directory) Get(bldgID string) (Info, bool) {
	if d == nil {
		return Info{}, false
	}
	info, ok := d.byBldgID[bldgID]
	return info, ok
}

// Len returns the number of buildings in the directory.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byBldgID)
}

// Source describes where the directory was loaded from.
func (d *Directory) Source() string {
	if d == nil {
		return ""
	}
	return d.source
}

// LoadDirectory decodes a JSON array of worker records from r.
// Null array elements are ignored.
func LoadDirectory(r io.Reader) (*Directory, error) {
	var records []*fileRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}

	infos := make([]Info, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		infos = append(infos, rec.info())
	}
	return NewDirectory(infos), nil
}

// OpenDirectory loads the worker file at path. An empty path loads the file
// bundled into the binary.
func OpenDirectory(path string) (*Directory, error) {
	if path == "" {
		d, err := LoadDirectory(bytes.NewReader(bundledFile))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", SourceBundled, err)
		}
		d.source = SourceBundled
		return d, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening worker file: %w", err)
	}
	defer f.Close()

	d, err := LoadDirectory(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	d.source = path
	return d, nil
}

// LoadOrEmpty is OpenDirectory that never fails. Load errors are logged and
// an empty Directory is returned so the service still starts.
func LoadOrEmpty(path string, logger *logging.Logger) *Directory {
	d, err := OpenDirectory(path)
	if err != nil {
		logger.Error("worker directory load failed, serving empty directory",
			"path", path,
			"error", err,
		)
		return NewDirectory(nil)
	}

	logger.Info("worker directory loaded",
		"source", d.Source(),
		"buildings", d.Len(),
	)
	return d
}
