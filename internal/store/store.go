package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/archmap-dev/archmap/internal/fileutil"
)

// RecordCache memoizes decoded records keyed by file path and content
// hash. It is created by the caller and passed through the call chain;
// there is no process-wide cache.
type RecordCache struct {
	entries *lru.Cache[string, cacheEntry]
}

type cacheEntry struct {
	hash   string
	record any
}

// NewRecordCache creates a cache holding up to size decoded records.
func NewRecordCache(size int) *RecordCache {
	if size <= 0 {
		size = 1024
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		// lru.New only fails on size <= 0, which is guarded above.
		panic(err)
	}
	return &RecordCache{entries: entries}
}

// Invalidate drops the cached record for path.
func (c *RecordCache) Invalidate(path string) {
	if c != nil {
		c.entries.Remove(path)
	}
}

func (c *RecordCache) lookup(path, hash string) (any, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.entries.Get(path)
	if !ok || entry.hash != hash {
		return nil, false
	}
	return entry.record, true
}

func (c *RecordCache) put(path, hash string, record any) {
	if c != nil {
		c.entries.Add(path, cacheEntry{hash: hash, record: record})
	}
}

// Store reads and writes the persisted records under <project>/.archmap.
type Store struct {
	dir   string
	cache *RecordCache
}

// Open binds a store to projectRoot. The cache may be nil to disable
// decode memoization.
func Open(projectRoot string, cache *RecordCache) *Store {
	return &Store{dir: filepath.Join(projectRoot, Dir), cache: cache}
}

// Path returns the record directory.
func (s *Store) Path() string { return s.dir }

// ClusterPath returns the record file for a cluster id.
func (s *Store) ClusterPath(id string) string {
	return filepath.Join(s.dir, "clusters", id+".json")
}

// FeaturePath returns the record file for a feature id.
func (s *Store) FeaturePath(id string) string {
	return filepath.Join(s.dir, "features", id+".json")
}

// GraphPath returns the shared graph artifact file.
func (s *Store) GraphPath() string {
	return filepath.Join(s.dir, "graph.json")
}

// LoadReport collects the recoverable problems of one load pass.
// Warnings cover records skipped as malformed; Errors cover records
// rejected by the version gate. Neither aborts the rest of the batch.
type LoadReport struct {
	Warnings []string
	Errors   []string
}

// LoadClusters loads all persisted cluster records, sorted by id.
func (s *Store) LoadClusters() ([]ClusterRecord, *LoadReport) {
	records, report := loadDir(s, "clusters", ValidateCluster, func(r ClusterRecord) int { return r.Version })
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, report
}

// LoadFeatures loads all persisted feature records, sorted by id.
func (s *Store) LoadFeatures() ([]FeatureRecord, *LoadReport) {
	records, report := loadDir(s, "features", ValidateFeature, func(r FeatureRecord) int { return r.Version })
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, report
}

// LoadGroups loads all persisted group records, sorted by id. Groups are
// read-only in this pipeline.
func (s *Store) LoadGroups() ([]GroupRecord, *LoadReport) {
	records, report := loadDir(s, "groups", ValidateGroup, func(r GroupRecord) int { return r.Version })
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, report
}

// LoadGraph loads the persisted graph artifact, or nil when absent.
func (s *Store) LoadGraph() (*GraphRecord, error) {
	data, err := os.ReadFile(s.GraphPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var record GraphRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("malformed graph record: %w", err)
	}
	if err := CheckVersion(record.Version); err != nil {
		return nil, fmt.Errorf("graph record: %w", err)
	}
	return &record, nil
}

// SaveCluster persists a cluster record, reporting whether the file
// actually changed.
func (s *Store) SaveCluster(rec ClusterRecord) (bool, error) {
	return s.save(s.ClusterPath(rec.ID), rec)
}

// SaveFeature persists a feature record, reporting whether the file
// actually changed.
func (s *Store) SaveFeature(rec FeatureRecord) (bool, error) {
	return s.save(s.FeaturePath(rec.ID), rec)
}

// SaveGraph persists the graph artifact unconditionally; idempotence is
// the artifact writer's concern.
func (s *Store) SaveGraph(rec GraphRecord) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(s.GraphPath(), data, 0644)
}

func (s *Store) save(path string, record any) (bool, error) {
	data, err := encode(record)
	if err != nil {
		return false, err
	}
	changed, err := fileutil.WriteAtomicIfChanged(path, data)
	if err != nil {
		return false, err
	}
	s.cache.put(path, fileutil.ShortHash(data), record)
	return changed, nil
}

func encode(record any) ([]byte, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return append(data, '\n'), nil
}

// loadDir decodes every *.json record in a subdirectory. Malformed or
// invalid records are skipped with a warning; version-incompatible
// records are reported as errors. Both leave the rest of the batch
// loading normally.
func loadDir[T any](s *Store, subdir string, validate func(T) []string, version func(T) int) ([]T, *LoadReport) {
	report := &LoadReport{Warnings: make([]string, 0), Errors: make([]string, 0)}
	dir := filepath.Join(s.dir, subdir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", subdir, err))
		}
		return nil, report
	}

	records := make([]T, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		name := filepath.Join(subdir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		hash := fileutil.ShortHash(data)

		if cached, ok := s.cache.lookup(path, hash); ok {
			if record, ok := cached.(T); ok {
				records = append(records, record)
				continue
			}
		}

		var record T
		if err := json.Unmarshal(data, &record); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: malformed record: %v", name, err))
			continue
		}
		if err := CheckVersion(version(record)); err != nil {
			if errors.Is(err, ErrVersionMissing) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s: invalid record: %v", name, err))
			} else {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}
		if problems := validate(record); len(problems) > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s: invalid record: %s", name, strings.Join(problems, "; ")))
			continue
		}

		s.cache.put(path, hash, record)
		records = append(records, record)
	}
	return records, report
}
