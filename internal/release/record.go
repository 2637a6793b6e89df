// Package release records successful deployments so later runs can
// detect manifest drift
package release

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	// RecordVersion is the current record format version
	RecordVersion = "1.0"
	// RecordFilename is the standard record filename
	RecordFilename = "release.json"
)

// Record describes one successful deployment
type Record struct {
	Version        string           `json:"version"`
	CreatedAt      time.Time        `json:"created_at"`
	ShopctlVersion string           `json:"shopctl_version"`
	Cluster        string           `json:"cluster"`
	Namespace      string           `json:"namespace"`
	ImageTag       string           `json:"image_tag,omitempty"`
	Resources      []ResourceRecord `json:"resources"`
	Checksum       string           `json:"checksum,omitempty"`
}

// ResourceRecord describes one applied resource
type ResourceRecord struct {
	Name      string        `json:"name"`
	Kind      string        `json:"kind"`
	Manifest  string        `json:"manifest"`
	Checksum  string        `json:"checksum"`
	Elapsed   time.Duration `json:"elapsed"`
	AppliedAt time.Time     `json:"applied_at"`
}

// NewRecord creates a new record with default values
func NewRecord(shopctlVersion, cluster, namespace string) *Record {
	return &Record{
		Version:        RecordVersion,
		CreatedAt:      time.Now().UTC(),
		ShopctlVersion: shopctlVersion,
		Cluster:        cluster,
		Namespace:      namespace,
		Resources:      []ResourceRecord{},
	}
}

// AddResource appends an applied resource to the record
func (r *Record) AddResource(rr ResourceRecord) {
	if rr.AppliedAt.IsZero() {
		rr.AppliedAt = time.Now().UTC()
	}
	r.Resources = append(r.Resources, rr)
}

// ComputeChecksum calculates the overall record checksum
func (r *Record) ComputeChecksum() string {
	h := sha256.New()
	for _, res := range r.Resources {
		h.Write([]byte(res.Name))
		h.Write([]byte(res.Checksum))
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}

// Finalize computes the checksum and marks the record as complete
func (r *Record) Finalize() {
	r.Checksum = r.ComputeChecksum()
}

// Save writes the record to a file
func (r *Record) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}

	return nil
}

// LoadRecord reads a record from a file
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}

	return &r, nil
}

// GetResource returns a resource record by name
func (r *Record) GetResource(name string) (ResourceRecord, bool) {
	for _, res := range r.Resources {
		if res.Name == name {
			return res, true
		}
	}
	return ResourceRecord{}, false
}

// Verify re-hashes the recorded manifests under manifestDir and
// returns the names of resources whose manifests have drifted since
// the record was written
func (r *Record) Verify(manifestDir string) ([]string, error) {
	var drifted []string
	for _, res := range r.Resources {
		path := res.Manifest
		if !filepath.IsAbs(path) {
			path = filepath.Join(manifestDir, path)
		}

		checksum, err := FileChecksum(path)
		if err != nil {
			if os.IsNotExist(err) {
				drifted = append(drifted, res.Name)
				continue
			}
			return nil, fmt.Errorf("resource %s: checksum error: %w", res.Name, err)
		}
		if checksum != res.Checksum {
			drifted = append(drifted, res.Name)
		}
	}

	if r.Checksum != "" && r.Checksum != r.ComputeChecksum() {
		return drifted, fmt.Errorf("record checksum mismatch")
	}

	return drifted, nil
}

// FileChecksum calculates the SHA256 checksum of a file
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
