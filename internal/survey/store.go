package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bkaradzic/go-lz4"
)

// storeSignature begins every encoded store.
const storeSignature = "EDMSURVEY\x00"

// storeVersion is the current version of the store format.
const storeVersion = 1

// Store holds the summaries of a survey.
type Store struct {
	Version int       `json:"version"`
	Files   []Summary `json:"files"`
}

// Failed returns the summaries of files that could not be decoded.
func (s *Store) Failed() []Summary {
	var failed []Summary
	for _, f := range s.Files {
		if f.Error != "" {
			failed = append(failed, f)
		}
	}
	return failed
}

// Decoded returns the summaries of files that were decoded.
func (s *Store) Decoded() []Summary {
	var decoded []Summary
	for _, f := range s.Files {
		if f.Error == "" {
			decoded = append(decoded, f)
		}
	}
	return decoded
}

// Save writes s to w as lz4-compressed JSON.
func (s *Store) Save(w io.Writer) error {
	v := *s
	v.Version = storeVersion
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	compressed, err := lz4.Encode(nil, data)
	if err != nil {
		return fmt.Errorf("lz4: %w", err)
	}
	if _, err := io.WriteString(w, storeSignature); err != nil {
		return err
	}
	_, err = w.Write(compressed)
	return err
}

// Load reads a store written by Save.
func Load(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, []byte(storeSignature)) {
		return nil, fmt.Errorf("invalid survey store signature")
	}
	payload, err := lz4.Decode(nil, data[len(storeSignature):])
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	var s Store
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	if s.Version != storeVersion {
		return nil, fmt.Errorf("unsupported survey store version %d", s.Version)
	}
	return &s, nil
}

// SaveFile writes s to the file at path.
func (s *Store) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// LoadFile reads a store from the file at path.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
