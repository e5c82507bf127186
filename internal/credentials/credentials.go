// Package credentials loads database and warehouse credentials from
// external files. Two on-disk formats exist in the field: a JSON document
// and a flat KEY=VALUE conf file. Both are exposed through the same
// Provider interface so callers never see the format difference.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Credentials holds database and warehouse access settings read from a
// credentials file. Fields left empty by a format are filled from the
// main configuration.
type Credentials struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string

	// BigQuery settings, present only in the JSON format.
	GoogleApplicationCredentials string
	BQProject                    string
	BQDataset                    string
}

// Provider fetches credentials from some backing store.
type Provider interface {
	Fetch() (*Credentials, error)
}

// FileProvider reads credentials from a file on disk. The format is
// selected by the file extension: .json parses as JSON, anything else
// as KEY=VALUE lines.
type FileProvider struct {
	Path string
}

// NewFileProvider returns a provider for the given credentials file.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Fetch reads and parses the credentials file.
func (p *FileProvider) Fetch() (*Credentials, error) {
	if strings.EqualFold(filepath.Ext(p.Path), ".json") {
		return fetchJSON(p.Path)
	}
	return fetchConf(p.Path)
}

// jsonFile mirrors the key names used by the deployed credential files.
type jsonFile struct {
	User                         string `json:"DB_USR"`
	Password                     string `json:"DB_PWD"`
	Host                         string `json:"DB_HOST"`
	Port                         string `json:"DB_PORT"`
	Database                     string `json:"DB_NAME"`
	GoogleApplicationCredentials string `json:"GOOGLE_APPLICATION_CREDENTIALS"`
	BQProject                    string `json:"BQ_PROJECT_ID"`
	BQDataset                    string `json:"BQ_DATASET_ID"`
}

func fetchJSON(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var f jsonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing credentials file %s: %w", path, err)
	}

	creds := &Credentials{
		User:                         f.User,
		Password:                     f.Password,
		Host:                         f.Host,
		Database:                     f.Database,
		GoogleApplicationCredentials: f.GoogleApplicationCredentials,
		BQProject:                    f.BQProject,
		BQDataset:                    f.BQDataset,
	}
	if f.Port != "" {
		port, err := strconv.Atoi(f.Port)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT %q in %s: %w", f.Port, path, err)
		}
		creds.Port = port
	}

	return creds, validate(creds, path)
}

func fetchConf(path string) (*Credentials, error) {
	// The conf format is KEY=VALUE lines, same shape as an env file.
	kv, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	creds := &Credentials{
		User:     kv["DB_USR"],
		Password: kv["DB_PWD"],
		Host:     kv["DB_HOST"],
		Database: kv["DB_NAME"],
	}
	if raw := kv["DB_PORT"]; raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT %q in %s: %w", raw, path, err)
		}
		creds.Port = port
	}

	return creds, validate(creds, path)
}

func validate(c *Credentials, path string) error {
	if c.User == "" {
		return fmt.Errorf("credentials file %s: missing DB_USR", path)
	}
	if c.Password == "" {
		return fmt.Errorf("credentials file %s: missing DB_PWD", path)
	}
	return nil
}
