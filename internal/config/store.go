package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Endpoint is a named upstream worth probing repeatedly. Token is
// optional; when present it is sent as a bearer credential.
type Endpoint struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Token string `json:"token,omitempty"`
}

type File struct {
	ActiveEndpoint string     `json:"active_endpoint"`
	Endpoints      []Endpoint `json:"endpoints"`
}

type Store struct {
	path string
}

func NewStore() (*Store, error) {
	configRoot, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	return &Store{path: filepath.Join(configRoot, "errshape", "config.json")}, nil
}

func NewStoreAtPath(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() (File, error) {
	body, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return File{}, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}

	var file File
	if err := json.Unmarshal(body, &file); err != nil {
		return File{}, fmt.Errorf("decode config: %w", err)
	}

	return normalize(file), nil
}

func (s *Store) Save(file File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	body, err := json.MarshalIndent(normalize(file), "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(s.path, append(body, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func (s *Store) AddEndpoint(name string, rawURL string, token string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("endpoint name is required")
	}
	if err := validateURL(rawURL); err != nil {
		return err
	}

	file, err := s.Load()
	if err != nil {
		return err
	}

	if index, ok := endpointIndexByName(file.Endpoints, name); ok {
		file.Endpoints[index].URL = rawURL
		file.Endpoints[index].Token = token
	} else {
		file.Endpoints = append(file.Endpoints, Endpoint{Name: name, URL: rawURL, Token: token})
	}
	if file.ActiveEndpoint == "" {
		file.ActiveEndpoint = name
	}

	return s.Save(file)
}

func (s *Store) RemoveEndpoint(name string) error {
	file, err := s.Load()
	if err != nil {
		return err
	}

	filtered := make([]Endpoint, 0, len(file.Endpoints))
	for _, endpoint := range file.Endpoints {
		if endpoint.Name != name {
			filtered = append(filtered, endpoint)
		}
	}
	if len(filtered) == len(file.Endpoints) {
		return fmt.Errorf("endpoint %q not found", name)
	}

	file.Endpoints = filtered
	if file.ActiveEndpoint == name {
		file.ActiveEndpoint = ""
		if len(file.Endpoints) > 0 {
			file.ActiveEndpoint = file.Endpoints[0].Name
		}
	}

	return s.Save(file)
}

func (s *Store) UseEndpoint(name string) error {
	file, err := s.Load()
	if err != nil {
		return err
	}

	if _, ok := endpointIndexByName(file.Endpoints, name); !ok {
		return fmt.Errorf("endpoint %q not found", name)
	}

	file.ActiveEndpoint = name

	return s.Save(file)
}

func (s *Store) CycleEndpoint() (string, error) {
	file, err := s.Load()
	if err != nil {
		return "", err
	}
	if len(file.Endpoints) == 0 {
		return "", errors.New("no configured endpoints")
	}

	activeIndex := -1
	for index, endpoint := range file.Endpoints {
		if endpoint.Name == file.ActiveEndpoint {
			activeIndex = index
			break
		}
	}

	nextIndex := 0
	if activeIndex >= 0 {
		nextIndex = (activeIndex + 1) % len(file.Endpoints)
	}

	file.ActiveEndpoint = file.Endpoints[nextIndex].Name
	if err := s.Save(file); err != nil {
		return "", err
	}

	return file.ActiveEndpoint, nil
}

// Resolve returns the named endpoint, or the active one when name is
// empty.
func (s *Store) Resolve(name string) (Endpoint, error) {
	file, err := s.Load()
	if err != nil {
		return Endpoint{}, err
	}
	if len(file.Endpoints) == 0 {
		return Endpoint{}, errors.New("no configured endpoints")
	}

	target := name
	if target == "" {
		target = file.ActiveEndpoint
	}
	if target == "" {
		return Endpoint{}, errors.New("no active endpoint configured")
	}

	index, ok := endpointIndexByName(file.Endpoints, target)
	if !ok {
		return Endpoint{}, fmt.Errorf("endpoint %q not found", target)
	}

	return file.Endpoints[index], nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("parse endpoint URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("endpoint URL %q must be http or https", rawURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("endpoint URL %q has no host", rawURL)
	}

	return nil
}

func normalize(file File) File {
	trimmed := make([]Endpoint, 0, len(file.Endpoints))
	for _, endpoint := range file.Endpoints {
		name := strings.TrimSpace(endpoint.Name)
		if name == "" {
			continue
		}
		trimmed = append(trimmed, Endpoint{
			Name:  name,
			URL:   strings.TrimSpace(endpoint.URL),
			Token: strings.TrimSpace(endpoint.Token),
		})
	}
	sort.Slice(trimmed, func(i int, j int) bool {
		return trimmed[i].Name < trimmed[j].Name
	})

	return File{ActiveEndpoint: strings.TrimSpace(file.ActiveEndpoint), Endpoints: trimmed}
}

func endpointIndexByName(endpoints []Endpoint, name string) (int, bool) {
	for index := range endpoints {
		if endpoints[index].Name == name {
			return index, true
		}
	}

	return 0, false
}
