// ABOUTME: Remembers the emails most recently used to sign in
// ABOUTME: Stored as recent_logins.json in the config dir; passwords are never kept

package recentlogins

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxRecent is the maximum number of emails to keep
const MaxRecent = 5

// FileName is the file written inside the config directory
const FileName = "recent_logins.json"

// RecentLogins manages the list of recently used login emails
type RecentLogins struct {
	configDir string
	emails    []string
}

type recentData struct {
	Emails []string `json:"emails"`
}

// New creates a RecentLogins backed by configDir
func New(configDir string) *RecentLogins {
	return &RecentLogins{configDir: configDir}
}

func (r *RecentLogins) path() string {
	return filepath.Join(r.configDir, FileName)
}

// Load reads the list from disk, dropping blank or duplicate entries
func (r *RecentLogins) Load() ([]string, error) {
	data, err := os.ReadFile(r.path())
	if errors.Is(err, fs.ErrNotExist) {
		r.emails = []string{}
		return r.emails, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		// Corrupt file, start fresh
		r.emails = []string{}
		return r.emails, nil
	}

	r.emails = normalize(recent.Emails)
	return r.emails, nil
}

// Save writes emails to disk, keeping at most MaxRecent
func (r *RecentLogins) Save(emails []string) error {
	if err := os.MkdirAll(r.configDir, 0700); err != nil {
		return err
	}

	emails = normalize(emails)
	if len(emails) > MaxRecent {
		emails = emails[:MaxRecent]
	}
	r.emails = emails

	data, err := json.MarshalIndent(recentData{Emails: emails}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path(), data, 0600)
}

// Add moves email to the front of the list
func (r *RecentLogins) Add(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if r.emails == nil {
		if _, err := r.Load(); err != nil {
			r.emails = []string{}
		}
	}
	return r.Save(append([]string{email}, r.emails...))
}

// List returns the emails, most recent first
func (r *RecentLogins) List() []string {
	if r.emails == nil {
		r.Load()
	}
	return r.emails
}

// Latest returns the most recent email, or "" when none is stored
func (r *RecentLogins) Latest() string {
	if list := r.List(); len(list) > 0 {
		return list[0]
	}
	return ""
}

// normalize trims entries and drops blanks and case-insensitive duplicates
func normalize(emails []string) []string {
	out := make([]string, 0, len(emails))
	seen := make(map[string]bool, len(emails))
	for _, e := range emails {
		e = strings.TrimSpace(e)
		key := strings.ToLower(e)
		if e == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
