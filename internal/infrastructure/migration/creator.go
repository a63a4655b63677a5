package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- {{.Name}}
-- Created {{.Timestamp}}{{if .Description}}
-- {{.Description}}{{end}}

`

const downTemplate = `-- {{.Name}}: rollback
-- Created {{.Timestamp}}

`

// FilePair describes a generated up/down migration pair.
type FilePair struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Create scaffolds a timestamped up/down pair under dir, creating the
// directory if needed. The version prefix sorts lexically, so files
// created later always run later.
func Create(dir, name, description string) (*FilePair, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	pair := &FilePair{
		Version:     now.Format("20060102150405"),
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
	}

	base := fmt.Sprintf("%s_%s", pair.Version, slugify(name))
	pair.UpPath = filepath.Join(dir, base+".up.sql")
	pair.DownPath = filepath.Join(dir, base+".down.sql")

	if err := writeFromTemplate(pair.UpPath, upTemplate, pair); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := writeFromTemplate(pair.DownPath, downTemplate, pair); err != nil {
		_ = os.Remove(pair.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return pair, nil
}

func writeFromTemplate(path, tmplText string, data *FilePair) error {
	tmpl, err := template.New("migration").Parse(tmplText)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

// slugify reduces a human migration name to lowercase letters, digits,
// and single underscores so it is safe in a file name.
func slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + 'a' - 'A')
		case c == ' ' || c == '-' || c == '_':
			s := b.String()
			if len(s) > 0 && s[len(s)-1] != '_' {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// List returns the base names of the migration pairs in dir, derived
// from the *.up.sql files. A missing directory lists as empty.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	return names, nil
}
