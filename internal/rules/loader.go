// Package rules loads the static rule tables from disk:
//
//	<dir>/intent.yaml              version routing cues
//	<dir>/<version>/<domain>.yaml  one ruleset per fiscal domain
//
// Files are read in lexical order so declaration order, and therefore rule
// precedence, is stable across hosts. Any malformed file aborts the load.
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/intent"
	"github.com/kailas-cloud/lexroute/internal/domain/ruleset"
)

// IntentFile is the name of the routing cue file at the root of the rules dir.
const IntentFile = "intent.yaml"

// Bundle is everything loaded from a rules directory.
type Bundle struct {
	Catalog *ruleset.Catalog
	Intent  intent.Rules
}

// Load reads dir for the given editions.
func Load(dir string, editions corpus.Editions) (Bundle, error) {
	return LoadFS(os.DirFS(dir), editions)
}

// LoadFS reads rule tables from fsys. Every error wraps ruleset.ErrConfiguration.
func LoadFS(fsys fs.FS, editions corpus.Editions) (Bundle, error) {
	var sets []ruleset.Ruleset
	for _, v := range editions.Versions() {
		loaded, err := loadVersion(fsys, v)
		if err != nil {
			return Bundle{}, err
		}
		sets = append(sets, loaded...)
	}

	catalog, err := ruleset.NewCatalog(editions, sets)
	if err != nil {
		return Bundle{}, err
	}

	ir, err := loadIntent(fsys, editions)
	if err != nil {
		return Bundle{}, err
	}

	return Bundle{Catalog: catalog, Intent: ir}, nil
}

func loadVersion(fsys fs.FS, v corpus.Version) ([]ruleset.Ruleset, error) {
	entries, err := fs.ReadDir(fsys, string(v))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // an edition may have no lexical rules
		}
		return nil, fmt.Errorf("%w: read %s: %w", ruleset.ErrConfiguration, v, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]ruleset.Ruleset, 0, len(names))
	for _, name := range names {
		rs, err := loadRuleset(fsys, path.Join(string(v), name), v)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, nil
}

func loadRuleset(fsys fs.FS, file string, v corpus.Version) (ruleset.Ruleset, error) {
	var f rulesetFile
	if err := decodeFile(fsys, file, &f); err != nil {
		return ruleset.Ruleset{}, err
	}
	if f.Domain == "" {
		f.Domain = strings.TrimSuffix(path.Base(file), path.Ext(file))
	}
	if f.Version != "" && corpus.Version(f.Version) != v {
		return ruleset.Ruleset{}, fmt.Errorf("%w: %s declares version %q but lives under %q",
			ruleset.ErrConfiguration, file, f.Version, v)
	}

	rs, err := ruleset.New(f.Domain, v, f.keywords(), f.synonyms(), f.direct(), f.routing(), f.metadata())
	if err != nil {
		return ruleset.Ruleset{}, fmt.Errorf("%s: %w", file, err)
	}
	return rs, nil
}

func loadIntent(fsys fs.FS, editions corpus.Editions) (intent.Rules, error) {
	var f intentFile
	if err := decodeFile(fsys, IntentFile, &f); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return intent.NewRules(editions, nil, nil, nil, nil, intent.Confidence{})
		}
		return intent.Rules{}, err
	}

	ir, err := intent.NewRules(editions, f.exclusive(), f.cues(), f.Comparison, f.domains(), f.confidence())
	if err != nil {
		return intent.Rules{}, fmt.Errorf("%w: %s: %w", ruleset.ErrConfiguration, IntentFile, err)
	}
	return ir, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return fmt.Errorf("%w: read %s: %w", ruleset.ErrConfiguration, name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: parse %s: %w", ruleset.ErrConfiguration, name, err)
	}
	return nil
}

func isYAML(name string) bool {
	ext := path.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
