package league

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk override document:
//
//	leagues:
//	  - code: NBA
//	    pregame_window: 90m
//	team_overrides:
//	  NCAAB:
//	    uconn: Connecticut
type File struct {
	Leagues       []yaml.Node                  `yaml:"leagues"`
	TeamOverrides map[string]map[string]string `yaml:"team_overrides"`
}

// Overlay is the decoded result of a league file applied over a base table.
type Overlay struct {
	Configs       []Config
	TeamOverrides map[string]map[string]string
}

func LoadFile(path string, base []Config) (Overlay, error) {
	f, err := os.Open(path)
	if err != nil {
		return Overlay{}, fmt.Errorf("open league config: %w", err)
	}
	defer f.Close()

	return Decode(f, base)
}

// Decode overlays each league entry onto the base config with the same code,
// so a file only needs the fields it changes. Unknown codes start empty and
// must be fully specified.
func Decode(r io.Reader, base []Config) (Overlay, error) {
	var doc File
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return Overlay{}, fmt.Errorf("decode league config: %w", err)
	}

	byCode := make(map[string]int, len(base))
	configs := make([]Config, 0, len(base)+len(doc.Leagues))
	for _, cfg := range base {
		byCode[NormalizeCode(cfg.Code)] = len(configs)
		configs = append(configs, cloneConfig(cfg))
	}

	for i := range doc.Leagues {
		node := &doc.Leagues[i]
		var head struct {
			Code string `yaml:"code"`
		}
		if err := node.Decode(&head); err != nil {
			return Overlay{}, fmt.Errorf("decode league entry %d: %w", i, err)
		}
		code := NormalizeCode(head.Code)
		if code == "" {
			return Overlay{}, fmt.Errorf("league entry %d: code is required", i)
		}

		idx, ok := byCode[code]
		if !ok {
			idx = len(configs)
			byCode[code] = idx
			configs = append(configs, Config{NameMatch: NameMatchExact})
		}
		if err := node.Decode(&configs[idx]); err != nil {
			return Overlay{}, fmt.Errorf("decode league %s: %w", code, err)
		}
		configs[idx].Code = code
	}

	overrides := make(map[string]map[string]string, len(doc.TeamOverrides))
	for code, table := range doc.TeamOverrides {
		overrides[NormalizeCode(code)] = table
	}

	return Overlay{Configs: configs, TeamOverrides: overrides}, nil
}

func cloneConfig(cfg Config) Config {
	cfg.RequiredPlayerFields = append([]string(nil), cfg.RequiredPlayerFields...)
	return cfg
}
