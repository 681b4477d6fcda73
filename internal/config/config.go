package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Afrawles/sprintboard/internal/classify"
)

const DefaultFile = ".sprintboardrc"

type Config struct {
	DeveloperPublicKey string            `mapstructure:"developer_public_key"`
	MemberToken        string            `mapstructure:"member_token"`
	BoardAliases       map[string]string `mapstructure:"board_aliases"`
	BacklogName        string            `mapstructure:"backlog_name"`
	DonePrefix         string            `mapstructure:"done_prefix"`
	DoneLists          []string          `mapstructure:"done_lists"`
	ExcludedLists      []string          `mapstructure:"excluded_lists"`
	OutputDir          string            `mapstructure:"output_dir"`
}

func DefaultConfig() *Config {
	rules := classify.DefaultRules()
	return &Config{
		BoardAliases:  map[string]string{},
		BacklogName:   rules.BacklogName,
		DonePrefix:    rules.DonePrefix,
		ExcludedLists: rules.Excluded,
		OutputDir:     "reports",
	}
}

// DefaultPath returns ~/.sprintboardrc, or an empty string without a home dir.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultFile)
}

// Load reads the YAML config at path over the defaults and then applies
// the TRELLO_KEY, TRELLO_TOKEN and SPRINTBOARD_OUTPUT_DIR environment
// fallbacks. A missing file is not an error when path is the default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) || explicit {
				return nil, fmt.Errorf("failed to load config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) {
	if cfg.DeveloperPublicKey == "" {
		cfg.DeveloperPublicKey = os.Getenv("TRELLO_KEY")
	}
	if cfg.MemberToken == "" {
		cfg.MemberToken = os.Getenv("TRELLO_TOKEN")
	}
	if dir := os.Getenv("SPRINTBOARD_OUTPUT_DIR"); dir != "" {
		cfg.OutputDir = dir
	}
}

// Validate checks the credentials needed to talk to Trello.
func (c *Config) Validate() error {
	if c.DeveloperPublicKey == "" {
		return fmt.Errorf("developer_public_key missing (set it in %s or TRELLO_KEY)", DefaultFile)
	}
	if c.MemberToken == "" {
		return fmt.Errorf("member_token missing (set it in %s or TRELLO_TOKEN)", DefaultFile)
	}
	return nil
}

func (c *Config) Rules() classify.Rules {
	return classify.Rules{
		BacklogName: c.BacklogName,
		DonePrefix:  c.DonePrefix,
		DoneNames:   c.DoneLists,
		Excluded:    c.ExcludedLists,
	}
}

// ResolveBoard maps an alias to its board id. Anything else is taken as
// an id already. Viper lowercases map keys, so aliases match case-insensitively.
func (c *Config) ResolveBoard(idOrAlias string) string {
	if id, ok := c.BoardAliases[strings.ToLower(idOrAlias)]; ok {
		return id
	}
	for alias, id := range c.BoardAliases {
		if strings.EqualFold(alias, idOrAlias) {
			return id
		}
	}
	return idOrAlias
}

// BoardEntry is one board of a board-list file.
type BoardEntry struct {
	Name    string `yaml:"-"`
	BoardID string `yaml:"boardid"`
}

// LoadBoardList reads a board-list file of the form
//
//	orange:
//	  boardid: 53186e8391ef8671265eba9d
//
// and returns its entries in file order.
func LoadBoardList(path string) ([]BoardEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board list: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse board list %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("board list %s: expected a mapping of board names", path)
	}

	var entries []BoardEntry
	for i := 0; i+1 < len(root.Content); i += 2 {
		var entry BoardEntry
		name := root.Content[i].Value
		if err := root.Content[i+1].Decode(&entry); err != nil {
			return nil, fmt.Errorf("board list %s: entry %q: %w", path, name, err)
		}
		entry.Name = name
		if entry.BoardID == "" {
			return nil, fmt.Errorf("board list %s: entry %q has no boardid", path, entry.Name)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
