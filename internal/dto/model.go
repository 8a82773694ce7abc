package dto

// Model is the YAML representation of a model.
// It uses "mapstructure" tags so documents are decoded from generic YAML maps.
type Model struct {
	Name       string              `mapstructure:"name"`
	States     []State             `mapstructure:"states"`
	Patterns   map[string][]string `mapstructure:"patterns"`
	Initialize []Initialize        `mapstructure:"initialize"`
	Turns      []Transition        `mapstructure:"turns"`
	Spawns     []Transition        `mapstructure:"spawns"`
	Cases      []Case              `mapstructure:"cases"`
}

// State declares a state. A bare string is accepted as the name.
type State struct {
	Name      string `mapstructure:"name"`
	Necessary bool   `mapstructure:"necessary"`
	Only      bool   `mapstructure:"only"`
}

// Initialize declares a graph root.
type Initialize struct {
	States []string `mapstructure:"states"`
	By     string   `mapstructure:"by"`
	Alias  string   `mapstructure:"alias"`
	Depth  int      `mapstructure:"depth"`
	Manual bool     `mapstructure:"manual"`
	Block  []string `mapstructure:"block"`
	Only   bool     `mapstructure:"only"`
}

// Transition declares a turn or a spawn.
type Transition struct {
	From      []string   `mapstructure:"from"`
	To        []string   `mapstructure:"to"`
	By        string     `mapstructure:"by"`
	Alias     string     `mapstructure:"alias"`
	Depth     int        `mapstructure:"depth"`
	Manual    bool       `mapstructure:"manual"`
	Block     []string   `mapstructure:"block"`
	Only      bool       `mapstructure:"only"`
	Match     [][]string `mapstructure:"match"`
	Pattern   string     `mapstructure:"pattern"`
	NoPattern bool       `mapstructure:"no_pattern"`
}

// Case declares a manual test case as node aliases.
type Case struct {
	Name  string   `mapstructure:"name"`
	Steps []string `mapstructure:"steps"`
}
