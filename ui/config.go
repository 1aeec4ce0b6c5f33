package ui

// Config contains TUI specific configuration.
type Config struct {
	// Path is the file or directory sotto was launched on.
	Path string

	ShowAllFiles bool   `env:"SOTTO_SHOW_ALL_FILES"`
	Gopath       string `env:"GOPATH"`
	HomeDir      string `env:"HOME"`

	Engine   string  `env:"SOTTO_ENGINE" envDefault:"auto"`
	Voice    string  `env:"SOTTO_VOICE"`
	Speed    float64 `env:"SOTTO_SPEED" envDefault:"1.0"`
	Language string  `env:"SOTTO_LANGUAGE" envDefault:"en"`

	EnableMouse  bool
	GlamourStyle string
}
