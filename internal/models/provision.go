package models

// Provision is the configuration record for a single provisioning run.
// It is assembled once by config.Load and passed down the pipeline;
// no stage mutates it.
type Provision struct {
	VMID            int     `mapstructure:"vmid"`
	Hostname        string  `mapstructure:"hostname"`
	MemoryMB        int     `mapstructure:"memory"`
	DiskGB          int     `mapstructure:"disk"`
	Cores           int     `mapstructure:"cores"`
	Storage         string  `mapstructure:"storage"`
	TemplateStorage string  `mapstructure:"template-storage"`
	Network         Network `mapstructure:",squash"`
	Site            Site    `mapstructure:",squash"`
	ProbeHost       string  `mapstructure:"probe-host"`
}

// Site describes the static site deployed into the guest.
type Site struct {
	RepoURL string `mapstructure:"repo"`
	Branch  string `mapstructure:"branch"`
}

// Summary is the operator-facing result of a completed run.
type Summary struct {
	VMID     int    `yaml:"vmid"`
	Hostname string `yaml:"hostname"`
	Address  string `yaml:"address"`
	Template string `yaml:"template"`
	Repo     string `yaml:"repo"`
	WebRoot  string `yaml:"webroot"`
}
