package config

// Config represents the complete application configuration that
// quack supports.
type Config struct {
	// Strategy is one of none, chroot or container.
	Strategy string `mapstructure:"strategy"`

	WithDevel bool `mapstructure:"with_devel"`
	DryRun    bool `mapstructure:"dry_run"`
	Force     bool `mapstructure:"force"`

	// InspectDependencies keeps the recipe inspection prompt for
	// dependencies that get built on the way.
	InspectDependencies bool `mapstructure:"inspect_dependencies"`

	// Color is never, auto or always.  When empty the Color option
	// of pacman.conf decides.
	Color string `mapstructure:"color"`

	AURURL string `mapstructure:"aur_url"`
	Arch   string `mapstructure:"arch"`
	PkgExt string `mapstructure:"pkg_ext"`

	PacmanConf  string `mapstructure:"pacman_conf"`
	MakepkgConf string `mapstructure:"makepkg_conf"`
	SyncDBPath  string `mapstructure:"sync_db_path"`
	CacheDir    string `mapstructure:"cache_dir"`
	FallbackDir string `mapstructure:"fallback_dir"`
	ScratchDir  string `mapstructure:"scratch_dir"`
	ChrootDir   string `mapstructure:"chroot_dir"`

	ContainerEngine string `mapstructure:"container_engine"`
	ContainerImage  string `mapstructure:"container_image"`
	RoadmapFile     string `mapstructure:"roadmap_file"`

	Storage     string `mapstructure:"storage"`
	HistoryPath string `mapstructure:"history_path"`

	// Repos are the official repositories, read from pacman.conf
	// unless set explicitly.
	Repos []string `mapstructure:"repos"`
}

// PacmanConf holds what quack reads from pacman.conf.
type PacmanConf struct {
	Repos []string
	Color bool
}
