package config

// Packages is the catalog of selectable applications. Each selected entry is
// installed after first boot by the generated install-packages.sh, which
// downloads the matching per-package script from the distribution repository.
type Packages struct {
	// Desktop
	KDE bool `mapstructure:"kde"`

	// Browsers
	Firefox bool `mapstructure:"firefox"`
	Whale   bool `mapstructure:"whale"`
	Chrome  bool `mapstructure:"chrome"`
	Mullvad bool `mapstructure:"mullvad"`

	// Office
	LibreOffice bool `mapstructure:"libreoffice"`
	HOffice     bool `mapstructure:"hoffice"`
	TexLive     bool `mapstructure:"texlive"`

	// Development
	VSCode    bool `mapstructure:"vscode"`
	Sublime   bool `mapstructure:"sublime"`
	Git       bool `mapstructure:"git"`
	Rust      bool `mapstructure:"rust"`
	Julia     bool `mapstructure:"julia"`
	NodeJS    bool `mapstructure:"nodejs"`
	GithubCLI bool `mapstructure:"github_cli"`

	// Multimedia
	VLC      bool `mapstructure:"vlc"`
	OBS      bool `mapstructure:"obs"`
	FreeTV   bool `mapstructure:"freetv"`
	YtDlp    bool `mapstructure:"ytdlp"`
	FreeTube bool `mapstructure:"freetube"`

	// Gaming
	Steam  bool `mapstructure:"steam"`
	Unciv  bool `mapstructure:"unciv"`
	Snes9x bool `mapstructure:"snes9x"`

	// Virtualization
	VirtualBox bool `mapstructure:"virtualbox"`
	Docker     bool `mapstructure:"docker"`

	// Communication
	Teams    bool `mapstructure:"teams"`
	WhatsApp bool `mapstructure:"whatsapp"`
	OneNote  bool `mapstructure:"onenote"`

	// Utility
	Bluetooth bool `mapstructure:"bluetooth"`
	Conky     bool `mapstructure:"conky"`
	VNC       bool `mapstructure:"vnc"`
	Samba     bool `mapstructure:"samba"`
}

// SelectedScripts returns the script names of all selected packages in
// catalog order. The order is stable so regenerated install scripts are
// byte-identical for the same selection.
func (p Packages) SelectedScripts() []string {
	entries := []struct {
		name     string
		selected bool
	}{
		{"kde", p.KDE},
		{"firefox", p.Firefox},
		{"whale", p.Whale},
		{"chrome", p.Chrome},
		{"mullvad", p.Mullvad},
		{"libreoffice", p.LibreOffice},
		{"hoffice", p.HOffice},
		{"texlive", p.TexLive},
		{"vscode", p.VSCode},
		{"sublime", p.Sublime},
		{"git", p.Git},
		{"rust", p.Rust},
		{"julia", p.Julia},
		{"nodejs", p.NodeJS},
		{"github-cli", p.GithubCLI},
		{"vlc", p.VLC},
		{"obs", p.OBS},
		{"freetv", p.FreeTV},
		{"ytdlp", p.YtDlp},
		{"freetube", p.FreeTube},
		{"steam", p.Steam},
		{"unciv", p.Unciv},
		{"snes9x", p.Snes9x},
		{"virtualbox", p.VirtualBox},
		{"docker", p.Docker},
		{"teams", p.Teams},
		{"whatsapp", p.WhatsApp},
		{"onenote", p.OneNote},
		{"bluetooth", p.Bluetooth},
		{"conky", p.Conky},
		{"vnc", p.VNC},
		{"samba", p.Samba},
	}

	var selected []string
	for _, e := range entries {
		if e.selected {
			selected = append(selected, e.name)
		}
	}
	return selected
}
