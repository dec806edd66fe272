package install

import (
	"github.com/blunux/installer/internal/config"
)

// basePackages is the minimal bootable system plus the tooling every install
// carries. GRUB is skipped only when the run will actually boot directly:
// a direct-boot request on legacy firmware degrades to GRUB at step 8, so
// the fallback target must have the package.
func basePackages(cfg *config.Config, uefi bool) []string {
	kernel := cfg.Kernel.Effective()

	packages := []string{
		"base",
		kernel,
		kernel + "-headers",
		"linux-firmware",
		"base-devel",
		"sudo",
		"nano",
		"vim",
		"networkmanager",
		"network-manager-applet",
		"efibootmgr",
		"dosfstools",
		"ntfs-3g",
		"btrfs-progs",
		"intel-ucode",
		"amd-ucode",
		"mesa",
		"vulkan-icd-loader",
		"pciutils",
		"noto-fonts",
		"noto-fonts-cjk",
		"noto-fonts-emoji",
		"ttf-liberation",
		"git",
		"wget",
		"curl",
		"fastfetch",
		"htop",
		"man-db",
		"man-pages",
	}

	if cfg.Install.Bootloader != "nmbl" || !uefi {
		packages = append(packages, "grub", "os-prober")
	}
	if cfg.Install.UseEncryption {
		packages = append(packages, "cryptsetup")
	}

	return packages
}

// desktopPackages is the KDE Plasma desktop with its standard applications
// and the pipewire audio stack.
func desktopPackages() []string {
	return []string{
		"xorg-server",
		"xorg-xinit",
		"wayland",
		"plasma-meta",
		"sddm",
		"konsole",
		"dolphin",
		"kate",
		"ark",
		"gwenview",
		"okular",
		"spectacle",
		"kwalletmanager",
		"kcalc",
		"plasma-systemmonitor",
		"kde-gtk-config",
		"kio-extras",
		"kdegraphics-thumbnailers",
		"ffmpegthumbs",
		"plasma-pa",
		"plasma-nm",
		"plasma-firewall",
		"partitionmanager",
		"filelight",
		"ksystemlog",
		"pipewire",
		"pipewire-alsa",
		"pipewire-pulse",
		"pipewire-jack",
		"wireplumber",
		"cups",
		"print-manager",
	}
}

// fontPackages adds CJK coverage when a matching locale is configured.
func fontPackages(cfg *config.Config) []string {
	fonts := []string{"noto-fonts", "noto-fonts-emoji"}

	if cfg.Locale.IsCJK() {
		fonts = append(fonts, "noto-fonts-cjk")
		if cfg.Locale.HasLanguage("ko") {
			fonts = append(fonts, "ttf-baekmuk")
		}
	}

	return fonts
}

// inputMethodPackages returns the packages for the selected input-method
// engine. kime itself is an AUR build installed after first boot; only its
// toolkit dependencies are installed here.
func inputMethodPackages(cfg *config.Config) []string {
	if !cfg.InputMethod.Enabled {
		return nil
	}

	var packages []string
	switch cfg.InputMethod.Engine {
	case "kime":
		packages = []string{"gtk3", "gtk4", "qt5-base", "qt6-base", "qt6-tools"}
	case "fcitx5":
		packages = []string{"fcitx5", "fcitx5-configtool", "fcitx5-gtk", "fcitx5-qt"}
		if cfg.Locale.HasLanguage("ko") {
			packages = append(packages, "fcitx5-hangul")
		}
		if cfg.Locale.HasLanguage("ja") {
			packages = append(packages, "fcitx5-mozc")
		}
		if cfg.Locale.HasLanguage("zh") {
			packages = append(packages, "fcitx5-chinese-addons")
		}
	case "ibus":
		packages = []string{"ibus"}
		if cfg.Locale.HasLanguage("ko") {
			packages = append(packages, "ibus-hangul")
		}
		if cfg.Locale.HasLanguage("ja") {
			packages = append(packages, "ibus-mozc")
		}
	}

	return packages
}
