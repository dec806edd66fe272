package install

import (
	"fmt"
	"strings"
)

// scriptBaseURL is where the per-package install scripts and the system
// check live.
const scriptBaseURL = "https://jaewoojoung.github.io/linux"

const yayBootstrap = `# Check if yay is installed
if ! command -v yay &> /dev/null; then
    echo "Installing yay first..."
    BUILDDIR=$(mktemp -d)
    git clone https://aur.archlinux.org/yay-bin.git "$BUILDDIR/yay-bin"
    cd "$BUILDDIR/yay-bin"
    makepkg -si --noconfirm
    cd /
    rm -rf "$BUILDDIR"
fi
`

// packageInstallScript renders the first-boot installer for the selected
// application packages. Each package downloads and runs its own script from
// the distribution repository; failures are collected and reported so the
// script can simply be re-run.
func packageInstallScript(selected []string) string {
	var b strings.Builder

	b.WriteString(`#!/bin/bash
# Package installation script (generated by the installer).
# Run this after first boot to install the selected packages.
# Each package is installed via its own script from the distribution repository.

BASE_URL="` + scriptBaseURL + `"

# Install yay if not present (needed by most package scripts)
if ! command -v yay &> /dev/null; then
    echo "=========================================="
    echo "  Installing yay AUR helper"
    echo "=========================================="
    sudo pacman -S --needed --noconfirm base-devel git
    BUILDDIR=$(mktemp -d)
    git clone https://aur.archlinux.org/yay-bin.git "$BUILDDIR/yay-bin"
    cd "$BUILDDIR/yay-bin"
    makepkg -si --noconfirm
    cd /
    rm -rf "$BUILDDIR"
    echo ""
fi

FAILED_PACKAGES=()

install_package() {
    local pkg="$1"
    local script="/tmp/blunux-install-$pkg.sh"
    echo "=========================================="
    echo "  Installing: $pkg"
    echo "=========================================="
    if curl -fsSL "$BASE_URL/$pkg.sh" -o "$script"; then
        chmod +x "$script"
        if bash "$script"; then
            echo "$pkg installed successfully"
        else
            echo "WARNING: $pkg installation failed"
            FAILED_PACKAGES+=("$pkg")
        fi
        rm -f "$script"
    else
        echo "WARNING: Failed to download $pkg.sh"
        FAILED_PACKAGES+=("$pkg")
    fi
    echo ""
}

# Selected packages:
`)

	for _, pkg := range selected {
		fmt.Fprintf(&b, "install_package %q\n", pkg)
	}

	b.WriteString(`
echo "=========================================="
echo "  Package installation complete!"
echo "=========================================="
echo ""
if [ ${#FAILED_PACKAGES[@]} -gt 0 ]; then
    echo "The following packages failed to install:"
    for pkg in "${FAILED_PACKAGES[@]}"; do
        echo "  - $pkg"
    done
    echo ""
    echo "You can retry failed packages by running:"
    echo "  bash ~/install-packages.sh"
else
    echo "All packages installed successfully!"
fi
echo ""
echo "Please log out and log back in for changes to take effect."
`)

	return b.String()
}

// kimeInstallScript is the fallback installer for kime, which is an AUR
// build that cannot be installed during the run.
func kimeInstallScript() string {
	return `#!/bin/bash
# Installs kime-git from the AUR if it was not installed during system
# installation.

set -e

echo "Installing kime-git..."

` + yayBootstrap + `
yay -S --noconfirm --needed kime-git

echo "kime-git installed successfully!"
echo "Please log out and log back in for changes to take effect."
`
}

// boreSetupScript completes the linux-bore kernel selection after first
// boot: the stock kernel carries the system until the AUR build is in place,
// then the boot entry is refreshed.
func boreSetupScript() string {
	return `#!/bin/bash
# Completes the linux-bore kernel installation after first boot.

set -e

echo "=========================================="
echo "  Linux-BORE Kernel Setup"
echo "=========================================="

` + yayBootstrap + `
# Install linux-cachyos kernel (BORE scheduler)
echo "Installing linux-cachyos kernel with BORE scheduler (this may take a while)..."
yay -S --noconfirm --needed linux-cachyos linux-cachyos-headers

# Update boot configuration
if [ -f /usr/local/bin/nmbl-update ]; then
    echo "Updating EFISTUB boot entry..."
    sudo /usr/local/bin/nmbl-update
    ROOT_UUID=$(blkid -s UUID -o value $(findmnt -n -o SOURCE /))
    sudo efibootmgr --create --disk $(findmnt -n -o SOURCE /boot/efi | sed 's/[0-9]*$//') \
        --part $(findmnt -n -o SOURCE /boot/efi | grep -o '[0-9]*$') \
        --label "Blunux" \
        --loader "\\EFI\\Blunux\\vmlinuz-linux-cachyos" \
        --unicode "root=UUID=$ROOT_UUID rw quiet loglevel=3 initrd=\\EFI\\Blunux\\initramfs-linux-cachyos.img"
else
    echo "Updating GRUB configuration..."
    sudo grub-mkconfig -o /boot/grub/grub.cfg
fi

echo ""
echo "=========================================="
echo "  Linux-CachyOS (BORE) installation complete!"
echo "=========================================="
echo ""
echo "Please reboot to use the linux-cachyos kernel."
`
}

// syschkScript downloads and runs the Julia-based system check.
func syschkScript() string {
	return `#!/bin/bash
# Downloads and runs syschk.jl with Julia.

set -e

SYSCHK_URL="` + scriptBaseURL + `/syschk.jl"
SYSCHK_FILE="$(dirname "$0")/syschk.jl"

echo "Downloading syschk.jl..."
curl -fsSL "$SYSCHK_URL" -o "$SYSCHK_FILE"

echo "Running system check..."
julia "$SYSCHK_FILE"
`
}

// kimeConfigYAML is the default kime configuration: dubeolsik layout,
// toggled with right Alt, Hangul key or Super-Space.
const kimeConfigYAML = `indicator:
  icon_color: Black

engine:
  default_category: Latin

  global_hotkeys:
    Alt_R:
      behavior: !Toggle
        - Hangul
        - Latin
      result: Consume
    Hangul:
      behavior: !Toggle
        - Hangul
        - Latin
      result: Consume
    Super-Space:
      behavior: !Toggle
        - Hangul
        - Latin
      result: Consume
    Esc:
      behavior: !Switch Latin
      result: Bypass

  hangul:
    layout: dubeolsik
    word_commit: false
    auto_reorder: true
`

const kimeDesktopEntry = `[Desktop Entry]
Type=Application
Name=Kime Input Method
Exec=/usr/bin/kime
Terminal=false
Categories=Utility;
X-GNOME-Autostart-enabled=true
`

const kimeUserService = `[Unit]
Description=Korean Input Method Editor
After=graphical-session.target
PartOf=graphical-session.target

[Service]
Type=simple
ExecStart=/usr/bin/kime
Restart=on-failure
RestartSec=3
Environment="GTK_IM_MODULE=kime"
Environment="QT_IM_MODULE=kime"
Environment="XMODIFIERS=@im=kime"

[Install]
WantedBy=graphical-session.target
`
