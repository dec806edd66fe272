package install

import (
	"fmt"
	"slices"
	"strings"
)

// stepConfigureLocale appends the configured languages to locale.gen,
// generates the locales, writes locale.conf and the console keymap, and
// exports the input-method environment.
func stepConfigureLocale(c *Context) error {
	languages := c.Config.Locale.Languages

	var gen strings.Builder
	for _, lang := range languages {
		fmt.Fprintf(&gen, "%s.UTF-8 UTF-8\n", lang)
	}
	// en_US stays available as the fallback locale.
	if !slices.Contains(languages, "en_US") {
		gen.WriteString("en_US.UTF-8 UTF-8\n")
	}
	c.appendTargetFile("etc/locale.gen", gen.String())

	if err := c.Run.Chroot(c, c.State.StagingRoot, "locale-gen"); err != nil {
		return fmt.Errorf("locale-gen: %w", err)
	}

	defaultLang := "en_US"
	if len(languages) > 0 {
		defaultLang = languages[0]
	}
	c.writeTargetFile("etc/locale.conf", []byte(fmt.Sprintf("LANG=%s.UTF-8\n", defaultLang)), 0o644)

	if len(c.Config.Locale.Keyboards) > 0 {
		keymap := fmt.Sprintf("KEYMAP=%s\n", c.Config.Locale.Keyboards[0])
		c.writeTargetFile("etc/vconsole.conf", []byte(keymap), 0o644)
	}

	configureInputMethodEnv(c)

	return nil
}

// configureInputMethodEnv writes the system-wide environment entries that
// point GTK, Qt and X11 at the selected input-method engine.
func configureInputMethodEnv(c *Context) {
	if !c.Config.InputMethod.Enabled {
		return
	}

	var env string
	switch c.Config.InputMethod.Engine {
	case "kime":
		env = "\n# Kime Korean Input Method\nGTK_IM_MODULE=kime\nQT_IM_MODULE=kime\nXMODIFIERS=@im=kime\n"
	case "fcitx5":
		env = "\n# Fcitx5 Input Method\nGTK_IM_MODULE=fcitx\nQT_IM_MODULE=fcitx\nXMODIFIERS=@im=fcitx\n"
	case "ibus":
		env = "\n# IBus Input Method\nGTK_IM_MODULE=ibus\nQT_IM_MODULE=ibus\nXMODIFIERS=@im=ibus\n"
	default:
		return
	}

	c.writeTargetFile("etc/environment.d/input-method.conf", []byte(env), 0o644)
}
