package main

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngclient/ngutils/internal/errors"
	"github.com/ngclient/ngutils/pkg/headtags"
	"github.com/ngclient/ngutils/pkg/render"
)

func viewportCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "viewport <mode>",
		Short: "Print the viewport meta tag of a mode",
		Long: `Print the viewport meta tag installed for a mobile-aware site.

Modes:
  0, default        width=device-width, initial-scale=1.0
  1, deny-zoom      also fixes minimum and maximum scale
  2, deny-zoom-out  also fixes the minimum scale
  3, deny-zoom-in   also fixes the maximum scale`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseMode(args[0])
			if err != nil {
				return err
			}
			tag := headtags.ViewportTag(mode)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tag)
			}

			html, err := render.NewRenderer(render.RendererConfig{}).
				RenderHeadString([]headtags.ContributedTag{*tag})
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, strings.TrimLeft(html, " "))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tag record as JSON")

	return cmd
}

func parseMode(s string) (headtags.ViewportMode, error) {
	if mode, ok := headtags.ParseViewportMode(s); ok && s != "" {
		return mode, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		mode := headtags.ViewportMode(n)
		if mode >= headtags.ViewportDefault && mode <= headtags.ViewportDenyZoomIn {
			return mode, nil
		}
	}
	return 0, errors.New("N003").
		WithDetailf("mode %q", s).
		WithSuggestion("Use 0-3 or default, deny-zoom, deny-zoom-out, deny-zoom-in")
}
