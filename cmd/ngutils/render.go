package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ngclient/ngutils/internal/errors"
	"github.com/ngclient/ngutils/pkg/ngutils"
	"github.com/ngclient/ngutils/pkg/render"
	"github.com/ngclient/ngutils/pkg/snapshot"
)

func renderCmd() *cobra.Command {
	var (
		page  bool
		form  string
		title string
		lang  string
	)

	cmd := &cobra.Command{
		Use:   "render <model.json|->",
		Short: "Render a saved model as HTML",
		Long: `Render the contributed tags of a saved page model.

The model is the JSON served by GET /api/clients/{id}/model or stored by
a snapshot backend. Use - to read it from standard input.

Examples:
  ngutils render model.json
  ngutils render --page --form=orders --title="Orders" model.json
  curl -s localhost:8080/api/clients/c1/model | ngutils render -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readModel(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			r := render.NewRenderer(render.RendererConfig{})
			out := cmd.OutOrStdout()

			if !page {
				return r.RenderHead(out, m.ContributedTags)
			}

			class := ""
			for _, e := range m.StyleClasses {
				if e.FormName == form {
					class = e.StyleClass
					break
				}
			}
			return r.RenderPage(out, render.PageData{
				Title:     title,
				Lang:      lang,
				Tags:      m.ContributedTags,
				FormName:  form,
				FormClass: class,
			})
		},
	}

	cmd.Flags().BoolVarP(&page, "page", "p", false, "Render a full HTML document")
	cmd.Flags().StringVarP(&form, "form", "f", "", "Form whose style classes go on the container (with --page)")
	cmd.Flags().StringVar(&title, "title", "", "Page title (with --page)")
	cmd.Flags().StringVar(&lang, "lang", "en", "Page language (with --page)")

	return cmd
}

// readModel reads a model from path, or from stdin when path is "-".
func readModel(stdin io.Reader, path string) (ngutils.Model, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return ngutils.Model{}, errors.New("N050").WithDetail(path).Wrap(err)
	}

	m, err := snapshot.Decode(data)
	if err != nil {
		return ngutils.Model{}, errors.New("N050").
			WithDetail(path + " is not a page model").
			WithSuggestion("Save the output of GET /api/clients/{id}/model").
			Wrap(err)
	}
	return m, nil
}
