package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"recipe-desk/recipe"
)

// LinkCmd prints a shareable link for a recipe file and optional input file.
func LinkCmd() *cobra.Command {
	var (
		recipePath string
		inputPath  string
		baseURL    string
		noRecipe   bool
		noInput    bool
	)
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print a shareable link for a recipe and input",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			if baseURL == "" {
				baseURL = cfg.Link.BaseURL
			}
			if baseURL == "" {
				baseURL = cfg.Link.ReportBaseURL
			}

			if recipePath == "-" && inputPath == "-" {
				return errors.New("recipe and input cannot both be read from stdin")
			}

			text, err := readSource(cmd.InOrStdin(), recipePath)
			if err != nil {
				return fmt.Errorf("read recipe: %w", err)
			}
			rc, err := recipe.ParseConfig(string(text))
			if err != nil {
				return fmt.Errorf("%s: %w", recipePath, err)
			}

			var input []byte
			if inputPath != "" {
				input, err = readSource(cmd.InOrStdin(), inputPath)
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
			}

			link := recipe.BuildShareableLink(baseURL, rc, input, !noRecipe, !noInput)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), link)
			return err
		},
	}
	cmd.Flags().StringVarP(&recipePath, "recipe", "r", "-", `recipe JSON file ("-" for stdin)`)
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", `input file ("-" for stdin)`)
	cmd.Flags().StringVar(&baseURL, "base-url", "", "base address of the editor")
	cmd.Flags().BoolVar(&noRecipe, "no-recipe", false, "leave the recipe out of the link")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "leave the input out of the link")
	return cmd
}

func readSource(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
