package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/plateworks/tavola/pkg/imageio"
)

// headersCommand creates the headers command for inspecting metadata files.
func (c *CLI) headersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "headers [metadata.csv]",
		Short: "List the metadata fields available for sorting and captions",
		Long: `List the metadata fields available for sorting and captions.

The first CSV column identifies images by filename and is not itself a
sortable field. Every other column can be used with --sort-field and
--caption-fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := imageio.LoadMetadata(args[0])
			if err != nil {
				return err
			}

			if len(meta.Fields) == 0 {
				printInfo("No metadata fields beyond the filename column")
				return nil
			}

			rows := make([][]string, len(meta.Fields))
			for i, f := range meta.Fields {
				rows[i] = []string{strconv.Itoa(i + 1), f}
			}

			headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("#", "Field").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == -1 {
						return headerStyle
					}
					return lipgloss.NewStyle().Foreground(colorWhite)
				})
			fmt.Println(t.Render())

			printNewline()
			printNextStep("Sort by a field", "tavola generate --sort metadata --sort-field "+meta.Fields[0]+" ./photos")
			return nil
		},
	}
}
