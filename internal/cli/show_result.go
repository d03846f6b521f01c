package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mwiater/ellipse/internal/ellipse"
	"github.com/spf13/cobra"
)

// showResultCmd renders an existing result file as a table.
var showResultCmd = &cobra.Command{
	Use:   "result <scenario_name> <tcp_name> <expt_num> <direction>",
	Short: "Show a written result file as a table",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := experimentFromArgs(args)
		path := e.Paths(GetConfig().OutputRootPath()).Result

		rows, err := ellipse.LoadRows(path)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(e.String()))
		fmt.Fprintln(cmd.OutOrStdout(), renderRows(rows))
		return nil
	},
}

func init() {
	showCmd.AddCommand(showResultCmd)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

// renderRows lays the rows out as an index / delay / throughput table.
func renderRows(rows []ellipse.Row) string {
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			ellipse.FormatFloat(r.Delay),
			ellipse.FormatFloat(r.Throughput),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "avg delay", "avg throughput").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}
