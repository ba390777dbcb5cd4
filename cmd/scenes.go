package cmd

import (
	"fmt"

	"github.com/df07/go-mis-pathtracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListScenes prints the built-in scenes with their contents.
func ListScenes(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Surfaces", "Isosurfaces", "Lights", "Description"})
	for _, info := range scene.List() {
		s, err := scene.ByName(info.ID)
		if err != nil {
			return err
		}
		stats := s.Stats()
		table.Append([]string{
			info.ID,
			fmt.Sprintf("%d", stats.Surfaces),
			fmt.Sprintf("%d", stats.Isosurfaces),
			fmt.Sprintf("%d", stats.Lights),
			info.Description,
		})
	}
	table.Render()

	return nil
}
